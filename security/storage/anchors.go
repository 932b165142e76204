// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
	"github.com/named-data/ndn-go/util"
)

// anchorGroup is one named set of trust anchors: static (explicit
// inserts) or dynamic (backed by a file or directory).
type anchorGroup interface {
	// refresh brings the group's certificate set up to date; static
	// groups no-op.
	refresh(now time.Time) error
	certificates() []*certificate.Certificate
}

// staticGroup holds explicitly inserted anchors.
type staticGroup struct {
	certs []*certificate.Certificate
}

func (g *staticGroup) refresh(time.Time) error { return nil }

func (g *staticGroup) certificates() []*certificate.Certificate { return g.certs }

func (g *staticGroup) insert(cert *certificate.Certificate) {
	for i, existing := range g.certs {
		if existing.Name().Equals(cert.Name()) {
			g.certs[i] = cert
			return
		}
	}
	g.certs = append(g.certs, cert)
}

// dynamicGroup watches a certificate file or directory. A filesystem
// watcher marks the group dirty on any event; where a watch cannot be
// established (single files on some filesystems, network mounts), the
// refresh period alone drives re-reads. Either way an actual re-read
// compares mtimes so unchanged files aren't re-parsed.
type dynamicGroup struct {
	path          string
	isDir         bool
	refreshPeriod time.Duration

	watcher     *fsnotify.Watcher
	lastRefresh time.Time
	mtimes      map[string]time.Time
	certs       []*certificate.Certificate
}

func newDynamicGroup(path string, refreshPeriod time.Duration) (*dynamicGroup, error) {
	if refreshPeriod <= 0 {
		return nil, security.NewInvalidArgumentError("refresh period must be positive, got %v", refreshPeriod)
	}
	st, err := os.Stat(path)
	isDir := err == nil && st.IsDir()
	g := &dynamicGroup{
		path:          path,
		isDir:         isDir,
		refreshPeriod: refreshPeriod,
		mtimes:        make(map[string]time.Time),
	}
	if w, werr := fsnotify.NewWatcher(); werr == nil {
		if werr = w.Add(path); werr == nil {
			g.watcher = w
		} else {
			_ = w.Close()
		}
	}
	_ = g.reload()
	return g, nil
}

func (g *dynamicGroup) certificates() []*certificate.Certificate { return g.certs }

// dirty drains the watcher's event queue, reporting whether anything
// happened since the last refresh.
func (g *dynamicGroup) dirty() bool {
	if g.watcher == nil {
		return false
	}
	dirty := false
	for {
		select {
		case _, ok := <-g.watcher.Events:
			if !ok {
				return dirty
			}
			dirty = true
		case _, ok := <-g.watcher.Errors:
			if !ok {
				return dirty
			}
		default:
			return dirty
		}
	}
}

func (g *dynamicGroup) refresh(now time.Time) error {
	if !g.dirty() && now.Sub(g.lastRefresh) < g.refreshPeriod {
		return nil
	}
	g.lastRefresh = now
	return g.reload()
}

// reload re-reads changed, added, and removed files, replacing the
// group's certificate set. Per-file failures are accumulated so one
// bad file doesn't mask the rest.
func (g *dynamicGroup) reload() error {
	var paths []string
	if g.isDir {
		entries, err := os.ReadDir(g.path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				paths = append(paths, filepath.Join(g.path, entry.Name()))
			}
		}
	} else {
		paths = []string{g.path}
	}

	var errs util.Errs
	seen := make(map[string]struct{}, len(paths))
	changed := false
	newMtimes := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		seen[p] = struct{}{}
		st, err := os.Stat(p)
		if err != nil {
			errs.Add(err)
			continue
		}
		newMtimes[p] = st.ModTime()
		if prev, ok := g.mtimes[p]; !ok || !prev.Equal(st.ModTime()) {
			changed = true
		}
	}
	for p := range g.mtimes {
		if _, ok := seen[p]; !ok {
			changed = true
		}
	}
	if !changed && len(g.certs) > 0 {
		return errs.Err()
	}

	var certs []*certificate.Certificate
	for _, p := range paths {
		cert, err := LoadCertificateFromFile(p)
		if err != nil {
			errs.Add(err)
			continue
		}
		certs = append(certs, cert)
	}
	g.certs = certs
	g.mtimes = newMtimes
	return errs.Err()
}

// LoadCertificateFromFile reads a certificate stored either as raw TLV
// bytes or base64 text (the format NDN tooling exports).
func LoadCertificateFromFile(path string) (*certificate.Certificate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if cert, err := certificate.WireDecode(raw); err == nil {
		return cert, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(stripWhitespace(string(raw)))
	if err != nil {
		return nil, err
	}
	return certificate.WireDecode(decoded)
}

func stripWhitespace(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// TrustAnchorContainer holds the named anchor groups. Before every
// lookup, expired dynamic groups are refreshed.
type TrustAnchorContainer struct {
	groups     map[string]anchorGroup
	groupOrder []string
	nowOffset  time.Duration
}

// NewTrustAnchorContainer returns an empty container.
func NewTrustAnchorContainer() *TrustAnchorContainer {
	return &TrustAnchorContainer{groups: make(map[string]anchorGroup)}
}

// SetNowOffset adds a test-only offset to the refresh clock.
func (t *TrustAnchorContainer) SetNowOffset(d time.Duration) { t.nowOffset = d }

func (t *TrustAnchorContainer) now() time.Time { return time.Now().Add(t.nowOffset) }

// Insert adds cert to the named static group, creating the group on
// first use. Inserting into a group name held by a dynamic group is an
// error.
func (t *TrustAnchorContainer) Insert(groupID string, cert *certificate.Certificate) error {
	g, ok := t.groups[groupID]
	if !ok {
		sg := &staticGroup{}
		t.groups[groupID] = sg
		t.groupOrder = append(t.groupOrder, groupID)
		sg.insert(cert)
		return nil
	}
	sg, ok := g.(*staticGroup)
	if !ok {
		return security.NewInvalidArgumentError("group %q is dynamic", groupID)
	}
	sg.insert(cert)
	return nil
}

// InsertDynamic creates a dynamic group watching a certificate file or
// directory, refreshed at least every refreshPeriod.
func (t *TrustAnchorContainer) InsertDynamic(groupID, path string, refreshPeriod time.Duration) error {
	if _, exists := t.groups[groupID]; exists {
		return security.NewInvalidArgumentError("group %q already exists", groupID)
	}
	g, err := newDynamicGroup(path, refreshPeriod)
	if err != nil {
		return err
	}
	t.groups[groupID] = g
	t.groupOrder = append(t.groupOrder, groupID)
	return nil
}

// refreshAll brings every dynamic group up to date. Per-group errors
// are swallowed: a group whose directory cannot be read keeps its last
// set, while a file that fails to load is left out of the new set.
func (t *TrustAnchorContainer) refreshAll() {
	now := t.now()
	for _, g := range t.groups {
		_ = g.refresh(now)
	}
}

// anchors returns every anchor across all groups, in canonical name
// order so Find results are deterministic.
func (t *TrustAnchorContainer) anchors() []*certificate.Certificate {
	var all []*certificate.Certificate
	for _, id := range t.groupOrder {
		all = append(all, t.groups[id].certificates()...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name().Compare(all[j].Name()) < 0
	})
	return all
}

// Find returns the first anchor, in canonical name order, whose name
// starts with keyName, or nil.
func (t *TrustAnchorContainer) Find(keyName *ndnname.Name) *certificate.Certificate {
	t.refreshAll()
	for _, cert := range t.anchors() {
		if keyName.Match(cert.Name()) {
			return cert
		}
	}
	return nil
}

// FindByInterest returns the first anchor matching interest's name and
// Exclude selector (ChildSelector is not honored), or nil.
func (t *TrustAnchorContainer) FindByInterest(interest *packet.Interest) *certificate.Certificate {
	t.refreshAll()
	for _, cert := range t.anchors() {
		if certificateMatchesInterest(cert, interest) {
			return cert
		}
	}
	return nil
}

// Get returns the anchor with exactly the given certificate name, or
// nil.
func (t *TrustAnchorContainer) Get(certName *ndnname.Name) *certificate.Certificate {
	t.refreshAll()
	for _, cert := range t.anchors() {
		if cert.Name().Equals(certName) {
			return cert
		}
	}
	return nil
}

// Size returns the total anchor count across all groups.
func (t *TrustAnchorContainer) Size() int {
	t.refreshAll()
	total := 0
	for _, g := range t.groups {
		total += len(g.certificates())
	}
	return total
}

// Close releases any filesystem watchers held by dynamic groups.
func (t *TrustAnchorContainer) Close() {
	for _, g := range t.groups {
		if dg, ok := g.(*dynamicGroup); ok && dg.watcher != nil {
			_ = dg.watcher.Close()
			dg.watcher = nil
		}
	}
}
