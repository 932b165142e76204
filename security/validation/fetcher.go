// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
	"github.com/named-data/ndn-go/table"
)

// CertificateFetcher resolves a certificate request, asynchronously,
// calling exactly one of the callbacks.
type CertificateFetcher interface {
	Fetch(request *CertificateRequest, onSuccess func(*certificate.Certificate), onFailure func(*security.ValidationError))
}

// Face is the slice of the Node the network fetcher needs; *node.Node
// satisfies it.
type Face interface {
	ExpressInterest(interest *packet.Interest, onData table.OnData, onTimeout table.OnTimeout, onNack table.OnNetworkNack) (uint64, error)
}

// defaultFetchRetries is how many times the network fetcher re-expresses
// a certificate Interest after a timeout or nack before giving up.
const defaultFetchRetries = 3

// NetworkFetcher fetches certificates by expressing their Interests
// through a Face, retrying a bounded number of times on timeouts and
// nacks.
type NetworkFetcher struct {
	face    Face
	retries int

	// SentCount counts fetch attempts, exposed for tests asserting the
	// retry count.
	SentCount int
}

// NewNetworkFetcher returns a fetcher over face with the default retry
// count.
func NewNetworkFetcher(face Face) *NetworkFetcher {
	return &NetworkFetcher{face: face, retries: defaultFetchRetries}
}

// SetRetries overrides the retry count.
func (f *NetworkFetcher) SetRetries(retries int) { f.retries = retries }

// Fetch expresses the request's Interest, decoding the response as a
// certificate.
func (f *NetworkFetcher) Fetch(request *CertificateRequest, onSuccess func(*certificate.Certificate), onFailure func(*security.ValidationError)) {
	f.fetchWithRetries(request, f.retries, onSuccess, onFailure)
}

func (f *NetworkFetcher) fetchWithRetries(request *CertificateRequest, remaining int, onSuccess func(*certificate.Certificate), onFailure func(*security.ValidationError)) {
	onData := func(_ *packet.Interest, data *packet.Data) {
		cert, err := certificate.FromData(data)
		if err != nil {
			onFailure(security.NewValidationError(security.ErrorMalformedCertificate,
				"fetched %s: %v", data.Name(), err))
			return
		}
		onSuccess(cert)
	}
	retry := func(*packet.Interest) {
		if remaining > 0 {
			f.fetchWithRetries(request, remaining-1, onSuccess, onFailure)
			return
		}
		onFailure(security.NewValidationError(security.ErrorCannotRetrieveCertificate,
			"retries exhausted for %s", request.Interest.Name()))
	}
	onNack := func(interest *packet.Interest, _ int) { retry(interest) }

	f.SentCount++
	if _, err := f.face.ExpressInterest(request.Interest, onData, retry, onNack); err != nil {
		onFailure(security.NewValidationError(security.ErrorCannotRetrieveCertificate,
			"expressing %s: %v", request.Interest.Name(), err))
	}
}

// OfflineFetcher never fetches: every request fails with
// CANNOT_RETRIEVE_CERTIFICATE. Used when validation must rely solely on
// anchors and caches.
type OfflineFetcher struct{}

// Fetch immediately fails.
func (OfflineFetcher) Fetch(request *CertificateRequest, _ func(*certificate.Certificate), onFailure func(*security.ValidationError)) {
	onFailure(security.NewValidationError(security.ErrorCannotRetrieveCertificate,
		"offline: cannot fetch %s", request.Interest.Name()))
}
