// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
	"github.com/named-data/ndn-go/table"
)

func TestNetworkFetcherDecodesCertificate(t *testing.T) {
	ctrl := gomock.NewController(t)
	face := NewMockFace(ctrl)

	notBefore, notAfter := time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour)
	id := newIdentity(t, "/A")
	cert := issueCert(t, id, id, notBefore, notAfter)

	face.EXPECT().ExpressInterest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(interest *packet.Interest, onData table.OnData, _ table.OnTimeout, _ table.OnNetworkNack) (uint64, error) {
			require.True(t, interest.CanBePrefix())
			require.True(t, interest.MustBeFresh())
			onData(interest, cert.Data())
			return 1, nil
		})

	fetcher := NewNetworkFetcher(face)
	var got *certificate.Certificate
	fetcher.Fetch(NewCertificateRequest(id.keyName),
		func(c *certificate.Certificate) { got = c },
		func(err *security.ValidationError) { t.Fatalf("unexpected failure: %v", err) })
	require.NotNil(t, got)
	require.True(t, got.Name().Equals(cert.Name()))
}

func TestNetworkFetcherRetriesThenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	face := NewMockFace(ctrl)

	// Initial attempt plus two retries, every one timing out.
	face.EXPECT().ExpressInterest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(interest *packet.Interest, _ table.OnData, onTimeout table.OnTimeout, _ table.OnNetworkNack) (uint64, error) {
			onTimeout(interest)
			return 1, nil
		}).Times(3)

	fetcher := NewNetworkFetcher(face)
	fetcher.SetRetries(2)

	id := newIdentity(t, "/gone")
	var failure *security.ValidationError
	fetcher.Fetch(NewCertificateRequest(id.keyName),
		func(*certificate.Certificate) { t.Fatal("fetch must not succeed") },
		func(err *security.ValidationError) { failure = err })
	require.NotNil(t, failure)
	require.Equal(t, security.ErrorCannotRetrieveCertificate, failure.Code)
	require.Equal(t, 3, fetcher.SentCount)
}

func TestNetworkFetcherRetriesOnNack(t *testing.T) {
	ctrl := gomock.NewController(t)
	face := NewMockFace(ctrl)

	notBefore, notAfter := time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour)
	id := newIdentity(t, "/A")
	cert := issueCert(t, id, id, notBefore, notAfter)

	first := face.EXPECT().ExpressInterest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(interest *packet.Interest, _ table.OnData, _ table.OnTimeout, onNack table.OnNetworkNack) (uint64, error) {
			onNack(interest, packet.NackReasonCongestion)
			return 1, nil
		})
	face.EXPECT().ExpressInterest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(interest *packet.Interest, onData table.OnData, _ table.OnTimeout, _ table.OnNetworkNack) (uint64, error) {
			onData(interest, cert.Data())
			return 2, nil
		}).After(first)

	fetcher := NewNetworkFetcher(face)
	var got *certificate.Certificate
	fetcher.Fetch(NewCertificateRequest(id.keyName),
		func(c *certificate.Certificate) { got = c },
		func(err *security.ValidationError) { t.Fatalf("unexpected failure: %v", err) })
	require.NotNil(t, got)
}

func TestNetworkFetcherRejectsMalformedCertificate(t *testing.T) {
	ctrl := gomock.NewController(t)
	face := NewMockFace(ctrl)

	junk := packet.NewData(mustName(t, "/not/a/cert"))
	junk.Encode()
	face.EXPECT().ExpressInterest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(interest *packet.Interest, onData table.OnData, _ table.OnTimeout, _ table.OnNetworkNack) (uint64, error) {
			onData(interest, junk)
			return 1, nil
		})

	fetcher := NewNetworkFetcher(face)
	id := newIdentity(t, "/A")
	var failure *security.ValidationError
	fetcher.Fetch(NewCertificateRequest(id.keyName),
		func(*certificate.Certificate) { t.Fatal("fetch must not succeed") },
		func(err *security.ValidationError) { failure = err })
	require.NotNil(t, failure)
	require.Equal(t, security.ErrorMalformedCertificate, failure.Code)
}
