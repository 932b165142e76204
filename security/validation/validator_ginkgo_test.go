// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
)

func TestValidationSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Certificate Chain Validation Suite")
}

var _ = Describe("Validator chain state machine", func() {
	var (
		gt        testing.TB
		root      *identity
		site      *identity
		fetcher   *mapFetcher
		validator *Validator

		succeeded int
		failures  []*security.ValidationError
	)

	onSuccess := func(*packet.Data) { succeeded++ }
	onFailure := func(err *security.ValidationError) { failures = append(failures, err) }

	BeforeEach(func() {
		gt = GinkgoTB()
		succeeded = 0
		failures = nil

		root = newIdentity(gt, "/net")
		site = newIdentity(gt, "/net/site")
		fetcher = &mapFetcher{}
		validator = NewValidator(NewSimpleHierarchyPolicy(), fetcher)
	})

	installAnchor := func() {
		notBefore, notAfter := time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour)
		Expect(validator.Storage().TrustAnchors().Insert("root",
			issueCert(gt, root, root, notBefore, notAfter))).To(Succeed())
	}

	Context("with no trust anchors", func() {
		It("fails every Data with CANNOT_RETRIEVE_CERTIFICATE", func() {
			validator.Validate(makeSignedData(gt, "/net/site/d", site), onSuccess, onFailure)
			Expect(succeeded).To(BeZero())
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].Code).To(Equal(security.ErrorCannotRetrieveCertificate))
		})
	})

	Context("with an anchor and a fetchable intermediate", func() {
		BeforeEach(func() {
			installAnchor()
			notBefore, notAfter := time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour)
			fetcher.add(issueCert(gt, site, root, notBefore, notAfter))
		})

		It("climbs the chain once and succeeds", func() {
			validator.Validate(makeSignedData(gt, "/net/site/d", site), onSuccess, onFailure)
			Expect(failures).To(BeEmpty())
			Expect(succeeded).To(Equal(1))
			Expect(fetcher.FetchCount).To(Equal(1))
		})

		It("serves the second validation from the verified cache", func() {
			validator.Validate(makeSignedData(gt, "/net/site/d1", site), onSuccess, onFailure)
			validator.Validate(makeSignedData(gt, "/net/site/d2", site), onSuccess, onFailure)
			Expect(succeeded).To(Equal(2))
			Expect(fetcher.FetchCount).To(Equal(1))
		})

		It("delivers the outcome exactly once per validation", func() {
			validator.Validate(makeSignedData(gt, "/net/site/d", site), onSuccess, onFailure)
			Expect(succeeded + len(failures)).To(Equal(1))
		})
	})

	Context("with a signer outside the packet's hierarchy", func() {
		BeforeEach(installAnchor)

		It("rejects with POLICY_ERROR before any fetch", func() {
			validator.Validate(makeSignedData(gt, "/elsewhere/d", site), onSuccess, onFailure)
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].Code).To(Equal(security.ErrorPolicyError))
			Expect(fetcher.FetchCount).To(BeZero())
		})
	})
})
