package consent

import (
	"context"
	"fmt"
)

// Keys written by the CMP alongside the TC string.
const (
	PurposeConsentsKey           = "IABTCF_PurposeConsents"
	PurposeLegitimateInterestKey = "IABTCF_PurposeLegitimateInterests"
	VendorConsentsKey            = "IABTCF_VendorConsents"

	defaultPurposeBits = "0000000000"
	defaultVendorBits  = "0"
)

// Getter is the read side of a preference store.
type Getter interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// AdConfiguration is the most an app may show given the stored consent.
type AdConfiguration string

const (
	// AdsAll allows personalized ads for all configured vendors.
	AdsAll AdConfiguration = "ALL"
	// AdsNonPersonalized allows at most non-personalized ads.
	AdsNonPersonalized AdConfiguration = "NONPERSONALIZED"
	// AdsLimited allows at most limited ads.
	AdsLimited AdConfiguration = "LIMITED"
	// AdsUnclear means the vendor configuration could not be confirmed.
	AdsUnclear AdConfiguration = "UNCLEAR"
	// AdsNone means consent or legitimate interest is lacking.
	AdsNone AdConfiguration = "NONE"
)

// Purposes that need consent, or failing that legitimate interest, before
// any ad can be served.
var interestPurposes = []int{2, 7, 9, 10}

// DetectAdConfiguration derives the ad configuration from the stored purpose
// and vendor bit strings. requiredVendors is a bit string where '1' marks a
// vendor that must have consent and any other character is ignored; an
// empty pattern accepts every vendor string.
func DetectAdConfiguration(ctx context.Context, s Getter, requiredVendors string) (AdConfiguration, error) {
	consents, err := getOr(ctx, s, PurposeConsentsKey, defaultPurposeBits)
	if err != nil {
		return "", err
	}
	interests, err := getOr(ctx, s, PurposeLegitimateInterestKey, defaultPurposeBits)
	if err != nil {
		return "", err
	}
	vendors, err := getOr(ctx, s, VendorConsentsKey, defaultVendorBits)
	if err != nil {
		return "", err
	}

	return Evaluate(consents, interests, vendors, requiredVendors), nil
}

// Evaluate is DetectAdConfiguration over already loaded bit strings.
func Evaluate(consents, interests, vendors, requiredVendors string) AdConfiguration {
	best := AdsLimited
	switch {
	case purpose(consents, 1) && purpose(consents, 3) && purpose(consents, 4):
		best = AdsAll
	case purpose(consents, 1):
		best = AdsNonPersonalized
	}

	for _, p := range interestPurposes {
		if !purpose(consents, p) && !purpose(interests, p) {
			return AdsNone
		}
	}

	if !vendorsSatisfy(vendors, requiredVendors) {
		return AdsUnclear
	}
	return best
}

func vendorsSatisfy(vendors, required string) bool {
	if len(vendors) < len(required) {
		return false
	}
	for i := 0; i < len(required); i++ {
		if required[i] == '1' && vendors[i] != '1' {
			return false
		}
	}
	return true
}

// purpose reports whether purpose n (1-based) is set in bits.
func purpose(bits string, n int) bool {
	i := n - 1
	return i >= 0 && i < len(bits) && bits[i] == '1'
}

func getOr(ctx context.Context, s Getter, key, fallback string) (string, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("consent: read %s: %w", key, err)
	}
	if !ok {
		return fallback, nil
	}
	return v, nil
}
