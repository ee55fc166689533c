// Package phone normalizes user supplied phone numbers to E.164 where they
// can be parsed.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "US"

var ErrInvalidNumber = errors.New("invalid phone number")

// Normalizer parses numbers without a country prefix against a default
// region.
type Normalizer struct {
	region string
}

func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// Normalize returns the E.164 form of input or ErrInvalidNumber.
func (n *Normalizer) Normalize(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrInvalidNumber
	}

	number, err := phonenumbers.Parse(trimmed, n.region)
	if err != nil {
		return "", ErrInvalidNumber
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidNumber
	}

	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// Canonical returns the E.164 form of input when it is a valid number in the
// normalizer's region, and the trimmed input otherwise.
func (n *Normalizer) Canonical(input string) string {
	if normalized, err := n.Normalize(input); err == nil {
		return normalized
	}
	return strings.TrimSpace(input)
}

// Display formats a stored E.164 number for pages. Unparseable values are
// returned unchanged.
func Display(e164 string) string {
	number, err := phonenumbers.Parse(e164, "")
	if err != nil {
		return e164
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}
