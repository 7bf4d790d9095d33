// Package phone formats stored phone numbers for display.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// Display returns the national format of a Brazilian number, or the trimmed
// input when it cannot be parsed as a valid number.
func Display(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	if phonenumbers.GetRegionCodeForNumber(number) != defaultRegion {
		return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
	}
	return phonenumbers.Format(number, phonenumbers.NATIONAL)
}
