package mpesa

import (
	"strings"
	"unicode"
)

// countryCode is the Kenyan dialing prefix Daraja expects on every MSISDN.
const countryCode = "254"

// FormatPhoneNumber canonicalizes a user-supplied phone number into the
// 254XXXXXXXXX form. Pure and total over any input; invalid numbers are only
// surfaced when Safaricom rejects them.
func FormatPhoneNumber(phone string) string {
	formatted := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)

	switch {
	case strings.HasPrefix(formatted, "0"):
		return countryCode + formatted[1:]
	case strings.HasPrefix(formatted, "+"+countryCode):
		return formatted[1:]
	case strings.HasPrefix(formatted, countryCode):
		return formatted
	default:
		return countryCode + formatted
	}
}
