package phone

import (
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// countryCode is the Kenyan calling code used when a number carries a
// national trunk prefix or no country code at all.
const countryCode = "254"

// Normalize canonicalises a human-entered phone number: whitespace, dashes,
// brackets and any other decoration are dropped, keeping digits and a single
// leading plus. The result is stable, so the same number always maps to the
// same stored value regardless of how it was typed.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Dial converts a normalized number to the international dialing form used as
// the WhatsApp recipient key: digits only, leading trunk 0 rewritten to the
// country code, country code prepended if absent.
func Dial(normalized string) string {
	digits := strings.TrimPrefix(Normalize(normalized), "+")
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "0") {
		digits = countryCode + digits[1:]
	}
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return digits
}

// WhatsAppJID builds the channel address for a phone number.
func WhatsAppJID(number string) types.JID {
	return types.NewJID(Dial(number), types.DefaultUserServer)
}
