// Package links builds the WhatsApp and Telegram deep links that open a
// messaging app with a generated message already filled in.
package links

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	whatsAppBase = "https://wa.me/"
	telegramBase = "https://t.me/share/url"
)

// Digits strips every non-digit character from a raw phone number.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WithCountryCode returns the digits of raw prefixed with the calling code of
// region unless they already start with it. Unknown regions leave the digits
// unchanged.
func WithCountryCode(raw, region string) string {
	digits := Digits(raw)
	if digits == "" {
		return ""
	}
	code := phonenumbers.GetCountryCodeForRegion(strings.ToUpper(region))
	if code == 0 {
		return digits
	}
	prefix := strconv.Itoa(code)
	if strings.HasPrefix(digits, prefix) {
		return digits
	}
	return prefix + digits
}

// Encode percent-encodes everything outside the RFC 3986 unreserved set.
func Encode(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// WhatsApp builds a wa.me link. An empty phone produces a generic share link
// that lets the user pick the recipient.
func WhatsApp(phoneDigits, message string) string {
	return whatsAppBase + phoneDigits + "?text=" + Encode(message)
}

// Telegram builds a share link; the endpoint cannot target a recipient.
func Telegram(message string) string {
	return telegramBase + "?text=" + Encode(message)
}

// Set bundles both links for one message.
type Set struct {
	WhatsApp string `json:"whatsapp_link"`
	Telegram string `json:"telegram_link"`
}

func For(phoneDigits, message string) Set {
	return Set{
		WhatsApp: WhatsApp(phoneDigits, message),
		Telegram: Telegram(message),
	}
}
