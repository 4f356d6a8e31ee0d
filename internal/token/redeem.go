package token

import (
	"strings"
)

// Redeem URL shapes baked into printed QR cards. Scanned payloads may be a
// bare token value (keystroke-wedge scanners) or one of these URLs (camera
// scanners reading printed cards), so extraction tolerates both.
const (
	redeemPathIdentity = "/redeemQR/"
	redeemPathPreset   = "/redeemQR/preset/"
)

// RedeemURL builds the reference encoded into a printable QR artifact.
func RedeemURL(base string, kind Kind, value string) string {
	base = strings.TrimRight(base, "/")
	if kind == KindPreset {
		return base + redeemPathPreset + value
	}
	return base + redeemPathIdentity + value
}

// ExtractValue pulls the token value out of a raw scanned payload. It accepts
// a bare value or a redeem URL and trims surrounding whitespace; it never
// validates existence, that is the store lookup's job.
func ExtractValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	// Strip query/fragment noise some camera apps append.
	if i := strings.IndexAny(raw, "?#"); i != -1 {
		raw = raw[:i]
	}
	raw = strings.TrimRight(raw, "/")
	if i := strings.LastIndex(raw, "/"); i != -1 {
		return raw[i+1:]
	}
	return raw
}
