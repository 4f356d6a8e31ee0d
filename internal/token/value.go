package token

import (
	"crypto/rand"
	"fmt"
)

// Token values use the URL-safe nanoid alphabet at the standard 21-character
// length: ~126 bits of entropy, so values are never reused in practice and the
// store's unique column is a backstop, not a primary defense.
const (
	valueAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	valueLength   = 21
)

// NewValue mints a fresh opaque token value.
func NewValue() (string, error) {
	buf := make([]byte, valueLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token value: %w", err)
	}
	out := make([]byte, valueLength)
	for i, b := range buf {
		// 64-symbol alphabet divides 256 evenly, so masking is unbiased.
		out[i] = valueAlphabet[b&63]
	}
	return string(out), nil
}
