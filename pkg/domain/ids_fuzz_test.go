//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseDonorID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseDonorID(f *testing.F) {
	// Seed corpus with interesting inputs
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE donors;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseDonorID(input)

		// Either a valid ID or an error, never both
		if err == nil {
			roundTrip, err2 := ParseDonorID(id.String())
			if err2 != nil {
				t.Errorf("Valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("Round-trip changed ID value")
			}
		}

		// Non-UTF8 input must be rejected
		if !utf8.ValidString(input) && err == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs ensures all ID types validate identically.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errDonor := ParseDonorID(input)
		_, errGroup := ParseGroupID(input)
		_, errDonation := ParseDonationID(input)
		_, errParticipation := ParseParticipationID(input)
		_, errSession := ParseSessionID(input)

		// If one accepts, all should accept (same underlying validation)
		if errDonor == nil {
			if errGroup != nil || errDonation != nil || errParticipation != nil || errSession != nil {
				t.Error("Inconsistent parsing across ID types")
			}
		}

		// If one rejects, all should reject
		if errDonor != nil {
			if errGroup == nil || errDonation == nil || errParticipation == nil || errSession == nil {
				t.Error("Inconsistent rejection across ID types")
			}
		}
	})
}
