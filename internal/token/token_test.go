package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
)

func TestNewValue(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		v, err := NewValue()
		require.NoError(t, err)
		assert.Len(t, v, valueLength)
		for _, c := range v {
			assert.Contains(t, valueAlphabet, string(c))
		}
		assert.False(t, seen[v], "generated value repeated: %s", v)
		seen[v] = true
	}
}

func TestTokenConstructors(t *testing.T) {
	now := time.Now()
	donorID := id.NewDonorID()
	groupID := id.NewGroupID()

	t.Run("identity token carries only the identity payload", func(t *testing.T) {
		tok, err := NewIdentityToken("abc123", donorID, "", now)
		require.NoError(t, err)
		assert.Equal(t, KindIdentity, tok.Kind)
		assert.True(t, tok.IsActive)

		identity, ok := tok.Identity()
		require.True(t, ok)
		assert.Equal(t, donorID, identity.DonorID)

		_, ok = tok.Preset()
		assert.False(t, ok)
	})

	t.Run("preset token carries only the preset payload", func(t *testing.T) {
		tok, err := NewPresetToken("def456", groupID, 500, "Chesed Fund $5", "", now)
		require.NoError(t, err)
		assert.Equal(t, KindPreset, tok.Kind)

		preset, ok := tok.Preset()
		require.True(t, ok)
		assert.Equal(t, groupID, preset.GroupID)
		assert.Equal(t, int64(500), preset.AmountCents)

		_, ok = tok.Identity()
		assert.False(t, ok)
	})

	t.Run("identity token requires a donor", func(t *testing.T) {
		_, err := NewIdentityToken("abc123", id.DonorID{}, "", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("preset token rejects a negative amount", func(t *testing.T) {
		_, err := NewPresetToken("def456", groupID, -1, "", "", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestRehydrate(t *testing.T) {
	now := time.Now()
	donorID := id.NewDonorID()
	groupID := id.NewGroupID()

	t.Run("rejects identity kind without identity payload", func(t *testing.T) {
		_, err := Rehydrate("v", KindIdentity, true, "", now, nil, &PresetBinding{GroupID: groupID})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects preset kind with both payloads", func(t *testing.T) {
		_, err := Rehydrate("v", KindPreset, true, "", now,
			&IdentityBinding{DonorID: donorID}, &PresetBinding{GroupID: groupID})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := Rehydrate("v", Kind("BOGUS"), true, "", now, &IdentityBinding{DonorID: donorID}, nil)
		require.Error(t, err)
	})

	t.Run("round-trips a valid preset token", func(t *testing.T) {
		tok, err := Rehydrate("v", KindPreset, false, "img.png", now, nil,
			&PresetBinding{GroupID: groupID, AmountCents: 1800, Label: "Chai"})
		require.NoError(t, err)
		assert.False(t, tok.IsActive)
		preset, ok := tok.Preset()
		require.True(t, ok)
		assert.Equal(t, "Chai", preset.Label)
	})
}

func TestRedeemURL(t *testing.T) {
	assert.Equal(t, "https://give.example.org/redeemQR/abc123",
		RedeemURL("https://give.example.org", KindIdentity, "abc123"))
	assert.Equal(t, "https://give.example.org/redeemQR/preset/def456",
		RedeemURL("https://give.example.org/", KindPreset, "def456"))
}

func TestExtractValue(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare value", "V1StGXR8_Z5jdHi6B-myT", "V1StGXR8_Z5jdHi6B-myT"},
		{"identity redeem url", "https://give.example.org/redeemQR/V1StGXR8_Z5jdHi6B-myT", "V1StGXR8_Z5jdHi6B-myT"},
		{"preset redeem url", "https://give.example.org/redeemQR/preset/V1StGXR8_Z5jdHi6B-myT", "V1StGXR8_Z5jdHi6B-myT"},
		{"url with query string", "https://give.example.org/redeemQR/abc?source=print", "abc"},
		{"url with fragment", "https://give.example.org/redeemQR/abc#top", "abc"},
		{"surrounding whitespace", "  abc123  ", "abc123"},
		{"empty input", "", ""},
		{"trailing slash", "https://give.example.org/redeemQR/abc/", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractValue(tc.raw))
		})
	}
}
