package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "scanledger/pkg/domain-errors"
)

func TestParseDonorID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseDonorID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseDonorID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseDonorID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseDonorID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, DonorID(validUUID), id)
	})
}

func TestParseIDs_SharedValidation(t *testing.T) {
	// Every parser goes through the same validation, so a spot check on
	// each type is enough.
	t.Run("group id", func(t *testing.T) {
		_, err := ParseGroupID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		valid := uuid.New()
		id, err := ParseGroupID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, GroupID(valid), id)
	})

	t.Run("donation id", func(t *testing.T) {
		_, err := ParseDonationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("participation id", func(t *testing.T) {
		_, err := ParseParticipationID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("session id", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseSessionID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, SessionID(valid), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	donorID := DonorID(uuid.New())
	groupID := GroupID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ DonorID = groupID   // compile error
	// var _ GroupID = donorID   // compile error

	// Verify they're distinct at runtime too
	assert.NotEqual(t, uuid.UUID(donorID), uuid.UUID(groupID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, DonorID(uuid.Nil).IsNil())
	assert.True(t, GroupID(uuid.Nil).IsNil())
	assert.True(t, SessionID(uuid.Nil).IsNil())
	assert.False(t, NewDonorID().IsNil())
	assert.False(t, NewGroupID().IsNil())
	assert.False(t, NewSessionID().IsNil())
}

func TestString_RoundTrip(t *testing.T) {
	id := NewDonationID()
	parsed, err := ParseDonationID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}
