// Package token implements the issuance, validation, and lifecycle of the
// scannable tokens that drive the donation ledger. A token is either an
// IDENTITY token, permanently bound to one donor, or a PRESET token, bound to
// a fund (or volunteer group) and a fixed amount.
package token

import (
	"time"

	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
)

// Kind tags the two token variants.
type Kind string

const (
	KindIdentity Kind = "IDENTITY"
	KindPreset   Kind = "PRESET"
)

// IdentityBinding is the payload of an IDENTITY token.
type IdentityBinding struct {
	DonorID id.DonorID
}

// PresetBinding is the payload of a PRESET token. AmountCents is ignored when
// the bound group is a volunteer group.
type PresetBinding struct {
	GroupID     id.GroupID
	AmountCents int64
	Label       string
}

// Token is a tagged variant: exactly one of the identity/preset payloads is
// populated, determined by Kind. The payloads are unexported so the invariant
// can only be established through the constructors.
type Token struct {
	Value     string
	Kind      Kind
	IsActive  bool
	ImageRef  string
	CreatedAt time.Time

	identity *IdentityBinding
	preset   *PresetBinding
}

// NewIdentityToken binds a freshly minted value to a donor.
func NewIdentityToken(value string, donorID id.DonorID, imageRef string, now time.Time) (*Token, error) {
	if value == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token value is required")
	}
	if donorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identity token requires a donor")
	}
	return &Token{
		Value:     value,
		Kind:      KindIdentity,
		IsActive:  true,
		ImageRef:  imageRef,
		CreatedAt: now,
		identity:  &IdentityBinding{DonorID: donorID},
	}, nil
}

// NewPresetToken binds a freshly minted value to a group and amount.
// Amount validation against the group type happens in the issuer, which knows
// whether the group is a fund or a volunteer group.
func NewPresetToken(value string, groupID id.GroupID, amountCents int64, label, imageRef string, now time.Time) (*Token, error) {
	if value == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token value is required")
	}
	if groupID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "preset token requires a group")
	}
	if amountCents < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "preset amount must not be negative")
	}
	return &Token{
		Value:     value,
		Kind:      KindPreset,
		IsActive:  true,
		ImageRef:  imageRef,
		CreatedAt: now,
		preset:    &PresetBinding{GroupID: groupID, AmountCents: amountCents, Label: label},
	}, nil
}

// Rehydrate rebuilds a token from persisted fields, enforcing the
// exactly-one-payload invariant on the way in. Stores use it; nothing else
// should.
func Rehydrate(value string, kind Kind, isActive bool, imageRef string, createdAt time.Time, identity *IdentityBinding, preset *PresetBinding) (*Token, error) {
	switch kind {
	case KindIdentity:
		if identity == nil || preset != nil {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity token with wrong payload")
		}
	case KindPreset:
		if preset == nil || identity != nil {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "preset token with wrong payload")
		}
	default:
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown token kind %q", kind)
	}
	return &Token{
		Value:     value,
		Kind:      kind,
		IsActive:  isActive,
		ImageRef:  imageRef,
		CreatedAt: createdAt,
		identity:  identity,
		preset:    preset,
	}, nil
}

// Identity returns the identity payload; ok is false for preset tokens.
func (t *Token) Identity() (IdentityBinding, bool) {
	if t.identity == nil {
		return IdentityBinding{}, false
	}
	return *t.identity, true
}

// Preset returns the preset payload; ok is false for identity tokens.
func (t *Token) Preset() (PresetBinding, bool) {
	if t.preset == nil {
		return PresetBinding{}, false
	}
	return *t.preset, true
}
