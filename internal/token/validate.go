package token

import (
	"context"
	"errors"

	"scanledger/internal/directory"
	dErrors "scanledger/pkg/domain-errors"
	"scanledger/pkg/platform/sentinel"
)

// Resolved is the outcome of a successful validation: the token plus the
// entity it binds. Validation is split from redemption so operator UIs can
// show who or what was scanned before any financial effect is committed.
type Resolved struct {
	Kind  Kind
	Token *Token

	// Identity resolution.
	Donor *directory.Donor

	// Preset resolution.
	Group       *directory.Group
	AmountCents int64
	Label       string
}

// Validate extracts the token value from a raw scanned payload, checks the
// token exists, is active, and matches the expected kind if one is given,
// then resolves it to its bound entity. expectedKind may be nil.
func (s *Service) Validate(ctx context.Context, rawScan string, expectedKind *Kind) (*Resolved, error) {
	value := ExtractValue(rawScan)
	if value == "" {
		s.metrics.IncrementValidationFailure("not_found")
		return nil, dErrors.New(dErrors.CodeBadRequest, "scanned value is empty")
	}

	tok, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementValidationFailure("not_found")
			return nil, dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "token lookup failed")
	}
	if !tok.IsActive {
		s.metrics.IncrementValidationFailure("inactive")
		return nil, dErrors.New(dErrors.CodeConflict, "token is inactive")
	}
	if expectedKind != nil && tok.Kind != *expectedKind {
		s.metrics.IncrementValidationFailure("kind_mismatch")
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"expected a %s token, scanned a %s token", *expectedKind, tok.Kind)
	}

	switch tok.Kind {
	case KindIdentity:
		identity, _ := tok.Identity()
		donor, err := s.directory.GetDonor(ctx, identity.DonorID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				s.metrics.IncrementValidationFailure("dangling_ref")
				return nil, dErrors.New(dErrors.CodeNotFound, "donor not found for identity token")
			}
			return nil, err
		}
		return &Resolved{Kind: KindIdentity, Token: tok, Donor: donor}, nil

	case KindPreset:
		preset, _ := tok.Preset()
		group, err := s.directory.GetGroup(ctx, preset.GroupID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				s.metrics.IncrementValidationFailure("dangling_ref")
				return nil, dErrors.New(dErrors.CodeNotFound, "group not found for preset token")
			}
			return nil, err
		}
		return &Resolved{
			Kind:        KindPreset,
			Token:       tok,
			Group:       group,
			AmountCents: preset.AmountCents,
			Label:       preset.Label,
		}, nil
	}

	return nil, dErrors.Newf(dErrors.CodeInternal, "unknown token kind %q", tok.Kind)
}
