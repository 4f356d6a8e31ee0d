package token

import (
	"context"
	"errors"

	"scanledger/internal/directory"
	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
	audit "scanledger/pkg/platform/audit"
	"scanledger/pkg/platform/sentinel"
	"scanledger/pkg/requestcontext"
)

// mintAttempts bounds retries when a freshly generated value collides with an
// existing row. With 126-bit values a single retry is already paranoia.
const mintAttempts = 3

// IdentityIssueRequest carries the donor attributes for one identity token.
// ImageRef is the storage path recorded by the external card renderer, if any.
type IdentityIssueRequest struct {
	Name      string
	ClassName string
	GradeName string
	Cohort    string
	ImageRef  string
}

// PresetIssueRequest carries the binding for one preset token.
type PresetIssueRequest struct {
	GroupID     id.GroupID
	AmountCents int64
	Label       string
	ImageRef    string
}

// Issued is the result of minting a token.
type Issued struct {
	Token     *Token
	Donor     *directory.Donor // populated for identity tokens
	Group     *directory.Group // populated for preset tokens
	RedeemURL string
}

// BatchResult reports the outcome of one row of a bulk issuance. Rows are
// independent; a failed row never rolls back earlier ones.
type BatchResult struct {
	Row    int
	Issued *Issued
	Err    error
}

// IssueIdentityToken finds-or-creates the donor and mints a new identity
// token bound to it. Issuing twice for identical attributes reuses the donor
// and leaves prior tokens untouched.
func (s *Service) IssueIdentityToken(ctx context.Context, req IdentityIssueRequest) (*Issued, error) {
	donor, err := s.directory.FindOrCreateDonor(ctx, req.Name, req.ClassName, req.GradeName, req.Cohort)
	if err != nil {
		return nil, err
	}

	tok, err := s.mint(ctx, func(value string) (*Token, error) {
		return NewIdentityToken(value, donor.ID, req.ImageRef, requestcontext.Now(ctx))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementIssued(string(KindIdentity))
	s.emit(ctx, audit.Event{
		Action:     audit.ActionTokenIssued,
		TokenValue: tok.Value,
		DonorID:    donor.ID,
	})

	return &Issued{
		Token:     tok,
		Donor:     donor,
		RedeemURL: RedeemURL(s.redeemBase, KindIdentity, tok.Value),
	}, nil
}

// IssuePresetToken mints a preset token bound to a group and fixed amount.
// Fund groups require a positive amount; volunteer groups ignore it.
func (s *Service) IssuePresetToken(ctx context.Context, req PresetIssueRequest) (*Issued, error) {
	if req.GroupID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "group id is required")
	}
	group, err := s.directory.GetGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group.Type != directory.GroupTypeVolunteer && req.AmountCents <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "preset amount must be positive for fund groups")
	}

	tok, err := s.mint(ctx, func(value string) (*Token, error) {
		return NewPresetToken(value, group.ID, req.AmountCents, req.Label, req.ImageRef, requestcontext.Now(ctx))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementIssued(string(KindPreset))
	s.emit(ctx, audit.Event{
		Action:      audit.ActionTokenIssued,
		TokenValue:  tok.Value,
		GroupID:     group.ID,
		AmountCents: req.AmountCents,
	})

	return &Issued{
		Token:     tok,
		Group:     group,
		RedeemURL: RedeemURL(s.redeemBase, KindPreset, tok.Value),
	}, nil
}

// IssueIdentityBatch issues one identity token per row. Each row is
// independent: a failure reports in its BatchResult and the loop continues.
func (s *Service) IssueIdentityBatch(ctx context.Context, rows []IdentityIssueRequest) []BatchResult {
	results := make([]BatchResult, 0, len(rows))
	for i, row := range rows {
		issued, err := s.IssueIdentityToken(ctx, row)
		results = append(results, BatchResult{Row: i, Issued: issued, Err: err})
	}
	return results
}

// mint generates a unique value and persists the token, re-minting on the
// off chance of a value collision.
func (s *Service) mint(ctx context.Context, build func(value string) (*Token, error)) (*Token, error) {
	for attempt := 0; attempt < mintAttempts; attempt++ {
		value, err := NewValue()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token value")
		}
		tok, err := build(value)
		if err != nil {
			return nil, err
		}
		err = s.tokens.Create(ctx, tok)
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist token")
		}
	}
	return nil, dErrors.New(dErrors.CodeInternal, "token value collisions exhausted retries")
}
