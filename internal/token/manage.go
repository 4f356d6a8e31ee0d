package token

import (
	"context"
	"errors"

	dErrors "scanledger/pkg/domain-errors"
	audit "scanledger/pkg/platform/audit"
	"scanledger/pkg/platform/sentinel"
)

// SetTokenActive soft-enables or soft-disables a token. Deactivated tokens
// fail validation but keep their binding; reactivation restores them intact.
func (s *Service) SetTokenActive(ctx context.Context, value string, active bool) error {
	if err := s.tokens.SetActive(ctx, value, active); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update token")
	}

	action := audit.ActionTokenDeactivated
	if active {
		action = audit.ActionTokenReactivated
	}
	s.emit(ctx, audit.Event{Action: action, TokenValue: value})
	return nil
}

// DeleteToken permanently removes a token. For identity tokens the bound
// donor is removed too, but only when this was the donor's last token AND no
// donation or participation rows reference the donor; ledger history is never
// orphaned by deleting a display card.
func (s *Service) DeleteToken(ctx context.Context, value string) error {
	tok, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "token lookup failed")
	}

	if err := s.tokens.Delete(ctx, value); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete token")
	}
	s.metrics.IncrementDeleted()

	event := audit.Event{Action: audit.ActionTokenDeleted, TokenValue: value}

	if identity, ok := tok.Identity(); ok {
		event.DonorID = identity.DonorID

		remaining, err := s.tokens.CountByDonor(ctx, identity.DonorID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count donor tokens")
		}
		hasRows, err := s.ledger.HasDonorRows(ctx, identity.DonorID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check ledger references")
		}
		if remaining == 0 && !hasRows {
			if err := s.directory.DeleteDonor(ctx, identity.DonorID); err != nil {
				// The token itself is gone; a donor left behind is a
				// housekeeping problem, not a failed operation.
				if !dErrors.HasCode(err, dErrors.CodeNotFound) {
					s.logger.WarnContext(ctx, "donor cleanup failed after token delete",
						"donor_id", identity.DonorID,
						"error", err,
					)
				}
			}
		}
	}

	s.emit(ctx, event)
	return nil
}

// ListTokens returns all tokens for the management surface.
func (s *Service) ListTokens(ctx context.Context) ([]*Token, error) {
	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tokens")
	}
	return tokens, nil
}
