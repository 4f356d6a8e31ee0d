package token

import (
	"context"

	id "scanledger/pkg/domain"
)

// Store persists tokens. Implementations return sentinel.ErrNotFound for
// missing values and sentinel.ErrConflict when a value collides.
type Store interface {
	Create(ctx context.Context, token *Token) error
	FindByValue(ctx context.Context, value string) (*Token, error)
	SetActive(ctx context.Context, value string, active bool) error
	Delete(ctx context.Context, value string) error
	// CountByDonor reports how many tokens still reference a donor; the
	// delete cascade consults it before removing the donor record.
	CountByDonor(ctx context.Context, donorID id.DonorID) (int, error)
	List(ctx context.Context) ([]*Token, error)
}
