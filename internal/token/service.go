package token

import (
	"context"
	"log/slog"

	"scanledger/internal/directory"
	"scanledger/internal/token/metrics"
	id "scanledger/pkg/domain"
	audit "scanledger/pkg/platform/audit"
)

// Directory is the slice of the donor/group directory the token service needs.
type Directory interface {
	FindOrCreateDonor(ctx context.Context, name, className, gradeName, cohort string) (*directory.Donor, error)
	GetDonor(ctx context.Context, donorID id.DonorID) (*directory.Donor, error)
	GetGroup(ctx context.Context, groupID id.GroupID) (*directory.Group, error)
	DeleteDonor(ctx context.Context, donorID id.DonorID) error
}

// LedgerRefs answers whether ledger rows still reference a donor. The delete
// cascade consults it so donation history is never orphaned.
type LedgerRefs interface {
	HasDonorRows(ctx context.Context, donorID id.DonorID) (bool, error)
}

// AuditEmitter records administrative actions. Emission is best-effort for
// this module; failures are logged by the publisher, not propagated.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service mints, validates, and manages tokens.
type Service struct {
	tokens     Store
	directory  Directory
	ledger     LedgerRefs
	redeemBase string

	auditor AuditEmitter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAudit(a AuditEmitter) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds the token service. redeemBase is the public base URL
// encoded into printable QR artifacts.
func NewService(tokens Store, dir Directory, ledger LedgerRefs, redeemBase string, opts ...Option) *Service {
	s := &Service{
		tokens:     tokens,
		directory:  dir,
		ledger:     ledger,
		redeemBase: redeemBase,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RedeemURLFor rebuilds the redeem URL encoded on a token's printed card.
func (s *Service) RedeemURLFor(t *Token) string {
	return RedeemURL(s.redeemBase, t.Kind, t.Value)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		_ = s.auditor.Emit(ctx, event)
	}
}
