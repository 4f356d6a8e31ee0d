package ledger

import (
	"context"
	"errors"
	"log/slog"

	"scanledger/internal/directory"
	"scanledger/internal/ledger/metrics"
	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
	audit "scanledger/pkg/platform/audit"
	"scanledger/pkg/platform/sentinel"
	"scanledger/pkg/requestcontext"
)

// Directory is the slice of the donor/group directory the ledger needs:
// names for summaries and the group type for preset dispatch.
type Directory interface {
	GetDonor(ctx context.Context, donorID id.DonorID) (*directory.Donor, error)
	GetGroup(ctx context.Context, groupID id.GroupID) (*directory.Group, error)
}

// AuditEmitter records ledger writes on the audit trail.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service records redemptions. Writes are single INSERTs and are never
// retried on failure: a storage error after the INSERT may mean the row
// landed, and a silent retry could double-record a gift.
type Service struct {
	store     Store
	directory Directory

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

func NewService(store Store, dir Directory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		directory: dir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordDonation appends a donation row. Duplicate gifts are legitimate (the
// same child really can give twice), so no deduplication happens here.
func (s *Service) RecordDonation(ctx context.Context, donorID id.DonorID, groupID id.GroupID, amountCents int64) (*DonationSummary, error) {
	if amountCents <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "donation amount must be positive")
	}

	donor, err := s.directory.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	group, err := s.directory.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Type != directory.GroupTypeFund {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "group %q does not accept donations", group.Name)
	}

	now := requestcontext.Now(ctx)
	donation := &Donation{
		ID:          id.NewDonationID(),
		DonorID:     donorID,
		GroupID:     groupID,
		AmountCents: amountCents,
		Source:      SourceScan,
		CreatedAt:   now,
	}
	if err := s.store.AppendDonation(ctx, donation); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record donation")
	}

	s.metrics.RecordDonation(amountCents)
	s.emit(ctx, audit.Event{
		Action:      audit.ActionDonationRecorded,
		DonorID:     donorID,
		GroupID:     groupID,
		AmountCents: amountCents,
	})
	s.logger.InfoContext(ctx, "donation recorded",
		"donation_id", donation.ID,
		"donor_id", donorID,
		"group_id", groupID,
		"amount_cents", amountCents,
	)

	return &DonationSummary{
		DonationID:  donation.ID,
		DonorName:   donor.Name,
		GroupName:   group.Name,
		AmountCents: amountCents,
		RecordedAt:  now,
	}, nil
}

// RecordParticipation appends a participation row. Uniqueness per
// (donor, group) comes from the storage layer; a duplicate surfaces as a
// conflict, never as a second row.
func (s *Service) RecordParticipation(ctx context.Context, donorID id.DonorID, groupID id.GroupID) (*ParticipationSummary, error) {
	donor, err := s.directory.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	group, err := s.directory.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Type != directory.GroupTypeVolunteer {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "group %q is not a volunteer group", group.Name)
	}

	now := requestcontext.Now(ctx)
	participation := &Participation{
		ID:        id.NewParticipationID(),
		DonorID:   donorID,
		GroupID:   groupID,
		CreatedAt: now,
	}
	if err := s.store.AppendParticipation(ctx, participation); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.RecordDuplicateParticipation()
			return nil, dErrors.Newf(dErrors.CodeConflict, "%s already joined %s", donor.Name, group.Name)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record participation")
	}

	s.metrics.RecordParticipation()
	s.emit(ctx, audit.Event{
		Action:  audit.ActionParticipationRecorded,
		DonorID: donorID,
		GroupID: groupID,
	})
	s.logger.InfoContext(ctx, "participation recorded",
		"participation_id", participation.ID,
		"donor_id", donorID,
		"group_id", groupID,
	)

	return &ParticipationSummary{
		ParticipationID: participation.ID,
		DonorName:       donor.Name,
		GroupName:       group.Name,
		RecordedAt:      now,
	}, nil
}

// RedemptionResult is the outcome of a preset redemption, whichever branch
// the group type selected.
type RedemptionResult struct {
	Donation      *DonationSummary
	Participation *ParticipationSummary
}

// RedeemPreset dispatches a preset redemption on the group type: volunteer
// groups record participation (the preset amount is ignored), funds record a
// donation with the bound amount.
func (s *Service) RedeemPreset(ctx context.Context, donorID id.DonorID, groupID id.GroupID, amountCents int64) (*RedemptionResult, error) {
	group, err := s.directory.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if group.Type == directory.GroupTypeVolunteer {
		participation, err := s.RecordParticipation(ctx, donorID, groupID)
		if err != nil {
			return nil, err
		}
		return &RedemptionResult{Participation: participation}, nil
	}

	donation, err := s.RecordDonation(ctx, donorID, groupID, amountCents)
	if err != nil {
		return nil, err
	}
	return &RedemptionResult{Donation: donation}, nil
}

// HasDonorRows reports whether the ledger references a donor. The token
// delete cascade uses it.
func (s *Service) HasDonorRows(ctx context.Context, donorID id.DonorID) (bool, error) {
	has, err := s.store.HasDonorRows(ctx, donorID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check ledger references")
	}
	return has, nil
}

// DonationsFor lists a donor's donations for the display surface.
func (s *Service) DonationsFor(ctx context.Context, donorID id.DonorID) ([]*Donation, error) {
	donations, err := s.store.ListDonationsByDonor(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return donations, nil
}

// ParticipationsFor lists a donor's participations for the display surface.
func (s *Service) ParticipationsFor(ctx context.Context, donorID id.DonorID) ([]*Participation, error) {
	participations, err := s.store.ListParticipationsByDonor(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participations")
	}
	return participations, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		_ = s.auditor.Emit(ctx, event)
	}
}
