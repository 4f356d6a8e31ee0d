// Package scan drives operator scan sessions: the state machine that turns a
// stream of raw scanner reads into validated tokens and recorded ledger rows.
// The machine is synchronous and transport-agnostic; HTTP handlers (or any
// future socket transport) are thin adapters over HandleScan/Submit/Cancel.
package scan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"scanledger/internal/directory"
	"scanledger/internal/ledger"
	"scanledger/internal/scan/debounce"
	"scanledger/internal/scan/metrics"
	"scanledger/internal/token"
	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
)

// Mode selects how a session interprets scans.
type Mode string

const (
	// ModeNormal captures an identity, then waits for the operator to
	// submit an amount and fund.
	ModeNormal Mode = "NORMAL"
	// ModePreset redeems every identity scan immediately against an
	// operator-selected group and amount.
	ModePreset Mode = "PRESET"
	// ModePhysicalPreset is ModePreset driven by a hardware wedge station.
	ModePhysicalPreset Mode = "PHYSICAL_PRESET"
	// ModePhysicalSequence alternates identity and preset card scans:
	// scan the child, then scan the card for what they gave.
	ModePhysicalSequence Mode = "PHYSICAL_SEQUENCE"
)

// Step is where a session is within its mode's flow.
type Step string

const (
	StepIdle             Step = "IDLE"
	StepAwaitingSubmit   Step = "AWAITING_AMOUNT_AND_FUND"
	StepAwaitingIdentity Step = "AWAITING_IDENTITY"
	StepAwaitingPreset   Step = "AWAITING_PRESET"
)

// Validator resolves raw scans to tokens and their bound entities.
type Validator interface {
	Validate(ctx context.Context, rawScan string, expectedKind *token.Kind) (*token.Resolved, error)
}

// Redeemer writes ledger rows for validated scans.
type Redeemer interface {
	RecordDonation(ctx context.Context, donorID id.DonorID, groupID id.GroupID, amountCents int64) (*ledger.DonationSummary, error)
	RedeemPreset(ctx context.Context, donorID id.DonorID, groupID id.GroupID, amountCents int64) (*ledger.RedemptionResult, error)
}

// PresetConfig is the operator-selected target for PRESET and
// PHYSICAL_PRESET sessions.
type PresetConfig struct {
	GroupID     id.GroupID
	AmountCents int64
}

// Outcome is what a scan (or submit) produced, shaped for the operator UI.
// Exactly one of the result fields is meaningful, selected by Kind.
type Outcome struct {
	Kind OutcomeKind

	// Donor is set when an identity was captured and the session now waits
	// for more input (DonorCaptured).
	Donor *directory.Donor
	// Donation / Participation are set when a ledger row was written.
	Donation      *ledger.DonationSummary
	Participation *ledger.ParticipationSummary

	// NextStep tells the UI what the session expects next.
	NextStep Step
}

// OutcomeKind tags scan outcomes.
type OutcomeKind string

const (
	// OutcomeDebounced: duplicate read inside the window, discarded with
	// no side effects.
	OutcomeDebounced OutcomeKind = "DEBOUNCED"
	// OutcomeDonorCaptured: identity validated, session awaits the next
	// input before any ledger write.
	OutcomeDonorCaptured OutcomeKind = "DONOR_CAPTURED"
	// OutcomeRecorded: a ledger row was written.
	OutcomeRecorded OutcomeKind = "RECORDED"
)

// Session is one operator's scan session. All methods are safe for
// concurrent use; at most one redemption is in flight at a time — a scan
// arriving while one is being recorded is rejected as busy, never
// interleaved with it.
type Session struct {
	ID       id.SessionID
	Operator string

	validator Validator
	redeemer  Redeemer
	guard     debounce.Guard
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu       sync.Mutex
	mode     Mode
	step     Step
	preset   PresetConfig
	captured *directory.Donor
	inFlight bool
}

// SessionOption configures optional session collaborators.
type SessionOption func(*Session)

func WithGuard(g debounce.Guard) SessionOption {
	return func(s *Session) { s.guard = g }
}

func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession opens a session in the given mode. PRESET and PHYSICAL_PRESET
// require a preset config; the amount requirement against the group type is
// checked at redemption, where the group is loaded.
func NewSession(operator string, mode Mode, preset *PresetConfig, validator Validator, redeemer Redeemer, opts ...SessionOption) (*Session, error) {
	if validator == nil || redeemer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "session requires a validator and a redeemer")
	}

	s := &Session{
		ID:        id.NewSessionID(),
		Operator:  operator,
		validator: validator,
		redeemer:  redeemer,
		guard:     debounce.NewMemory(debounce.DefaultWindow),
		logger:    slog.Default(),
		mode:      mode,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch mode {
	case ModeNormal:
		s.step = StepIdle
	case ModePreset, ModePhysicalPreset:
		if preset == nil || preset.GroupID.IsNil() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "preset mode requires a group")
		}
		s.preset = *preset
		s.step = StepIdle
	case ModePhysicalSequence:
		s.step = StepAwaitingIdentity
	default:
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown session mode %q", mode)
	}
	return s, nil
}

// Mode returns the session's mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Step returns what the session expects next.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// HandleScan feeds one raw scanner read through the session. It is
// synchronous: when it returns, any ledger row it implies has been written.
func (s *Session) HandleScan(ctx context.Context, rawValue string) (*Outcome, error) {
	started := time.Now()

	s.mu.Lock()
	if s.inFlight {
		mode := s.mode
		s.mu.Unlock()
		s.metrics.RecordScan(string(mode), "busy", time.Since(started).Seconds())
		return nil, dErrors.New(dErrors.CodeConflict, "another scan is being recorded")
	}

	allowed, err := s.guard.Allow(ctx, s.ID.String(), rawValue)
	if err != nil {
		s.mu.Unlock()
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "debounce check failed")
	}
	if !allowed {
		step := s.step
		s.mu.Unlock()
		s.metrics.RecordDebounced()
		return &Outcome{Kind: OutcomeDebounced, NextStep: step}, nil
	}

	s.inFlight = true
	mode := s.mode
	s.mu.Unlock()

	outcome, err := s.dispatch(ctx, mode, rawValue)

	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()

	result := "ok"
	if err != nil {
		result = "rejected"
	}
	s.metrics.RecordScan(string(mode), result, time.Since(started).Seconds())

	if err == nil && outcome.Kind == OutcomeRecorded {
		s.logger.InfoContext(ctx, "scan redeemed",
			"session_id", s.ID,
			"mode", mode,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
	return outcome, err
}

func (s *Session) dispatch(ctx context.Context, mode Mode, rawValue string) (*Outcome, error) {
	switch mode {
	case ModeNormal:
		return s.scanNormal(ctx, rawValue)
	case ModePreset, ModePhysicalPreset:
		return s.scanPreset(ctx, rawValue)
	case ModePhysicalSequence:
		return s.scanSequence(ctx, rawValue)
	}
	return nil, dErrors.Newf(dErrors.CodeInternal, "unknown session mode %q", mode)
}

// scanNormal captures an identity and waits for Submit. A second identity
// scan before Submit replaces the captured donor; the operator is re-aiming,
// not stacking.
func (s *Session) scanNormal(ctx context.Context, rawValue string) (*Outcome, error) {
	kind := token.KindIdentity
	resolved, err := s.validator.Validate(ctx, rawValue, &kind)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.captured = resolved.Donor
	s.step = StepAwaitingSubmit
	s.mu.Unlock()

	return &Outcome{Kind: OutcomeDonorCaptured, Donor: resolved.Donor, NextStep: StepAwaitingSubmit}, nil
}

// scanPreset validates an identity and redeems it immediately against the
// session's preset group.
func (s *Session) scanPreset(ctx context.Context, rawValue string) (*Outcome, error) {
	kind := token.KindIdentity
	resolved, err := s.validator.Validate(ctx, rawValue, &kind)
	if err != nil {
		return nil, err
	}

	result, err := s.redeemer.RedeemPreset(ctx, resolved.Donor.ID, s.preset.GroupID, s.preset.AmountCents)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Kind:          OutcomeRecorded,
		Donor:         resolved.Donor,
		Donation:      result.Donation,
		Participation: result.Participation,
		NextStep:      StepIdle,
	}, nil
}

// scanSequence alternates identity and preset scans. Any failure at either
// step resets to AWAITING_IDENTITY and discards the captured donor, so a
// misread card never pairs a donation with the wrong child.
func (s *Session) scanSequence(ctx context.Context, rawValue string) (*Outcome, error) {
	s.mu.Lock()
	step := s.step
	captured := s.captured
	s.mu.Unlock()

	if step == StepAwaitingIdentity {
		kind := token.KindIdentity
		resolved, err := s.validator.Validate(ctx, rawValue, &kind)
		if err != nil {
			s.resetSequence()
			return nil, err
		}
		s.mu.Lock()
		s.captured = resolved.Donor
		s.step = StepAwaitingPreset
		s.mu.Unlock()
		return &Outcome{Kind: OutcomeDonorCaptured, Donor: resolved.Donor, NextStep: StepAwaitingPreset}, nil
	}

	// AWAITING_PRESET
	kind := token.KindPreset
	resolved, err := s.validator.Validate(ctx, rawValue, &kind)
	if err != nil {
		s.resetSequence()
		return nil, err
	}

	result, err := s.redeemer.RedeemPreset(ctx, captured.ID, resolved.Group.ID, resolved.AmountCents)
	if err != nil {
		s.resetSequence()
		return nil, err
	}

	s.resetSequence()
	return &Outcome{
		Kind:          OutcomeRecorded,
		Donor:         captured,
		Donation:      result.Donation,
		Participation: result.Participation,
		NextStep:      StepAwaitingIdentity,
	}, nil
}

func (s *Session) resetSequence() {
	s.mu.Lock()
	s.captured = nil
	s.step = StepAwaitingIdentity
	s.mu.Unlock()
}

// Submit completes a NORMAL-mode capture with the operator-entered amount
// and fund, writing the donation.
func (s *Session) Submit(ctx context.Context, amountCents int64, groupID id.GroupID) (*Outcome, error) {
	s.mu.Lock()
	if s.mode != ModeNormal {
		s.mu.Unlock()
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "submit is not valid in %s mode", s.mode)
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeConflict, "another scan is being recorded")
	}
	if s.step != StepAwaitingSubmit || s.captured == nil {
		s.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeInvalidState, "no donor captured; scan an identity token first")
	}
	donor := s.captured
	s.inFlight = true
	s.mu.Unlock()

	donation, err := s.redeemer.RecordDonation(ctx, donor.ID, groupID, amountCents)

	s.mu.Lock()
	s.inFlight = false
	if err == nil {
		s.captured = nil
		s.step = StepIdle
	}
	s.mu.Unlock()

	if err != nil {
		// The capture survives a failed submit so the operator can fix
		// the amount or fund without re-scanning the child.
		return nil, err
	}
	return &Outcome{Kind: OutcomeRecorded, Donor: donor, Donation: donation, NextStep: StepIdle}, nil
}

// Cancel discards partial state without any ledger write. Like SwitchMode
// it refuses while a redemption is in flight, so the reset cannot be
// overwritten when the scan commits its state.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return dErrors.New(dErrors.CodeConflict, "another scan is being recorded")
	}
	s.captured = nil
	if s.mode == ModePhysicalSequence {
		s.step = StepAwaitingIdentity
	} else {
		s.step = StepIdle
	}
	return nil
}

// SwitchMode resets the session into a new mode, discarding everything.
func (s *Session) SwitchMode(mode Mode, preset *PresetConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return dErrors.New(dErrors.CodeConflict, "another scan is being recorded")
	}

	switch mode {
	case ModeNormal:
		s.preset = PresetConfig{}
		s.step = StepIdle
	case ModePreset, ModePhysicalPreset:
		if preset == nil || preset.GroupID.IsNil() {
			return dErrors.New(dErrors.CodeBadRequest, "preset mode requires a group")
		}
		s.preset = *preset
		s.step = StepIdle
	case ModePhysicalSequence:
		s.preset = PresetConfig{}
		s.step = StepAwaitingIdentity
	default:
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown session mode %q", mode)
	}
	s.mode = mode
	s.captured = nil
	return nil
}
