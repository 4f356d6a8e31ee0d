package scan

import (
	"log/slog"

	"scanledger/internal/scan/debounce"
	"scanledger/internal/scan/metrics"
)

// Factory opens sessions with the process's shared collaborators. Each
// session gets its own guard from newGuard, so a redis-backed deployment can
// hand every session the shared guard while the default stays per-session
// memory.
type Factory struct {
	validator Validator
	redeemer  Redeemer
	newGuard  func() debounce.Guard
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// FactoryOption configures the factory.
type FactoryOption func(*Factory)

func FactoryWithGuard(newGuard func() debounce.Guard) FactoryOption {
	return func(f *Factory) { f.newGuard = newGuard }
}

func FactoryWithMetrics(m *metrics.Metrics) FactoryOption {
	return func(f *Factory) { f.metrics = m }
}

func FactoryWithLogger(l *slog.Logger) FactoryOption {
	return func(f *Factory) { f.logger = l }
}

func NewFactory(validator Validator, redeemer Redeemer, opts ...FactoryOption) *Factory {
	f := &Factory{
		validator: validator,
		redeemer:  redeemer,
		newGuard:  func() debounce.Guard { return debounce.NewMemory(debounce.DefaultWindow) },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open creates a session in the given mode.
func (f *Factory) Open(operator string, mode Mode, preset *PresetConfig) (*Session, error) {
	return NewSession(operator, mode, preset, f.validator, f.redeemer,
		WithGuard(f.newGuard()),
		WithMetrics(f.metrics),
		WithLogger(f.logger),
	)
}
