// Package engine defines the contract between the harness and a verification
// engine, and provides an in-process engine that meters its work in cycles.
package engine

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
)

// Engine evaluates verifiable units.
// Both the in-process engine and the remote HTTP client satisfy this interface.
type Engine interface {
	// BuildMessage returns the signing target for a unit without a signature.
	// The result is deterministic for a given fingerprint, algorithm and entry category.
	BuildMessage(ctx context.Context, unit *authharness.VerifiableUnit) ([]byte, error)

	// Verify evaluates a unit carrying a signature within unit.CycleBudget.
	// A nil error means the signature was accepted.
	Verify(ctx context.Context, unit *authharness.VerifiableUnit) (*Result, error)

	// Supported lists the algorithms the engine can verify.
	Supported(ctx context.Context) ([]authharness.Algorithm, error)
}

// Result describes a successful verification.
type Result struct {
	// Cycles is the number of cycles the engine consumed.
	Cycles uint64 `json:"cycles"`
}

// validateFunc checks unit.Signature against target, charging m for the work.
type validateFunc func(m *meter, target []byte, unit *authharness.VerifiableUnit) error

// Local is an in-process engine.
type Local struct {
	validators map[authharness.Algorithm]validateFunc
	logger     *zap.Logger
}

// Option configures a Local engine.
type Option func(*Local)

// WithLogger sets the logger used for cycle accounting output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Local) {
		e.logger = logger
	}
}

// NewLocal creates an in-process engine with validators for Solana and Ethereum.
func NewLocal(opts ...Option) *Local {
	e := &Local{
		validators: map[authharness.Algorithm]validateFunc{
			authharness.AlgorithmSolana:   validateSolana,
			authharness.AlgorithmEthereum: validateEthereum,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildMessage implements Engine.
func (e *Local) BuildMessage(_ context.Context, unit *authharness.VerifiableUnit) ([]byte, error) {
	m := newMeter(unit.CycleBudget)
	if err := m.consume(CostLoadUnit, "loading unit"); err != nil {
		return nil, err
	}
	target, err := signingTarget(m, unit)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("built signing target",
		zap.Stringer("algorithm", unit.Algorithm),
		zap.Stringer("fingerprint", unit.Fingerprint),
		zap.Uint64("cycles", m.used))
	return target, nil
}

// Verify implements Engine.
func (e *Local) Verify(_ context.Context, unit *authharness.VerifiableUnit) (*Result, error) {
	m := newMeter(unit.CycleBudget)
	if err := m.consume(CostLoadUnit, "loading unit"); err != nil {
		return nil, err
	}

	validate, ok := e.validators[unit.Algorithm]
	if !ok {
		return nil, reject("unsupported algorithm %s", unit.Algorithm)
	}
	if len(unit.Signature) == 0 {
		return nil, reject("unit carries no signature")
	}

	target, err := signingTarget(m, unit)
	if err != nil {
		return nil, err
	}
	if err := validate(m, target, unit); err != nil {
		e.logger.Debug("verification rejected",
			zap.Stringer("algorithm", unit.Algorithm),
			zap.Uint64("cycles", m.used),
			zap.Error(err))
		return nil, err
	}

	e.logger.Debug("verification accepted",
		zap.Stringer("algorithm", unit.Algorithm),
		zap.Uint64("cycles", m.used),
		zap.Uint64("budget", unit.CycleBudget))
	return &Result{Cycles: m.used}, nil
}

// Supported implements Engine.
func (e *Local) Supported(context.Context) ([]authharness.Algorithm, error) {
	algs := make([]authharness.Algorithm, 0, len(e.validators))
	for alg := range e.validators {
		algs = append(algs, alg)
	}
	sort.Slice(algs, func(i, j int) bool { return algs[i] < algs[j] })
	return algs, nil
}

// reject builds an engine error for a signature the engine refuses.
func reject(format string, args ...interface{}) error {
	detail := fmt.Sprintf(format, args...)
	return authharness.EngineFailure(detail, authharness.ErrEngineRejected)
}
