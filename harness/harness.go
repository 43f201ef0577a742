// Package harness drives a verification engine on behalf of a blockchain variant.
//
// A run resolves an account fingerprint, assembles the signature bytes from
// their textual parts, wraps both in a VerifiableUnit and hands the unit to
// the engine under a fixed cycle budget. Runs share no state.
package harness

import (
	"context"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/encoding"
	"github.com/mark3labs/auth-harness/engine"
)

// Config holds the engine parameters every unit is built with.
type Config struct {
	// CycleBudget is the maximum number of cycles one engine call may consume.
	CycleBudget uint64

	// EntryCategory is how the engine is entered.
	EntryCategory authharness.EntryCategory
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		CycleBudget:   engine.DefaultCycleBudget,
		EntryCategory: authharness.EntrySpawn,
	}
}

// Harness builds verifiable units and submits them to an engine.
type Harness struct {
	engine engine.Engine
	config Config
	logger *zap.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithConfig replaces the harness configuration.
func WithConfig(cfg Config) Option {
	return func(h *Harness) {
		h.config = cfg
	}
}

// WithCycleBudget sets the cycle budget.
func WithCycleBudget(budget uint64) Option {
	return func(h *Harness) {
		h.config.CycleBudget = budget
	}
}

// WithLogger sets the logger stage transitions are written to.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// New creates a harness around e.
func New(e engine.Engine, opts ...Option) *Harness {
	h := &Harness{
		engine: e,
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Config returns the harness configuration.
func (h *Harness) Config() Config {
	return h.config
}

// Engine returns the engine the harness submits units to.
func (h *Harness) Engine() engine.Engine {
	return h.engine
}

// Part is one textual component of a signature.
type Part struct {
	Text string
	Kind encoding.Kind
}

// AssembleSignature decodes each part and concatenates the results in order.
func AssembleSignature(parts ...Part) ([]byte, error) {
	var sig []byte
	for _, p := range parts {
		b, err := encoding.Decode(p.Text, p.Kind)
		if err != nil {
			return nil, err
		}
		sig = append(sig, b...)
	}
	return sig, nil
}

// ResolveFingerprint picks the fingerprint for a generate call. An explicit
// hex fingerprint wins over an address; derive turns an address into a
// fingerprint. Returns a MissingArgument error if neither is given.
func ResolveFingerprint(fingerprintHex, address string, derive func(string) (authharness.Fingerprint, error)) (authharness.Fingerprint, error) {
	switch {
	case fingerprintHex != "":
		raw, err := encoding.Decode(fingerprintHex, encoding.Hex)
		if err != nil {
			return authharness.Fingerprint{}, err
		}
		return authharness.FingerprintFromBytes(raw)
	case address != "":
		return derive(address)
	default:
		return authharness.Fingerprint{}, authharness.MissingArgument("address")
	}
}

func (h *Harness) newUnit(fp authharness.Fingerprint, alg authharness.Algorithm) *authharness.VerifiableUnit {
	return authharness.NewVerifiableUnit(fp, alg, h.config.EntryCategory, h.config.CycleBudget)
}

// Message returns the signing target of a unit for fp and alg.
func (h *Harness) Message(ctx context.Context, fp authharness.Fingerprint, alg authharness.Algorithm) ([]byte, error) {
	msg, err := h.engine.BuildMessage(ctx, h.newUnit(fp, alg))
	if err != nil {
		return nil, err
	}
	h.logger.Debug("signing target built",
		zap.Stringer("algorithm", alg),
		zap.Stringer("fingerprint", fp),
		zap.String("target", hex.EncodeToString(msg)))
	return msg, nil
}

// Generate returns the signing target for fp and alg rendered under the named
// encoding. An empty name selects encoding.Default. The encoding is checked
// before the engine is called.
func (h *Harness) Generate(ctx context.Context, fp authharness.Fingerprint, alg authharness.Algorithm, encodingName string) (string, error) {
	kind := encoding.Default
	if encodingName != "" {
		k, err := encoding.ParseKind(encodingName)
		if err != nil {
			return "", err
		}
		kind = k
	}
	msg, err := h.Message(ctx, fp, alg)
	if err != nil {
		return "", err
	}
	return encoding.Encode(msg, kind)
}

// Resolver yields the fingerprint of a verification run.
type Resolver func() (authharness.Fingerprint, error)

// Verify runs one verification: resolve the fingerprint, assemble the
// signature from parts, build the unit and invoke the engine.
//
// Errors carry the stage the run aborted at (see StageOf). Engine rejections
// are ENGINE_ERROR; every earlier failure keeps its own code.
func (h *Harness) Verify(ctx context.Context, alg authharness.Algorithm, resolve Resolver, parts ...Part) (*engine.Result, error) {
	r := run{logger: h.logger.With(zap.Stringer("algorithm", alg))}
	r.enter(StageStart)

	fp, err := resolve()
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(StageFingerprintResolved, zap.Stringer("fingerprint", fp))

	sig, err := AssembleSignature(parts...)
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(StageSignatureAssembled, zap.Int("signature_len", len(sig)))

	unit := h.newUnit(fp, alg)
	unit.AttachSignature(sig)
	r.enter(StageUnitBuilt, zap.Uint64("budget", unit.CycleBudget))

	result, err := h.engine.Verify(ctx, unit)
	r.enter(StageEngineInvoked)
	if err != nil {
		if authharness.CodeOf(err) == "" {
			err = authharness.EngineFailure("engine call failed", fmt.Errorf("%w: %v", authharness.ErrEngineUnavailable, err))
		}
		return nil, r.fail(err)
	}

	r.enter(StageSuccess, zap.Uint64("cycles", result.Cycles))
	return result, nil
}

type run struct {
	stage  Stage
	logger *zap.Logger
}

func (r *run) enter(stage Stage, fields ...zap.Field) {
	r.stage = stage
	r.logger.Debug("verification stage", append([]zap.Field{zap.Stringer("stage", stage)}, fields...)...)
}

func (r *run) fail(err error) error {
	at := r.stage
	err = tag(err, at)
	r.enter(StageFailure, zap.Stringer("aborted_at", at), zap.Error(err))
	return err
}
