package cipher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/machine"
	"github.com/RowanDark/inop/internal/wheels"
)

// Flags control the stages a pipeline runs.
type Flags struct {
	DoublePass    bool    `json:"double_pass" yaml:"double_pass"`
	Padding       bool    `json:"padding" yaml:"padding"`
	StepReflector bool    `json:"step_reflector" yaml:"step_reflector"`
	Block         int     `json:"block" yaml:"block"`
	BaseNoise     int     `json:"base_noise" yaml:"base_noise"`
	MarkerLen     int     `json:"marker_len" yaml:"marker_len"`
	TargetResidue int     `json:"target_residue" yaml:"target_residue"`
	NoiseScale    float64 `json:"noise_scale" yaml:"noise_scale"`
}

// DefaultFlags returns double pass with padding, a fixed reflector and
// blocks of eight.
func DefaultFlags() Flags {
	return Flags{
		DoublePass:    true,
		Padding:       true,
		Block:         8,
		BaseNoise:     8,
		MarkerLen:     5,
		TargetResidue: 1,
		NoiseScale:    0.25,
	}
}

// Validate rejects flag combinations the pipeline cannot run.
func (f Flags) Validate() error {
	var errs []error
	if f.Block < 1 {
		errs = append(errs, fmt.Errorf("block must be at least 1, got %d", f.Block))
	}
	if f.BaseNoise < 0 {
		errs = append(errs, fmt.Errorf("base_noise cannot be negative, got %d", f.BaseNoise))
	}
	if f.Padding && f.MarkerLen < 1 {
		errs = append(errs, fmt.Errorf("marker_len must be at least 1, got %d", f.MarkerLen))
	}
	if f.NoiseScale < 0 {
		errs = append(errs, fmt.Errorf("noise_scale cannot be negative, got %g", f.NoiseScale))
	}
	if f.TargetResidue < 0 {
		errs = append(errs, fmt.Errorf("target_residue cannot be negative, got %d", f.TargetResidue))
	}
	return errors.Join(errs...)
}

// Observer receives pipeline measurements.
type Observer interface {
	ObserveSymbols(suite string, n int)
	ObserveOperation(operation, outcome string, elapsed time.Duration)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSource replaces the secure default entropy source.
func WithSource(src Source) Option {
	return func(p *Pipeline) {
		if src != nil {
			p.source = src
		}
	}
}

// AllowDeterministic permits a deterministic source, for test fixtures.
func AllowDeterministic() Option {
	return func(p *Pipeline) {
		p.allowDeterministic = true
	}
}

// WithLogger sets the logger for pipeline and stepping traces.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver reports symbol counts and timings to obs.
func WithObserver(obs Observer) Option {
	return func(p *Pipeline) {
		p.observer = obs
	}
}

// Pipeline wraps a session with markers, cover padding and one or two
// encipher passes. A Pipeline is not safe for concurrent use.
type Pipeline struct {
	session            *Session
	flags              Flags
	source             Source
	allowDeterministic bool
	logger             *slog.Logger
	observer           Observer
}

// NewPipeline builds the session described by settings and wraps it.
func NewPipeline(settings Settings, catalog *wheels.Catalog, flags Flags, opts ...Option) (*Pipeline, error) {
	if err := flags.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p := &Pipeline{
		flags:  flags,
		source: CryptoSource{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.source.Tier() != TierSecure && !p.allowDeterministic {
		return nil, fmt.Errorf("pipeline: refusing %s entropy source for padding", p.source.Tier())
	}

	session, err := NewSession(settings, catalog,
		machine.WithLogger(p.logger),
		machine.WithReflectorStepping(flags.StepReflector),
	)
	if err != nil {
		return nil, err
	}
	p.session = session
	return p, nil
}

// Session returns the underlying session.
func (p *Pipeline) Session() *Session { return p.session }

// Flags returns the pipeline flags.
func (p *Pipeline) Flags() Flags { return p.flags }

// Encrypt normalises msg to the session alphabet, frames and pads it when
// padding is on, and enciphers it. The marker is empty when padding is off.
func (p *Pipeline) Encrypt(msg string) (ciphertext, marker string, err error) {
	start := time.Now()
	defer func() { p.observe("encrypt", start, err) }()

	a := p.session.Alphabet()
	working := alphabet.Preprocess(msg, a)

	if p.flags.Padding {
		marker, err = MakeMarker(p.source, a, p.flags.MarkerLen)
		if err != nil {
			return "", "", fmt.Errorf("pipeline: marker: %w", err)
		}
		working, err = Pad(p.source, a, marker+working+marker, marker, p.padParams())
		if err != nil {
			return "", "", fmt.Errorf("pipeline: padding: %w", err)
		}
	}

	ciphertext, err = p.passes(working)
	if err != nil {
		return "", "", err
	}
	p.logger.Debug("encrypted",
		slog.String("suite", p.session.Suite().Name),
		slog.Int("symbols", utf8.RuneCountInString(ciphertext)),
		slog.Bool("double_pass", p.flags.DoublePass),
		slog.Bool("padding", p.flags.Padding),
	)
	return ciphertext, marker, nil
}

// Decrypt reverses Encrypt. Whitespace in ciphertext is ignored so grouped
// output can be pasted back; any other symbol outside the alphabet fails
// with machine.ErrInvalidSymbol. With padding on, the text between the
// first and last marker is returned. ErrMarkerNotFound means the key, the
// flags or the ciphertext do not match.
func (p *Pipeline) Decrypt(ciphertext, marker string) (plaintext string, err error) {
	start := time.Now()
	defer func() { p.observe("decrypt", start, err) }()

	full, err := p.passes(stripSpace(ciphertext))
	if err != nil {
		return "", err
	}
	if !p.flags.Padding {
		return full, nil
	}
	plaintext, err = ExtractMessage(full, marker)
	if err != nil {
		return "", fmt.Errorf("pipeline: %w", err)
	}
	return plaintext, nil
}

// passes runs one pass, or two with the first output reversed in between.
// The machine is rewound before each pass.
func (p *Pipeline) passes(text string) (string, error) {
	out, err := p.session.Encipher(text)
	if err != nil {
		return "", fmt.Errorf("pipeline: first pass: %w", err)
	}
	n := utf8.RuneCountInString(out)
	if p.flags.DoublePass {
		out, err = p.session.Encipher(reverse(out))
		if err != nil {
			return "", fmt.Errorf("pipeline: second pass: %w", err)
		}
		n *= 2
	}
	if p.observer != nil {
		p.observer.ObserveSymbols(p.session.Suite().Name, n)
	}
	return out, nil
}

func (p *Pipeline) padParams() PadParams {
	return PadParams{
		BaseNoise:     p.flags.BaseNoise,
		Block:         p.flags.Block,
		TargetResidue: p.flags.TargetResidue,
		Scale:         p.flags.NoiseScale,
	}
}

func (p *Pipeline) observe(operation string, start time.Time, err error) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveOperation(operation, Outcome(err), time.Since(start))
}

// Outcome classifies err for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMarkerNotFound):
		return "marker_not_found"
	case errors.Is(err, machine.ErrInvalidSymbol), errors.Is(err, machine.ErrOutOfRange):
		return "invalid_symbol"
	default:
		return "error"
	}
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Blocks groups text into runs of size symbols separated by two spaces.
func Blocks(text string, size int) string {
	runes := []rune(text)
	if size < 1 || len(runes) <= size {
		return text
	}
	groups := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		groups = append(groups, string(runes[i:end]))
	}
	return strings.Join(groups, "  ")
}
