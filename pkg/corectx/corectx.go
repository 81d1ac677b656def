// Package corectx provides an explicit runtime context bundle, in place of
// global singletons — grounded on the teacher's conform.RunContext.
package corectx

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/scie-systems/scie-core/pkg/config"
)

// EvidenceWriter is a kind-tagged evidence sink. *worm.Chain does not
// implement it directly; cmd/scie's chainEvidenceWriter adapts a chain to
// it. Declared here to avoid a cyclic import between corectx and worm.
// sharedRefs correlates an
// entry with others in the derived evidence graph (§4.D "Evidence graph
// view").
type EvidenceWriter interface {
	Append(kind string, payload any, sharedRefs ...string) (seq uint64, digest string, err error)
}

// Cache is a byte-valued key/value cache. The validator's result caches
// implement validator.ResultCache (keyed by CacheKey), not this interface.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

// Context bundles a run's identity, configuration, clock, RNG, evidence
// writer and cache as explicit dependencies, in the shape of the
// teacher's RunContext. The extractor, validator, WORM chain, integrity
// analyzer and controller do not take a Context; they receive their
// dependencies as separate constructor arguments.
type Context struct {
	RunID       string
	RepoRoot    string
	Config      *config.Config
	Clock       func() time.Time
	RNG         *rand.Rand
	Evidence    EvidenceWriter
	Cache       Cache
	ExtraConfig map[string]any
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithClock overrides the context's time source, for deterministic tests —
// the same injection point the teacher uses on RunContext.
func WithClock(clock func() time.Time) Option {
	return func(c *Context) { c.Clock = clock }
}

// WithRNG overrides the context's random source, for deterministic tests
// of jitter/sampling-dependent code paths.
func WithRNG(rng *rand.Rand) Option {
	return func(c *Context) { c.RNG = rng }
}

// WithEvidence attaches a WORM evidence writer.
func WithEvidence(w EvidenceWriter) Option {
	return func(c *Context) { c.Evidence = w }
}

// WithCache attaches a result cache backend.
func WithCache(cache Cache) Option {
	return func(c *Context) { c.Cache = cache }
}

// New constructs a Context with sane, explicit defaults: a real-time clock
// and a seeded RNG, both of which callers may override via Option.
func New(runID, repoRoot string, cfg *config.Config, opts ...Option) *Context {
	c := &Context{
		RunID:    runID,
		RepoRoot: repoRoot,
		Config:   cfg,
		Clock:    time.Now,
		RNG:      rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the current time according to the context's clock.
func (c *Context) Now() time.Time {
	return c.Clock()
}

// NewSharedRef mints a fresh shared-reference UUID for correlating
// evidence entries in the derived evidence graph (§4.D, §4.E "Relinking").
func (c *Context) NewSharedRef() string {
	return uuid.New().String()
}
