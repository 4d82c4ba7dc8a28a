package core

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"screening-datagen/internal/background"
	"screening-datagen/internal/persona"
	"screening-datagen/internal/profile"
	"screening-datagen/pkg"
)

// Sink persists finished session records and reports where they went.
type Sink interface {
	Save(ctx context.Context, rec *pkg.SessionRecord) (string, error)
}

// BatchConfig controls one batch run.
type BatchConfig struct {
	Sessions       int
	Seed           int64
	Overrides      profile.Overrides
	PersonaID      string
	SkipBackground bool
}

// BatchResult collects the outcome of a batch. A record whose save failed is
// still included in Records.
type BatchResult struct {
	Records   []*pkg.SessionRecord
	Locations []string
	Failed    int
	Errors    []error
}

// Batch generates sessions one after another from a single RNG.
type Batch struct {
	engine     *Engine
	background *background.Generator
	sink       Sink
	log        logrus.FieldLogger
}

// NewBatch constructs a Batch. gen and sink may be nil to skip background
// generation or persistence.
func NewBatch(engine *Engine, gen *background.Generator, sink Sink, log logrus.FieldLogger) *Batch {
	return &Batch{engine: engine, background: gen, sink: sink, log: log}
}

// Run generates cfg.Sessions sessions. Per-session failures are logged and
// counted; only invalid configuration or cancellation stop the batch.
func (b *Batch) Run(ctx context.Context, cfg BatchConfig) (*BatchResult, error) {
	if err := cfg.Overrides.Validate(); err != nil {
		return nil, fmt.Errorf("invalid overrides: %w", err)
	}
	if cfg.PersonaID != "" {
		if _, ok := persona.Lookup(cfg.PersonaID); !ok {
			b.log.WithField("persona", cfg.PersonaID).Warnf("unknown persona, using %s", persona.DefaultID)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	sampler := profile.NewSampler(rng)
	res := &BatchResult{}

	for i := 0; i < cfg.Sessions; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		log := b.log.WithFields(logrus.Fields{"session": i + 1, "of": cfg.Sessions})

		rec, err := b.runOne(ctx, rng, sampler, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.WithError(err).Error("session failed")
			res.Failed++
			res.Errors = append(res.Errors, fmt.Errorf("session %d: %w", i+1, err))
			continue
		}
		res.Records = append(res.Records, rec)

		if b.sink == nil {
			continue
		}
		loc, err := b.sink.Save(ctx, rec)
		if err != nil {
			log.WithError(err).WithField("agent_id", rec.AgentID).Error("failed to save session record")
			res.Errors = append(res.Errors, fmt.Errorf("session %d: %w", i+1, err))
			continue
		}
		res.Locations = append(res.Locations, loc)
		log.WithFields(logrus.Fields{"agent_id": rec.AgentID, "location": loc}).Info("session saved")
	}
	return res, nil
}

// runOne samples the inputs of one session in the fixed draw order
// (profile, background, persona, microstyle) and runs it.
func (b *Batch) runOne(ctx context.Context, rng *rand.Rand, sampler *profile.Sampler, cfg BatchConfig) (*pkg.SessionRecord, error) {
	p, err := sampler.Sample(cfg.Overrides)
	if err != nil {
		return nil, fmt.Errorf("sample profile: %w", err)
	}
	in := SessionInput{Seed: cfg.Seed, Rng: rng, Profile: p}

	if b.background != nil && !cfg.SkipBackground {
		bg := b.background.Generate(ctx, rng, p)
		in.Background = bg.Background
		in.BackgroundTrace = &bg.Trace
		in.BackgroundUsage = bg.Usage
	}

	if cfg.PersonaID != "" {
		in.Persona, _ = persona.Lookup(cfg.PersonaID)
	} else {
		in.Persona = persona.Choose(rng)
	}
	in.Microstyle = persona.SampleMicrostyle(rng)

	return b.engine.Run(ctx, in)
}
