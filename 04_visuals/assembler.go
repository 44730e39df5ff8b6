package visuals

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"story-shorts-pipeline/config"
)

// Background is the clip or still chosen for a run
type Background struct {
	Path   string `json:"path"`
	Still  bool   `json:"still"`
	Source string `json:"source"` // pexels | library | pollinations | procedural
	Query  string `json:"query,omitempty"`
}

// Recent is what earlier runs used, so this run can pick something else
type Recent struct {
	Clips   []string
	Queries []string
}

// Assembler walks the providers in fallback order until one yields a
// background
type Assembler struct {
	cfg          *config.Config
	pexels       *PexelsClient
	library      *Library
	pollinations *PollinationsFetcher
}

// NewAssembler creates a new visual Assembler
func NewAssembler(cfg *config.Config) *Assembler {
	vc := cfg.Visuals
	return &Assembler{
		cfg:          cfg,
		pexels:       NewPexelsClient(cfg, os.Getenv("PEXELS_API_KEY")),
		library:      NewLibrary(cfg.Paths.AssetsBG),
		pollinations: NewPollinationsFetcher(vc.PollinationsModel, vc.PollinationsAttempts, vc.RequestsPerMinute),
	}
}

type provider struct {
	name  string
	fetch func(ctx context.Context) (*Background, error)
}

// firstOf returns the first provider's background that succeeds. A
// cancelled context stops the chain.
func firstOf(ctx context.Context, providers []provider) (*Background, error) {
	var errs []error
	for _, p := range providers {
		bg, err := p.fetch(ctx)
		if err == nil {
			bg.Source = p.name
			log.Info().Str("source", p.name).Str("file", bg.Path).Msg("[visuals] ✅ Background ready")
			return bg, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Str("source", p.name).Msg("[visuals] ⚠️  provider failed, falling back")
		errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
	}
	return nil, fmt.Errorf("no background provider succeeded: %w", errors.Join(errs...))
}

// Shorts finds a portrait background: Pexels, then the local library, then
// a generated one.
func (a *Assembler) Shorts(ctx context.Context, rng *rand.Rand, recent Recent, outputDir string) (*Background, error) {
	log.Info().Msg("[visuals] Finding shorts background...")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	sc, rc := a.cfg.Shorts, a.cfg.Render

	return firstOf(ctx, []provider{
		{"pexels", func(ctx context.Context) (*Background, error) {
			out := filepath.Join(outputDir, "bg_pexels.mp4")
			q, err := a.pexels.Fetch(ctx, rng, recent.Queries, out)
			if err != nil {
				return nil, err
			}
			return &Background{Path: out, Query: q}, nil
		}},
		{"library", func(ctx context.Context) (*Background, error) {
			p, err := a.library.Pick(rng, recent.Clips)
			if err != nil {
				return nil, err
			}
			return &Background{Path: p}, nil
		}},
		{"procedural", func(ctx context.Context) (*Background, error) {
			out := filepath.Join(outputDir, "bg_procedural.mp4")
			i := 1 + rng.Intn(15)
			if err := Procedural(ctx, i, sc.Width, sc.Height, sc.FPS, a.cfg.Visuals.ProceduralSec, rc.Preset, rc.CRF, out); err != nil {
				return nil, err
			}
			return &Background{Path: out}, nil
		}},
	})
}

// Long finds a landscape background for a sleep story: a generated still for
// the theme, then a generated moving background.
func (a *Assembler) Long(ctx context.Context, rng *rand.Rand, theme string, outputDir string) (*Background, error) {
	log.Info().Str("theme", theme).Msg("[visuals] Finding long-form background...")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	lc, rc := a.cfg.Long, a.cfg.Render

	return firstOf(ctx, []provider{
		{"pollinations", func(ctx context.Context) (*Background, error) {
			out := filepath.Join(outputDir, "bg_still.jpg")
			if err := a.pollinations.Fetch(ctx, StillPrompt(theme), lc.Width, lc.Height, rng.Int63n(1_000_000), out); err != nil {
				return nil, err
			}
			return &Background{Path: out, Still: true}, nil
		}},
		{"procedural", func(ctx context.Context) (*Background, error) {
			out := filepath.Join(outputDir, "bg_procedural.mp4")
			if err := Procedural(ctx, 1+rng.Intn(15), lc.Width, lc.Height, lc.FPS, a.cfg.Visuals.ProceduralSec, rc.Preset, rc.CRF, out); err != nil {
				return nil, err
			}
			return &Background{Path: out}, nil
		}},
	})
}
