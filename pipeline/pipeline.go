// Package pipeline runs one end-to-end video job: story, audio, timeline,
// overlay, background, render, metadata and upload.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"story-shorts-pipeline/09_upload"
	"story-shorts-pipeline/config"
	"story-shorts-pipeline/state"
	"story-shorts-pipeline/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options are the per-run switches
type Options struct {
	Seed   int64 // 0 picks one from the clock
	DryRun bool  // skip auth and upload, copy the video to paths.output
}

// Pipeline owns the collaborators shared across runs
type Pipeline struct {
	cfg      *config.Config
	store    state.Store
	uploader *upload.Uploader
}

// New creates a Pipeline with the configured state backend
func New(cfg *config.Config) (*Pipeline, error) {
	store, err := state.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, store: store, uploader: upload.New(cfg)}, nil
}

// Close releases the state backend
func (p *Pipeline) Close() error {
	if c, ok := p.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// run is the bookkeeping for one job
type run struct {
	id      string
	workDir string
	rng     *rand.Rand
	now     time.Time
	ps      *types.PipelineState
}

func (p *Pipeline) begin(variant string, opts Options) (*run, error) {
	now := time.Now()
	seed := opts.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	id := uuid.NewString()[:8]
	workDir := filepath.Join(p.cfg.Paths.Work, id)
	for _, dir := range []string{workDir, p.cfg.Paths.Output, p.cfg.Paths.Logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	log.Info().Str("run", id).Str("variant", variant).Int64("seed", seed).Msg("🎬 Pipeline starting")
	return &run{
		id:      id,
		workDir: workDir,
		rng:     rand.New(rand.NewSource(seed)),
		now:     now,
		ps: &types.PipelineState{
			RunID:     id,
			Variant:   variant,
			Seed:      seed,
			StartedAt: now.UTC().Format(time.RFC3339),
		},
	}, nil
}

// finish persists the run state and removes the scratch dir whether the
// run failed or not
func (p *Pipeline) finish(r *run, err error) {
	defer os.RemoveAll(r.workDir)

	r.ps.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		r.ps.Error = err.Error()
	}
	stateFile := filepath.Join(p.cfg.Paths.Logs, fmt.Sprintf("pipeline_%s_%s.json", r.ps.Variant, r.id))
	saveJSON(stateFile, r.ps)

	if err != nil {
		log.Error().Str("run", r.id).Msgf("❌ Pipeline failed: %s", r.ps.Error)
		return
	}
	where := r.ps.YouTubeURL
	if where == "" {
		where = r.ps.VideoFile
	}
	log.Info().Str("run", r.id).Msgf("✅ Pipeline complete! Video: %s", where)
}

// publish uploads the video, or copies it to paths.output on a dry run
func (p *Pipeline) publish(ctx context.Context, r *run, videoFile string, md *types.VideoMetadata, dryRun bool) error {
	if dryRun {
		out := filepath.Join(p.cfg.Paths.Output, fmt.Sprintf("%s_%s.mp4", r.ps.Variant, r.id))
		if err := copyFile(videoFile, out); err != nil {
			return err
		}
		r.ps.VideoFile = out
		log.Info().Str("file", out).Msg("[upload] Dry run, video kept locally")
		return nil
	}

	id, url, err := p.uploader.Run(ctx, videoFile, md)
	if err != nil {
		return err
	}
	r.ps.YouTubeID = id
	r.ps.YouTubeURL = url
	if _, err := upload.LogUpload(id, url, videoFile, p.cfg.Paths.Logs, md, time.Now()); err != nil {
		log.Warn().Err(err).Msg("[upload] ⚠️  could not write upload log")
	}
	return nil
}

// remember records what this run used so the next runs avoid it
func (p *Pipeline) remember(ctx context.Context, st *state.State, r *run, entries map[string]string) {
	for kind, v := range entries {
		if v != "" {
			st.Remember(kind, v, p.cfg.State.RecentLimit)
		}
	}
	st.Runs++
	st.LastRunAt = r.now.UTC().Format(time.RFC3339)
	if err := p.store.Save(ctx, st); err != nil {
		log.Warn().Err(err).Msg("⚠️  could not save state")
	}
}

func (p *Pipeline) loadState(ctx context.Context) *state.State {
	st, err := p.store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  could not load state, starting fresh")
		return state.New()
	}
	return st
}

func stageErr(n int, name string, err error) error {
	return fmt.Errorf("Stage %d %s: %w", n, name, err)
}

func banner(n int, name string) {
	log.Info().Msgf("━━━ STAGE %d: %s ━━━", n, name)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("could not marshal JSON")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("could not save JSON")
	}
}
