package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/mediatool"
	"story-shorts-pipeline/types"
)

// Effect is a prepared notification sound placed at a message's appearance
type Effect struct {
	Utterance int
	Path      string
	StartSec  float64
}

// Effects prepares the short sound each message makes when it lands
type Effects struct {
	cfg *config.Config
}

// NewEffects creates a new Effects matcher
func NewEffects(cfg *config.Config) *Effects {
	return &Effects{cfg: cfg}
}

// Run prepares one clip per sound file in use and places it at every
// utterance whose role has a sound. Missing sound files are skipped with a
// warning; effects never fail a run.
func (e *Effects) Run(ctx context.Context, utts []types.Utterance, outputDir string) []Effect {
	ec := e.cfg.Effects
	if !ec.Enabled {
		log.Info().Msg("[audio] Effects disabled in config, skipping")
		return nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Warn().Err(err).Msg("[audio] ⚠️  effects dir")
		return nil
	}

	prepared := map[string]string{} // source file → prepared clip
	var out []Effect
	for i, u := range utts {
		name := e.pick(u.Speaker)
		if name == "" {
			continue
		}
		clip, ok := prepared[name]
		if !ok {
			src := filepath.Join(ec.Dir, name)
			if _, err := os.Stat(src); err != nil {
				log.Warn().Str("file", src).Msg("[audio] ⚠️  effect file not found")
				prepared[name] = ""
				continue
			}
			dst := filepath.Join(outputDir, fmt.Sprintf("fx_%02d.wav", len(prepared)))
			if err := mediatool.Run(ctx, "ffmpeg", e.prepareArgs(src, dst)...); err != nil {
				log.Warn().Err(err).Str("file", src).Msg("[audio] ⚠️  effect prep failed")
				prepared[name] = ""
				continue
			}
			prepared[name] = dst
			clip = dst
		}
		if clip == "" {
			continue
		}
		out = append(out, Effect{Utterance: i, Path: clip, StartSec: u.Start})
	}

	log.Info().Int("effects", len(out)).Msg("[audio] ✅ Effects placed")
	return out
}

// pick returns the sound file for a role, or "" for none
func (e *Effects) pick(role types.Role) string {
	return e.cfg.Effects.ByRole[string(role)]
}

// prepareArgs trims the sound, applies volume and fades, and matches the
// speech clips' format.
func (e *Effects) prepareArgs(src, dst string) []string {
	ec := e.cfg.Effects
	filter := fmt.Sprintf(
		"volume=%.2f,afade=t=in:st=0:d=%.2f,afade=t=out:st=%.3f:d=%.2f",
		ec.Volume,
		ec.FadeInSec,
		max(ec.MaxSec-ec.FadeOutSec, 0),
		ec.FadeOutSec,
	)
	return []string{"-y",
		"-i", src,
		"-t", fmt.Sprintf("%.3f", ec.MaxSec),
		"-af", filter,
		"-ac", fmt.Sprint(e.cfg.Audio.Channels),
		"-ar", fmt.Sprint(e.cfg.Audio.SampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}
}
