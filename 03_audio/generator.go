package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/mediatool"
	"story-shorts-pipeline/types"
)

// Generator handles TTS audio generation
type Generator struct {
	cfg     *config.Config
	synth   Synthesizer
	backoff time.Duration
}

// New creates a Generator on the engine named by audio.engine
func New(cfg *config.Config) (*Generator, error) {
	var (
		s   Synthesizer
		err error
	)
	switch cfg.Audio.Engine {
	case "polly":
		s, err = NewPollySynthesizer(cfg)
	default:
		s, err = NewCommandSynthesizer(cfg)
	}
	if err != nil {
		return nil, err
	}
	return NewWithSynthesizer(cfg, s), nil
}

// NewWithSynthesizer creates a Generator on an explicit engine
func NewWithSynthesizer(cfg *config.Config, s Synthesizer) *Generator {
	return &Generator{cfg: cfg, synth: s, backoff: 2 * time.Second}
}

// VoiceFor returns the engine's voice id for a speaker role. Roles without
// their own voice speak as the narrator.
func (g *Generator) VoiceFor(role types.Role) string {
	voices := g.cfg.Audio.Voices
	if g.cfg.Audio.Engine == "polly" {
		voices = g.cfg.Audio.PollyVoices
	}
	if v, ok := voices[string(role)]; ok && v != "" {
		return v
	}
	return voices[string(types.RoleNarrator)]
}

// Run synthesizes every line, normalizes the clips and fills in each line's
// AudioFile and measured DurationSec. Durations are unknown until probed.
func (g *Generator) Run(ctx context.Context, lines []types.Line, outputDir string) error {
	log.Info().Int("lines", len(lines)).Msg("[audio] Generating TTS audio for all lines...")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}

	for i := range lines {
		ln := &lines[i]
		text := strings.TrimSpace(ln.Text)
		if text == "" {
			return fmt.Errorf("line %d has no text to speak", i)
		}

		raw := filepath.Join(outputDir, fmt.Sprintf("line_%03d_raw%s", i, g.synth.Ext()))
		out := filepath.Join(outputDir, fmt.Sprintf("line_%03d.wav", i))
		voice := g.VoiceFor(ln.Speaker)

		log.Debug().Int("line", i+1).Int("of", len(lines)).Str("voice", voice).Msg("[audio] synthesizing")
		if err := synthesizeWithRetry(ctx, g.synth, text, voice, raw, g.cfg.Audio.Retries, g.backoff); err != nil {
			return fmt.Errorf("line %d TTS failed: %w", i, err)
		}
		if err := Normalize(raw, out, g.cfg.Audio.SampleRate, g.cfg.Audio.Channels); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		_ = os.Remove(raw)

		dur, err := mediatool.ProbeDuration(out)
		if err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		ln.AudioFile = out
		ln.DurationSec = dur
		log.Info().Int("line", i+1).Float64("sec", dur).Str("file", out).Msg("[audio] line ready")
	}

	log.Info().Int("lines", len(lines)).Msg("[audio] ✅ All lines synthesized")
	return nil
}

// Normalize re-encodes a clip to 16-bit PCM WAV with a fixed rate and channel
// count so every clip mixes the same way.
func Normalize(inFile, outFile string, sampleRate, channels int) error {
	err := ffmpeg.Input(inFile).
		Output(outFile, normalizeArgs(sampleRate, channels)).
		OverWriteOutput().
		Run()
	if err != nil {
		return &mediatool.ExternalToolError{Tool: "ffmpeg", Args: []string{"-i", inFile, outFile}, Err: err}
	}
	return nil
}

func normalizeArgs(sampleRate, channels int) ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"ac":  channels,
		"ar":  sampleRate,
		"c:a": "pcm_s16le",
	}
}
