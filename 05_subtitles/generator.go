package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/mediatool"
	"story-shorts-pipeline/types"
)

// Generator builds the caption track and its burn-in style
type Generator struct {
	cfg *config.Config
}

// New creates a new subtitle Generator
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Options returns the cue bounds from config
func (g *Generator) Options() Options {
	return Options{
		ChunkWords: g.cfg.Subtitles.ChunkWords,
		MinCueSec:  g.cfg.Subtitles.MinCueSec,
		MaxCueSec:  g.cfg.Subtitles.MaxCueSec,
	}
}

// Run emits cues for the scheduled utterances and writes subtitles.srt.
// voiceLead is how far the mix delays each voice clip behind its utterance.
func (g *Generator) Run(utts []types.Utterance, totalSec, voiceLead float64, outputDir string) (string, []types.Cue, error) {
	log.Info().Int("utterances", len(utts)).Msg("[subtitles] Emitting caption cues...")

	opts := g.Options()
	opts.VoiceLeadSec = voiceLead
	cues, err := EmitTimeline(utts, totalSec, opts)
	if err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", nil, err
	}

	srtFile := filepath.Join(outputDir, "subtitles.srt")
	if err := WriteFile(srtFile, cues); err != nil {
		return "", nil, fmt.Errorf("write srt: %w", err)
	}

	log.Info().Int("cues", len(cues)).Str("file", srtFile).Msg("[subtitles] ✅ SRT written")
	return srtFile, cues, nil
}

// BurnFilter is the subtitles filter that burns srtFile into the video
func BurnFilter(srtFile string, sc config.SubtitlesConfig) string {
	return fmt.Sprintf(
		"subtitles=filename=%s:force_style='%s'",
		mediatool.EscapePath(srtFile),
		ForceStyle(sc),
	)
}

// ForceStyle renders the ASS override list for the subtitles filter
func ForceStyle(sc config.SubtitlesConfig) string {
	return fmt.Sprintf(
		"FontName=%s,FontSize=%d,Bold=%d,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,Outline=%.0f,Alignment=%d,MarginV=%d",
		styleSafe(sc.Font),
		sc.FontSize,
		boolToInt(sc.Bold),
		sc.Outline,
		sc.Alignment,
		sc.MarginV,
	)
}

// styleSafe drops characters that would end the quoted force_style value
// or split it into another override.
func styleSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', ',', '\\', '=':
			return -1
		}
		return r
	}, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
