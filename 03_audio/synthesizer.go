package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/mediatool"
)

// Synthesizer turns text into a waveform file in the given voice
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, outFile string) error
	// Ext is the file extension the engine writes, with the dot
	Ext() string
}

// CommandSynthesizer runs a local TTS program.
// Set TTS_COMMAND in .env to a program that accepts
//
//	--text "..." --voice <id> --output path/to/file.wav
//
// or to a .py script taking the same flags. Without TTS_COMMAND the Coqui
// `tts` CLI is used when installed, then edge-tts.
type CommandSynthesizer struct {
	command    string
	coquiModel string
	edgeVoices map[string]string
}

// NewCommandSynthesizer picks the TTS program from the environment and PATH
func NewCommandSynthesizer(cfg *config.Config) (*CommandSynthesizer, error) {
	s := &CommandSynthesizer{
		command:    strings.TrimSpace(os.Getenv("TTS_COMMAND")),
		coquiModel: cfg.Audio.CoquiModel,
		edgeVoices: cfg.Audio.EdgeVoices,
	}
	if s.command != "" {
		return s, nil
	}
	for _, bin := range []string{"tts", "edge-tts"} {
		if _, err := exec.LookPath(bin); err == nil {
			s.command = bin
			log.Info().Str("engine", bin).Msg("[audio] Using fallback TTS engine")
			return s, nil
		}
	}
	return nil, fmt.Errorf("no TTS engine found. Set TTS_COMMAND in .env or install Coqui TTS (pip install TTS) or edge-tts")
}

func (s *CommandSynthesizer) Ext() string {
	if s.command == "edge-tts" {
		return ".mp3"
	}
	return ".wav"
}

func (s *CommandSynthesizer) Synthesize(ctx context.Context, text, voice, outFile string) error {
	name, args := s.commandLine(text, voice, outFile)
	return mediatool.Run(ctx, name, args...)
}

func (s *CommandSynthesizer) commandLine(text, voice, outFile string) (string, []string) {
	switch {
	case s.command == "tts":
		return "tts", []string{
			"--model_name", s.coquiModel,
			"--speaker_idx", voice,
			"--text", text,
			"--out_path", outFile,
		}
	case s.command == "edge-tts":
		if v, ok := s.edgeVoices[voice]; ok {
			voice = v
		}
		return "edge-tts", []string{"--voice", voice, "--text", text, "--write-media", outFile}
	case strings.HasSuffix(s.command, ".py"):
		return "python3", []string{s.command, "--text", text, "--voice", voice, "--output", outFile}
	default:
		return s.command, []string{"--text", text, "--voice", voice, "--output", outFile}
	}
}

// synthesizeWithRetry retries failed synthesis with a linear backoff
func synthesizeWithRetry(ctx context.Context, s Synthesizer, text, voice, outFile string, attempts int, backoff time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = s.Synthesize(ctx, text, voice, outFile); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("[audio] ⚠️  TTS attempt failed, retrying...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * backoff):
		}
	}
	return err
}
