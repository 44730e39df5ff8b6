package audio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/types"
)

type flakySynth struct {
	failures int
	calls    int
}

func (f *flakySynth) Synthesize(ctx context.Context, text, voice, outFile string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("engine busy")
	}
	return nil
}

func (f *flakySynth) Ext() string { return ".wav" }

func TestSynthesizeWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		attempts  int
		wantErr   bool
		wantCalls int
	}{
		{"first try", 0, 3, false, 1},
		{"recovers", 2, 3, false, 3},
		{"gives up", 5, 3, true, 3},
		{"zero attempts still tries once", 0, 0, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &flakySynth{failures: tt.failures}
			err := synthesizeWithRetry(context.Background(), s, "hi", "p225", "out.wav", tt.attempts, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if s.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", s.calls, tt.wantCalls)
			}
		})
	}
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		command  string
		voice    string
		wantName string
		want     string
	}{
		{"tts", "p226", "tts", "--model_name tts_models/en/vctk/vits --speaker_idx p226 --text hello --out_path o.wav"},
		{"edge-tts", "p226", "edge-tts", "--voice en-US-GuyNeural --text hello --write-media o.wav"},
		{"edge-tts", "en-GB-SoniaNeural", "edge-tts", "--voice en-GB-SoniaNeural --text hello --write-media o.wav"},
		{"/opt/voice.py", "p225", "python3", "/opt/voice.py --text hello --voice p225 --output o.wav"},
		{"/usr/local/bin/say-it", "p225", "/usr/local/bin/say-it", "--text hello --voice p225 --output o.wav"},
	}
	cfg := config.Default()
	for _, tt := range tests {
		s := &CommandSynthesizer{command: tt.command, coquiModel: cfg.Audio.CoquiModel, edgeVoices: cfg.Audio.EdgeVoices}
		name, args := s.commandLine("hello", tt.voice, "o.wav")
		if name != tt.wantName || strings.Join(args, " ") != tt.want {
			t.Errorf("%s: got %s %v", tt.command, name, args)
		}
	}
}

func TestVoiceFor(t *testing.T) {
	cfg := config.Default()
	g := NewWithSynthesizer(cfg, &flakySynth{})
	tests := map[types.Role]string{
		types.RoleLeft:     "p225",
		types.RoleRight:    "p226",
		types.RoleInner:    "p225",
		types.RoleNarrator: "p225",
		types.Role("ghost"): "p225",
	}
	for role, want := range tests {
		if got := g.VoiceFor(role); got != want {
			t.Errorf("VoiceFor(%s) = %q, want %q", role, got, want)
		}
	}

	cfg.Audio.Engine = "polly"
	if got := g.VoiceFor(types.RoleRight); got != "Matthew" {
		t.Errorf("polly VoiceFor(right) = %q, want Matthew", got)
	}
}

func TestRunRejectsEmptyLine(t *testing.T) {
	g := NewWithSynthesizer(config.Default(), &flakySynth{})
	err := g.Run(context.Background(), []types.Line{{Speaker: types.RoleLeft, Text: "   "}}, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no text") {
		t.Fatalf("err = %v, want empty-line error", err)
	}
}

func TestNormalizeArgs(t *testing.T) {
	args := normalizeArgs(22050, 1)
	if args["ar"] != 22050 || args["ac"] != 1 || args["c:a"] != "pcm_s16le" {
		t.Errorf("normalizeArgs = %v", args)
	}
}
