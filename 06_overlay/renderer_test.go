package overlay

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/types"
)

// testConfig shrinks the canvas so the tests stay fast with the bitmap face
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Shorts.Width, cfg.Shorts.Height = 270, 480
	oc := &cfg.Overlay
	oc.FontPath = ""
	oc.ChatHeight = 245
	oc.HeaderX, oc.HeaderY = 12, 6
	oc.LeftX, oc.RightX = 15, 130
	oc.TopY, oc.RowPitch = 35, 36
	oc.Radius = 7
	oc.PadX, oc.PadY = 7, 4
	oc.LeftMaxWidth, oc.RightMaxWidth, oc.MaxBubbleWidth = 225, 125, 240
	oc.TypingWidth, oc.TypingHeight = 70, 22
	oc.PatternStep = 23
	oc.Workers = 4
	return cfg
}

func conversation() []types.Utterance {
	return []types.Utterance{
		{Index: 0, Speaker: types.RoleLeft, Text: "are you still up", Label: "9:41 PM", Start: 0.9, End: 2},
		{Index: 1, Speaker: types.RoleRight, Text: "yeah why", Label: "9:42 PM", Start: 4.2, End: 5},
		{Index: 2, Speaker: types.RoleInner, Text: "don't say it", Label: "9:43 PM", Start: 7.2, End: 8},
	}
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func TestRenderFrameDeterministic(t *testing.T) {
	r := New(testConfig())
	utts := conversation()
	frame := types.OverlayFrame{Ordinal: 5, Utterance: 1, Visible: 1, Step: 2, Steps: 3}

	a, err := r.RenderFrame(utts, frame, 42)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	b, err := r.RenderFrame(utts, frame, 42)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same seed produced different bytes")
	}

	differs := false
	for seed := int64(1); seed <= 8 && !differs; seed++ {
		c, err := r.RenderFrame(utts, frame, 42+seed)
		if err != nil {
			t.Fatalf("RenderFrame: %v", err)
		}
		differs = !bytes.Equal(a, c)
	}
	if !differs {
		t.Error("no other seed changed the frame")
	}
}

func TestRenderFrameTransparency(t *testing.T) {
	cfg := testConfig()
	r := New(cfg)
	data, err := r.RenderFrame(conversation(), types.OverlayFrame{Utterance: 2, Visible: 3}, 1)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	img := decode(t, data)
	b := img.Bounds()
	if b.Dx() != cfg.Shorts.Width || b.Dy() != cfg.Shorts.Height {
		t.Fatalf("image is %dx%d, want %dx%d", b.Dx(), b.Dy(), cfg.Shorts.Width, cfg.Shorts.Height)
	}
	if _, _, _, a := img.At(5, cfg.Shorts.Height-5).RGBA(); a != 0 {
		t.Errorf("below the chat area alpha = %d, want transparent", a)
	}
	if _, _, _, a := img.At(2, 2).RGBA(); a == 0 {
		t.Error("chat area is transparent")
	}
}

func TestRenderFrameRejectsMissingMessages(t *testing.T) {
	r := New(testConfig())
	if _, err := r.RenderFrame(conversation()[:1], types.OverlayFrame{Utterance: 2, Visible: 3}, 1); err == nil {
		t.Error("expected error for frame showing more messages than exist")
	}
	if _, err := r.RenderFrame(conversation(), types.OverlayFrame{Utterance: 7, Visible: 0, Step: 1, Steps: 3}, 1); err == nil {
		t.Error("expected error for typing into a missing message")
	}
}

func TestRunWritesFrames(t *testing.T) {
	dir := t.TempDir()
	r := New(testConfig())
	frames, err := r.Run(context.Background(), conversation(), 10, 3, dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(frames) != 12 {
		t.Fatalf("got %d frames, want 12", len(frames))
	}
	for i, f := range frames {
		if f.ImagePath == "" {
			t.Fatalf("frame %d has no image", i)
		}
		if filepath.Base(f.ImagePath) != FileName(f) {
			t.Errorf("frame %d written as %s", i, filepath.Base(f.ImagePath))
		}
		data, err := os.ReadFile(f.ImagePath)
		if err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		decode(t, data)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(testConfig()).Run(ctx, conversation(), 10, 3, t.TempDir()); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestWrapLines(t *testing.T) {
	width := func(s string) float64 { return float64(len(s)) }
	tests := []struct {
		text string
		max  float64
		want []string
	}{
		{"one two three four", 9, []string{"one two", "three", "four"}},
		{"short", 40, []string{"short"}},
		{"  spaced   out  ", 40, []string{"spaced out"}},
		{"incomprehensibilities ok", 5, []string{"incomprehensibilities", "ok"}},
		{"", 10, nil},
	}
	for _, tt := range tests {
		got := wrapLines(tt.text, tt.max, width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("wrapLines(%q, %v) = %q, want %q", tt.text, tt.max, got, tt.want)
		}
	}
}
