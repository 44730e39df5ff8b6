package overlay

import (
	"testing"

	"story-shorts-pipeline/types"
)

func TestFileNames(t *testing.T) {
	tests := []struct {
		frame types.OverlayFrame
		want  string
	}{
		{types.OverlayFrame{Ordinal: 0, Utterance: -1}, "overlay_000_idle.png"},
		{types.OverlayFrame{Ordinal: 1, Utterance: 0, Step: 2, Steps: 3}, "overlay_001_msg01_typing2.png"},
		{types.OverlayFrame{Ordinal: 12, Utterance: 4, Visible: 5}, "overlay_012_msg05.png"},
	}
	for _, tt := range tests {
		got := FileName(tt.frame)
		if got != tt.want {
			t.Errorf("FileName(%+v) = %q, want %q", tt.frame, got, tt.want)
		}
		info, ok := ParseFileName(got)
		if !ok {
			t.Fatalf("ParseFileName(%q) failed", got)
		}
		if info.Ordinal != tt.frame.Ordinal || info.Utterance != tt.frame.Utterance || info.Step != tt.frame.Step {
			t.Errorf("ParseFileName(%q) = %+v", got, info)
		}
	}
}

func TestParseFileNameRejects(t *testing.T) {
	for _, name := range []string{"overlay_1_idle.png", "frame_000.png", "overlay_000_msg01.jpg", "overlay_000_msg1.png"} {
		if _, ok := ParseFileName(name); ok {
			t.Errorf("ParseFileName(%q) accepted", name)
		}
	}
}
