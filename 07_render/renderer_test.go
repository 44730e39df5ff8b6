package render

import (
	"strings"
	"testing"

	"story-shorts-pipeline/config"
)

func indexOf(args []string, v string) int {
	for i, a := range args {
		if a == v {
			return i
		}
	}
	return -1
}

func TestArgsInputOrder(t *testing.T) {
	cfg := config.Default()
	r := New(cfg)
	set := &InstructionSet{
		Layers:    []Layer{{Image: "f0.png", End: 1}, {Image: "f1.png", Start: 1, End: 35}},
		Audio:     []AudioInput{{Path: "v0.wav", DelayMs: 2150, Weight: 1}},
		Subtitles: "work/subtitles.srt",
		TotalSec:  35,
	}
	args := r.Args(set, Background{Path: "bg.mp4"}, r.ShortsCanvas(), "out.mp4")

	var inputs []string
	for i, a := range args {
		if a == "-i" {
			inputs = append(inputs, args[i+1])
		}
	}
	want := []string{"bg.mp4", "f0.png", "f1.png", "v0.wav"}
	if strings.Join(inputs, ",") != strings.Join(want, ",") {
		t.Fatalf("inputs = %v, want %v", inputs, want)
	}
	if i := indexOf(args, "-stream_loop"); i < 0 || args[i+1] != "-1" {
		t.Error("video background is not looped")
	}

	graph := args[indexOf(args, "-filter_complex")+1]
	if !strings.Contains(graph, "[3:a]adelay=2150|2150") {
		t.Errorf("audio read from the wrong input:\n%s", graph)
	}
	if !strings.Contains(graph, "subtitles=filename=work/subtitles.srt:force_style=") {
		t.Errorf("captions not burned in:\n%s", graph)
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output = %q", args[len(args)-1])
	}
	if i := indexOf(args, "-t"); i < 0 || args[i+1] != "35.000" {
		t.Error("output not cut to the timeline length")
	}
}

func TestArgsStillBackground(t *testing.T) {
	cfg := config.Default()
	r := New(cfg)
	set := &InstructionSet{Ambient: &Ambient{Amplitude: 0.03, LowpassHz: 1800, Volume: 0.1}, TotalSec: 120}
	args := r.Args(set, Background{Path: "still.jpg", Still: true}, r.LongCanvas(), "long.mp4")

	if i := indexOf(args, "-loop"); i < 0 || args[i+1] != "1" {
		t.Fatal("still background is not looped")
	}
	if indexOf(args, "-stream_loop") >= 0 {
		t.Error("still background also stream-looped")
	}
	graph := args[indexOf(args, "-filter_complex")+1]
	if !strings.Contains(graph, "zoompan") || !strings.Contains(graph, "[amb]amix=inputs=1") {
		t.Errorf("long-form graph incomplete:\n%s", graph)
	}
}
