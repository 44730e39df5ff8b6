package subtitles

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"story-shorts-pipeline/types"
)

const eps = 1e-9

func TestEmitScenarioSevenWords(t *testing.T) {
	opts := Options{ChunkWords: 3, MinCueSec: 1, MaxCueSec: 3}
	cues, err := Emit("a b c d e f g", 7.0, opts)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	wantText := []string{"a b c", "d e f", "g"}
	if len(cues) != len(wantText) {
		t.Fatalf("got %d cues, want %d", len(cues), len(wantText))
	}
	per := math.Min(math.Max(7.0/3, opts.MinCueSec), opts.MaxCueSec)
	for i, c := range cues {
		if c.Text != wantText[i] {
			t.Errorf("cue %d text = %q, want %q", i, c.Text, wantText[i])
		}
		if c.Index != i+1 {
			t.Errorf("cue %d index = %d", i, c.Index)
		}
		if math.Abs(c.Start-float64(i)*per) > eps {
			t.Errorf("cue %d start = %v, want %v", i, c.Start, float64(i)*per)
		}
	}
	if cues[2].End != 7.0 {
		t.Errorf("last end = %v, want exactly 7.0", cues[2].End)
	}
}

func TestEmitMaxClampExtendsLast(t *testing.T) {
	cues, err := Emit("one two three four five six", 10, Options{ChunkWords: 3, MinCueSec: 0.5, MaxCueSec: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 3 {
		t.Errorf("first cue = [%v,%v], want [0,3]", cues[0].Start, cues[0].End)
	}
	if cues[1].Start != 3 || cues[1].End != 10 {
		t.Errorf("last cue = [%v,%v], want [3,10]", cues[1].Start, cues[1].End)
	}
}

func TestEmitMinClampFoldsOverflow(t *testing.T) {
	cues, err := Emit("a b c d e f g h i j", 2, Options{ChunkWords: 1, MinCueSec: 0.8, MaxCueSec: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 3 {
		t.Fatalf("got %d cues: %+v", len(cues), cues)
	}
	if cues[2].Text != "c d e f g h i j" {
		t.Errorf("folded text = %q", cues[2].Text)
	}
	if cues[2].End != 2 {
		t.Errorf("last end = %v, want 2", cues[2].End)
	}
}

func TestEmitEmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		cues, err := Emit(text, 5, Options{ChunkWords: 3, MinCueSec: 1, MaxCueSec: 2})
		if err != nil || len(cues) != 0 {
			t.Errorf("Emit(%q) = %v, %v; want no cues, no error", text, cues, err)
		}
	}
}

func TestEmitErrors(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		opts  Options
	}{
		{"min over max", 5, Options{ChunkWords: 3, MinCueSec: 3, MaxCueSec: 1}},
		{"zero chunk", 5, Options{ChunkWords: 0, MinCueSec: 1, MaxCueSec: 2}},
		{"negative min", 5, Options{ChunkWords: 2, MinCueSec: -1, MaxCueSec: 2}},
		{"zero max", 5, Options{ChunkWords: 2, MinCueSec: 0, MaxCueSec: 0}},
		{"zero total", 0, Options{ChunkWords: 2, MinCueSec: 1, MaxCueSec: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Emit("some words here", tt.total, tt.opts)
			var ee *EmitError
			if !errors.As(err, &ee) {
				t.Fatalf("err = %v, want *EmitError", err)
			}
		})
	}
}

func TestEmitProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	vocab := strings.Fields("the quiet city breathes slowly while lanterns glow and nothing asks anything of you")
	for trial := 0; trial < 300; trial++ {
		n := 1 + rng.Intn(40)
		words := make([]string, n)
		for i := range words {
			words[i] = vocab[rng.Intn(len(vocab))]
		}
		total := 0.5 + rng.Float64()*30
		minCue := rng.Float64() * 2
		opts := Options{ChunkWords: 1 + rng.Intn(5), MinCueSec: minCue, MaxCueSec: minCue + rng.Float64()*3 + 0.01}

		cues, err := Emit(strings.Join(words, " "), total, opts)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if len(cues) == 0 {
			t.Fatalf("trial %d: no cues for non-empty text", trial)
		}
		if cues[len(cues)-1].End != total {
			t.Fatalf("trial %d: last end %v != total %v", trial, cues[len(cues)-1].End, total)
		}
		var joined []string
		for i, c := range cues {
			joined = append(joined, c.Text)
			if c.Start >= c.End {
				t.Fatalf("trial %d cue %d: start %v >= end %v", trial, i, c.Start, c.End)
			}
			if c.End > total {
				t.Fatalf("trial %d cue %d: end %v past total %v", trial, i, c.End, total)
			}
			if i > 0 && c.End < cues[i-1].End {
				t.Fatalf("trial %d: ends decrease at %d", trial, i)
			}
			if i < len(cues)-1 {
				d := c.End - c.Start
				if d < opts.MinCueSec-eps || d > opts.MaxCueSec+eps {
					t.Fatalf("trial %d cue %d: duration %v outside [%v,%v]", trial, i, d, opts.MinCueSec, opts.MaxCueSec)
				}
			}
		}
		if strings.Join(joined, " ") != strings.Join(words, " ") {
			t.Fatalf("trial %d: text lost", trial)
		}
	}
}

func TestEmitTimeline(t *testing.T) {
	utts := []types.Utterance{
		{Index: 0, Text: "hello there friend", Start: 2, End: 4},
		{Index: 1, Text: "say it", Start: 7, End: 0},
		{Index: 2, Text: "", Start: 9, End: 10},
		{Index: 3, Text: "I can not type the last part", Start: 12, End: 30},
	}
	cues, err := EmitTimeline(utts, 20, Options{ChunkWords: 3, MinCueSec: 0.5, MaxCueSec: 3})
	if err != nil {
		t.Fatalf("EmitTimeline: %v", err)
	}
	if len(cues) != 1+1+3 {
		t.Fatalf("got %d cues: %+v", len(cues), cues)
	}
	for i, c := range cues {
		if c.Index != i+1 {
			t.Errorf("cue %d index %d", i, c.Index)
		}
		if i > 0 && c.Start < cues[i-1].End-eps {
			t.Errorf("cue %d overlaps previous", i)
		}
	}
	// first utterance stays within its spoken span
	if cues[0].Start != 2 || cues[0].End != 4 {
		t.Errorf("cue 0 = [%v,%v], want [2,4]", cues[0].Start, cues[0].End)
	}
	// unknown duration runs to the next start
	if cues[1].Start != 7 || cues[1].End != 9 {
		t.Errorf("cue 1 = [%v,%v], want [7,9]", cues[1].Start, cues[1].End)
	}
	// last utterance is capped by the total
	if cues[len(cues)-1].End != 20 {
		t.Errorf("last end = %v, want 20", cues[len(cues)-1].End)
	}
}

func TestEmitTimelinePastEnd(t *testing.T) {
	utts := []types.Utterance{{Text: "late line", Start: 40}}
	_, err := EmitTimeline(utts, 35, Options{ChunkWords: 3, MinCueSec: 0.5, MaxCueSec: 3})
	var ee *EmitError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want *EmitError", err)
	}
}

func TestEmitFoldsSubMillisecondTail(t *testing.T) {
	cues, err := Emit("a b c d e f", 2.0004, Options{ChunkWords: 2, MinCueSec: 1, MaxCueSec: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues: %+v", len(cues), cues)
	}
	if cues[1].Text != "c d e f" || cues[1].Start != 1 || cues[1].End != 2.0004 {
		t.Errorf("last cue = %+v", cues[1])
	}
	for i, c := range cues {
		if FormatTimestamp(c.Start) == FormatTimestamp(c.End) {
			t.Errorf("cue %d %q written with zero length at %s", i, c.Text, FormatTimestamp(c.Start))
		}
	}
}

func TestEmitTimelineMergesZeroLengthCues(t *testing.T) {
	utts := []types.Utterance{
		{Index: 0, Text: "first line here", Start: 0, End: 2},
		{Index: 1, Text: "x", Start: 2, End: 2.0003},
	}
	cues, err := EmitTimeline(utts, 2.0003, Options{ChunkWords: 3, MinCueSec: 0.5, MaxCueSec: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 1 {
		t.Fatalf("got %d cues: %+v", len(cues), cues)
	}
	if cues[0].Text != "first line here x" || cues[0].End != 2.0003 {
		t.Errorf("merged cue = %+v", cues[0])
	}
}

func TestEmitTimelineMillisecondProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vocab := strings.Fields("say it I almost sent this text and then deleted it again")
	for trial := 0; trial < 300; trial++ {
		n := 1 + rng.Intn(12)
		utts := make([]types.Utterance, n)
		var words []string
		at := 1.0
		for i := range utts {
			k := 1 + rng.Intn(8)
			text := make([]string, k)
			for j := range text {
				text[j] = vocab[rng.Intn(len(vocab))]
			}
			words = append(words, text...)
			utts[i] = types.Utterance{Index: i, Text: strings.Join(text, " "), Start: at, End: at + rng.Float64()*0.004}
			if rng.Intn(2) == 0 {
				utts[i].End = at + rng.Float64()*4
			}
			if i == 0 {
				// the opening line always has room for a cue
				utts[i].End = 0
				at++
			}
			at += 0.0001 + rng.Float64()*rng.Float64()*3
		}
		opts := Options{ChunkWords: 1 + rng.Intn(4), MinCueSec: rng.Float64() * 0.01, MaxCueSec: 0.5 + rng.Float64()*3, VoiceLeadSec: rng.Float64() * 0.2}
		total := at + opts.VoiceLeadSec + rng.Float64()

		cues, err := EmitTimeline(utts, total, opts)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		var got []string
		for i, c := range cues {
			got = append(got, c.Text)
			if c.Index != i+1 {
				t.Fatalf("trial %d: cue %d has index %d", trial, i, c.Index)
			}
			if FormatTimestamp(c.Start) >= FormatTimestamp(c.End) {
				t.Fatalf("trial %d cue %d: %s --> %s", trial, i, FormatTimestamp(c.Start), FormatTimestamp(c.End))
			}
			if i > 0 && c.Start < cues[i-1].End-eps {
				t.Fatalf("trial %d: cue %d overlaps previous", trial, i)
			}
		}
		if strings.Join(got, " ") != strings.Join(words, " ") {
			t.Fatalf("trial %d: text lost", trial)
		}
	}
}

func TestEmitTimelineFollowsVoiceLead(t *testing.T) {
	utts := []types.Utterance{
		{Index: 0, Text: "hook", Start: 2, End: 3},
		{Index: 1, Text: "say it", Start: 7, End: 0},
	}
	cues, err := EmitTimeline(utts, 35, Options{ChunkWords: 3, MinCueSec: 0.5, MaxCueSec: 3, VoiceLeadSec: 0.15})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cues[0].Start-2.15) > eps || math.Abs(cues[0].End-3.15) > eps {
		t.Errorf("cue 0 = [%v,%v], want [2.15,3.15]", cues[0].Start, cues[0].End)
	}
	if math.Abs(cues[1].Start-7.15) > eps || cues[1].End != 35 {
		t.Errorf("cue 1 = [%v,%v], want [7.15,35]", cues[1].Start, cues[1].End)
	}

	if _, err := EmitTimeline(utts, 35, Options{ChunkWords: 3, MinCueSec: 0.5, MaxCueSec: 3, VoiceLeadSec: -1}); err == nil {
		t.Error("negative voice lead accepted")
	}
}
