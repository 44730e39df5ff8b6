package schedule

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/types"
)

const eps = 1e-9

func lines(durations ...float64) []types.Line {
	out := make([]types.Line, len(durations))
	for i, d := range durations {
		out[i] = types.Line{Speaker: types.RoleLeft, Text: "line", DurationSec: d}
	}
	return out
}

func TestScheduleFixedGap(t *testing.T) {
	got, err := Schedule(lines(1.5, 2, 0.5), GapPolicy{LeadInSec: 1, GapSec: 0.25})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	wantStart := []float64{1, 2.75, 5}
	wantEnd := []float64{2.5, 4.75, 5.5}
	for i := range got {
		if math.Abs(got[i].Start-wantStart[i]) > eps || math.Abs(got[i].End-wantEnd[i]) > eps {
			t.Errorf("utterance %d = [%v,%v], want [%v,%v]", i, got[i].Start, got[i].End, wantStart[i], wantEnd[i])
		}
		if got[i].Index != i {
			t.Errorf("utterance %d index = %d", i, got[i].Index)
		}
	}
}

func TestScheduleUniformProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(20)
		dur := 0.1 + rng.Float64()*5
		gap := 0.01 + rng.Float64()*3
		lead := rng.Float64() * 4

		ls := make([]types.Line, n)
		for i := range ls {
			ls[i] = types.Line{Text: "x", DurationSec: dur}
		}
		got, err := Schedule(ls, GapPolicy{LeadInSec: lead, GapSec: gap})
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		for k, u := range got {
			want := lead + float64(k)*(dur+gap)
			if math.Abs(u.Start-want) > 1e-6 {
				t.Fatalf("trial %d utterance %d start = %v, want %v", trial, k, u.Start, want)
			}
			if k > 0 && u.Start <= got[k-1].Start {
				t.Fatalf("trial %d: starts not strictly increasing at %d", trial, k)
			}
		}
	}
}

func TestScheduleLiteralOffsets(t *testing.T) {
	got, err := Schedule(lines(1, 1, 1), GapPolicy{Offsets: []float64{0.9, 4.2, 7.2}, GapSec: 99})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	for i, want := range []float64{0.9, 4.2, 7.2} {
		if got[i].Start != want {
			t.Errorf("start[%d] = %v, want %v", i, got[i].Start, want)
		}
	}
}

func TestScheduleErrors(t *testing.T) {
	tests := []struct {
		name      string
		lines     []types.Line
		policy    GapPolicy
		wantIndex int
	}{
		{"non-monotonic offsets", lines(1, 1, 1), GapPolicy{Offsets: []float64{2, 7, 5}}, 2},
		{"tied offsets", lines(1, 1), GapPolicy{Offsets: []float64{3, 3}}, 1},
		{"too few offsets", lines(1, 1, 1), GapPolicy{Offsets: []float64{1, 2}}, -1},
		{"negative offset", lines(1), GapPolicy{Offsets: []float64{-1}}, 0},
		{"negative gap", lines(1), GapPolicy{GapSec: -1}, -1},
		{"negative lead", lines(1), GapPolicy{LeadInSec: -0.5}, -1},
		{"zero duration zero gap ties", lines(0, 0), GapPolicy{}, 1},
		{"negative duration", lines(1, -2), GapPolicy{GapSec: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Schedule(tt.lines, tt.policy)
			var se *ScheduleError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *ScheduleError", err)
			}
			if se.Index != tt.wantIndex {
				t.Errorf("index = %d, want %d", se.Index, tt.wantIndex)
			}
		})
	}
}

func TestScheduleEmpty(t *testing.T) {
	got, err := Schedule(nil, GapPolicy{LeadInSec: 1})
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
	if TotalDuration(got, 5) != 0 {
		t.Error("empty timeline should have zero duration")
	}
}

func TestTotalDuration(t *testing.T) {
	utts := []types.Utterance{{Start: 0, End: 3}, {Start: 2, End: 9}, {Start: 5, End: 6}}
	if got := TotalDuration(utts, 4); got != 13 {
		t.Errorf("TotalDuration = %v, want 13", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]types.Utterance{{Start: 1}, {Start: 2}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate([]types.Utterance{{Start: 2}, {Start: 2}}); err == nil {
		t.Error("expected error for tie")
	}
}

func TestPoliciesFromConfig(t *testing.T) {
	cfg := config.Default()
	sp := ShortsPolicy(cfg)
	if len(sp.Offsets) != 5 || sp.Offsets[0] != 2 {
		t.Errorf("shorts offsets = %v", sp.Offsets)
	}
	lp := LongPolicy(cfg)
	if lp.GapSec != 4 || len(lp.Offsets) != 0 {
		t.Errorf("long policy = %+v", lp)
	}
}
