package schedule

import (
	"fmt"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/types"
)

// GapPolicy decides where each utterance starts. With Offsets set, the
// offsets are used verbatim and LeadInSec/GapSec are ignored; otherwise the
// first utterance starts at LeadInSec and each next one GapSec after the
// previous one finishes speaking.
type GapPolicy struct {
	LeadInSec float64
	GapSec    float64
	Offsets   []float64
}

// ScheduleError reports timings that would break the timeline ordering
type ScheduleError struct {
	Index  int // -1 when the policy itself is invalid
	Reason string
}

func (e *ScheduleError) Error() string {
	if e.Index < 0 {
		return "schedule: " + e.Reason
	}
	return fmt.Sprintf("schedule: utterance %d: %s", e.Index, e.Reason)
}

// ShortsPolicy returns the chat-drama timing from config
func ShortsPolicy(cfg *config.Config) GapPolicy {
	return GapPolicy{
		LeadInSec: cfg.Shorts.LeadInSec,
		GapSec:    cfg.Shorts.GapSec,
		Offsets:   cfg.Shorts.AppearTimes,
	}
}

// LongPolicy returns the chapter timing for the sleep story
func LongPolicy(cfg *config.Config) GapPolicy {
	return GapPolicy{
		LeadInSec: cfg.Long.LeadInSec,
		GapSec:    cfg.Long.ChapterPauseSec,
	}
}

// Schedule assigns start and end times to lines in order. Start times strictly
// increase; two lines that must coincide have to be offset by the caller.
func Schedule(lines []types.Line, policy GapPolicy) ([]types.Utterance, error) {
	literal := len(policy.Offsets) > 0
	if literal && len(policy.Offsets) < len(lines) {
		return nil, &ScheduleError{Index: -1, Reason: fmt.Sprintf("%d offsets for %d utterances", len(policy.Offsets), len(lines))}
	}
	if policy.LeadInSec < 0 {
		return nil, &ScheduleError{Index: -1, Reason: fmt.Sprintf("negative lead-in %.3f", policy.LeadInSec)}
	}
	if policy.GapSec < 0 {
		return nil, &ScheduleError{Index: -1, Reason: fmt.Sprintf("negative gap %.3f", policy.GapSec)}
	}

	out := make([]types.Utterance, len(lines))
	cursor := policy.LeadInSec
	for i, ln := range lines {
		if ln.DurationSec < 0 {
			return nil, &ScheduleError{Index: i, Reason: fmt.Sprintf("negative duration %.3f", ln.DurationSec)}
		}
		start := cursor
		if literal {
			start = policy.Offsets[i]
		}
		if start < 0 {
			return nil, &ScheduleError{Index: i, Reason: fmt.Sprintf("negative start %.3f", start)}
		}
		if i > 0 && start <= out[i-1].Start {
			return nil, &ScheduleError{Index: i, Reason: fmt.Sprintf("start %.3f does not follow previous start %.3f", start, out[i-1].Start)}
		}

		out[i] = types.Utterance{
			Index:       i,
			Speaker:     ln.Speaker,
			Text:        ln.Text,
			Label:       ln.Label,
			Title:       ln.Title,
			Start:       start,
			End:         start + ln.DurationSec,
			AudioFile:   ln.AudioFile,
			DurationSec: ln.DurationSec,
		}
		cursor = out[i].End + policy.GapSec
	}
	return out, nil
}

// Validate checks an already scheduled sequence
func Validate(utts []types.Utterance) error {
	for i, u := range utts {
		if u.Start < 0 {
			return &ScheduleError{Index: i, Reason: fmt.Sprintf("negative start %.3f", u.Start)}
		}
		if i > 0 && u.Start <= utts[i-1].Start {
			return &ScheduleError{Index: i, Reason: fmt.Sprintf("start %.3f does not follow previous start %.3f", u.Start, utts[i-1].Start)}
		}
	}
	return nil
}

// TotalDuration is the latest utterance end plus tail
func TotalDuration(utts []types.Utterance, tail float64) float64 {
	var end float64
	for _, u := range utts {
		if u.End > end {
			end = u.End
		}
	}
	if len(utts) == 0 {
		return 0
	}
	return end + tail
}
