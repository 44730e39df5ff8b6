package subtitles

import (
	"fmt"
	"math"
	"strings"

	"story-shorts-pipeline/types"
)

// Options bound how narration is cut into caption cues
type Options struct {
	ChunkWords int
	MinCueSec  float64
	MaxCueSec  float64
	// VoiceLeadSec delays timeline cues so they follow the voice, which the
	// mix starts this long after the utterance appears
	VoiceLeadSec float64
}

// EmitError reports cue bounds that cannot produce a caption track
type EmitError struct {
	Reason string
}

func (e *EmitError) Error() string {
	return "emit subtitles: " + e.Reason
}

func (o Options) validate() error {
	if o.ChunkWords <= 0 {
		return &EmitError{Reason: fmt.Sprintf("chunk size %d must be positive", o.ChunkWords)}
	}
	if o.MinCueSec < 0 {
		return &EmitError{Reason: fmt.Sprintf("negative min cue %.3f", o.MinCueSec)}
	}
	if o.MaxCueSec <= 0 {
		return &EmitError{Reason: fmt.Sprintf("max cue %.3f must be positive", o.MaxCueSec)}
	}
	if o.MinCueSec > o.MaxCueSec {
		return &EmitError{Reason: fmt.Sprintf("min cue %.3f exceeds max cue %.3f", o.MinCueSec, o.MaxCueSec)}
	}
	if o.VoiceLeadSec < 0 {
		return &EmitError{Reason: fmt.Sprintf("negative voice lead %.3f", o.VoiceLeadSec)}
	}
	return nil
}

// millis is a time as written to the subtitle file
func millis(sec float64) int64 {
	return int64(math.Round(sec * 1000))
}

// Emit cuts text into cues of ChunkWords words laid back to back from 0.
// Every cue lasts clamp(total/chunks, min, max) except the last, which always
// ends exactly at totalSec. When the clamped length would push cues past
// totalSec, the words that no longer fit are folded into the last cue that
// does. A cue that would start on the same millisecond as the end, or as
// the cue before it, is folded the same way. Empty text yields no cues.
func Emit(text string, totalSec float64, opts Options) ([]types.Cue, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}
	if totalSec <= 0 {
		return nil, &EmitError{Reason: fmt.Sprintf("total duration %.3f must be positive", totalSec)}
	}

	chunks := chunkWords(words, opts.ChunkWords)
	per := clamp(totalSec/float64(len(chunks)), opts.MinCueSec, opts.MaxCueSec)

	cues := make([]types.Cue, 0, len(chunks))
	for i, chunk := range chunks {
		start := float64(i) * per
		if i > 0 && (millis(start) >= millis(totalSec) || millis(start) <= millis(cues[len(cues)-1].Start)) {
			last := &cues[len(cues)-1]
			last.Text += " " + strings.Join(chunks[i:], " ")
			break
		}
		cues = append(cues, types.Cue{
			Index: i + 1,
			Text:  chunk,
			Start: start,
			End:   start + per,
		})
	}
	cues[len(cues)-1].End = totalSec
	return cues, nil
}

// EmitTimeline emits cues for every utterance inside its own window: from its
// start until it stops speaking, never past the next utterance's start or
// totalSec. Windows are delayed by VoiceLeadSec. Cues are shifted onto the
// timeline and renumbered from 1. A cue that rounds to zero length in the
// file is merged into its neighbour so no words are lost.
func EmitTimeline(utts []types.Utterance, totalSec float64, opts Options) ([]types.Cue, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	lead := opts.VoiceLeadSec
	var all []types.Cue
	var carry *types.Cue // zero-length cue waiting for a successor
	for i, u := range utts {
		start := u.Start + lead
		windowEnd := totalSec
		if i+1 < len(utts) && utts[i+1].Start+lead < windowEnd {
			windowEnd = utts[i+1].Start + lead
		}
		end := windowEnd
		if u.End > u.Start && u.End+lead < windowEnd {
			end = u.End + lead
		}

		if strings.TrimSpace(u.Text) == "" {
			continue
		}
		if end <= start {
			return nil, &EmitError{Reason: fmt.Sprintf("utterance %d starts at %.3f, after the timeline ends at %.3f", i, start, end)}
		}

		cues, err := Emit(u.Text, end-start, opts)
		if err != nil {
			return nil, fmt.Errorf("utterance %d: %w", i, err)
		}
		for j, c := range cues {
			c.Start += start
			c.End += start
			if j == len(cues)-1 {
				c.End = end
			}
			if carry != nil {
				c.Text = carry.Text + " " + c.Text
				c.Start = carry.Start
				carry = nil
			}
			if millis(c.Start) >= millis(c.End) {
				if n := len(all); n > 0 {
					all[n-1].Text += " " + c.Text
					all[n-1].End = c.End
				} else {
					held := c
					carry = &held
				}
				continue
			}
			c.Index = len(all) + 1
			all = append(all, c)
		}
	}
	if carry != nil {
		return nil, &EmitError{Reason: fmt.Sprintf("%q is too short to caption", carry.Text)}
	}
	return all, nil
}

func chunkWords(words []string, size int) []string {
	var chunks []string
	for i := 0; i < len(words); i += size {
		j := i + size
		if j > len(words) {
			j = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:j], " "))
	}
	return chunks
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
