package render

import (
	"fmt"
	"math"
	"path/filepath"

	"story-shorts-pipeline/06_overlay"
	"story-shorts-pipeline/types"
)

// windowEps absorbs float noise when comparing seconds from different stages
const windowEps = 1e-6

// AssemblyError reports tracks that cannot be composed into one video
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return "assemble: " + e.Reason
}

func assemblyErrorf(format string, args ...any) error {
	return &AssemblyError{Reason: fmt.Sprintf(format, args...)}
}

// SubtitleTrack is the caption file and the cues written to it. A zero
// value means the video has no captions.
type SubtitleTrack struct {
	Path     string
	Cues     []types.Cue
	TotalSec float64
}

// OverlayTrack is the rendered chat frames. A zero value means no overlay.
type OverlayTrack struct {
	Frames   []types.OverlayFrame
	TotalSec float64
}

// AudioClip is one clip placed on the timeline. Utterance is -1 for clips
// that are not speech (notification effects).
type AudioClip struct {
	Utterance int
	Path      string
	StartSec  float64
	Weight    float64 // 0 means 1
}

// Ambient is a generated noise bed under the whole track
type Ambient struct {
	Amplitude float64
	LowpassHz int
	Volume    float64
}

// AudioTrack is every clip to mix and the length the mix is cut to
type AudioTrack struct {
	Clips        []AudioClip
	TotalSec     float64
	VoiceLeadSec float64 // added to speech clips so the voice follows the bubble
	Ambient      *Ambient
}

// Layer is one image shown between Start and End
type Layer struct {
	Image string
	Start float64
	End   float64
}

// AudioInput is one clip delayed to its place on the timeline
type AudioInput struct {
	Path    string
	DelayMs int64
	Weight  float64
}

// TextCard is a line of text drawn between Start and End
type TextCard struct {
	Text  string
	Start float64
	End   float64
	Size  int
	Y     string // drawtext y expression
}

// InstructionSet is everything the compositor needs, in z-order
type InstructionSet struct {
	Layers    []Layer
	Subtitles string
	Audio     []AudioInput
	Ambient   *Ambient
	Cards     []TextCard
	TotalSec  float64
}

// Assemble checks that the caption, overlay and audio tracks describe the same
// timeline and turns them into compositor instructions. Every overlay frame
// tied to a message must have that message's speech clip in the audio track.
func Assemble(subs SubtitleTrack, overlay OverlayTrack, audio AudioTrack) (*InstructionSet, error) {
	total := audio.TotalSec
	if total <= 0 {
		return nil, assemblyErrorf("audio duration %.3f must be positive", total)
	}
	if len(overlay.Frames) > 0 && !sameSec(overlay.TotalSec, total) {
		return nil, assemblyErrorf("overlay lasts %.3fs but audio lasts %.3fs", overlay.TotalSec, total)
	}
	if subs.Path != "" && !sameSec(subs.TotalSec, total) {
		return nil, assemblyErrorf("subtitles last %.3fs but audio lasts %.3fs", subs.TotalSec, total)
	}
	if len(audio.Clips) == 0 && audio.Ambient == nil {
		return nil, assemblyErrorf("no audio to mix")
	}

	set := &InstructionSet{
		Subtitles: subs.Path,
		Ambient:   audio.Ambient,
		TotalSec:  total,
	}

	for i, c := range subs.Cues {
		if c.End > total+windowEps {
			return nil, assemblyErrorf("cue %d ends at %.3f, after the end %.3f", i+1, c.End, total)
		}
	}

	spoken := make(map[int]bool, len(audio.Clips))
	for i, c := range audio.Clips {
		if c.Path == "" {
			return nil, assemblyErrorf("audio clip %d has no file", i)
		}
		start := c.StartSec
		if c.Utterance >= 0 {
			spoken[c.Utterance] = true
			start += audio.VoiceLeadSec
		}
		if start < 0 || start >= total {
			return nil, assemblyErrorf("audio clip %d starts at %.3f, outside [0, %.3f)", i, start, total)
		}
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		set.Audio = append(set.Audio, AudioInput{
			Path:    c.Path,
			DelayMs: int64(math.Round(start * 1000)),
			Weight:  w,
		})
	}

	for i, f := range overlay.Frames {
		if f.Utterance >= 0 && !spoken[f.Utterance] {
			return nil, assemblyErrorf("overlay frame %d shows message %d, which has no audio clip", i, f.Utterance)
		}
		if err := checkFrame(i, f, overlay.Frames, total); err != nil {
			return nil, err
		}
		set.Layers = append(set.Layers, Layer{Image: f.ImagePath, Start: f.Start, End: f.End})
	}
	return set, nil
}

func checkFrame(i int, f types.OverlayFrame, frames []types.OverlayFrame, total float64) error {
	if f.ImagePath == "" {
		return assemblyErrorf("overlay frame %d was never rendered", i)
	}
	info, ok := overlay.ParseFileName(filepath.Base(f.ImagePath))
	if !ok || info.Ordinal != i || info.Utterance != f.Utterance || info.Step != f.Step {
		return assemblyErrorf("overlay frame %d image %s is out of sequence", i, filepath.Base(f.ImagePath))
	}
	switch {
	case i == 0 && !sameSec(f.Start, 0):
		return assemblyErrorf("overlay starts at %.3f, not 0", f.Start)
	case i > 0 && !sameSec(f.Start, frames[i-1].End):
		return assemblyErrorf("overlay frame %d starts at %.3f but frame %d ends at %.3f", i, f.Start, i-1, frames[i-1].End)
	case f.End < f.Start:
		return assemblyErrorf("overlay frame %d ends before it starts", i)
	case i == len(frames)-1 && !sameSec(f.End, total):
		return assemblyErrorf("overlay ends at %.3f, not %.3f", f.End, total)
	}
	return nil
}

func sameSec(a, b float64) bool {
	return math.Abs(a-b) <= windowEps
}
