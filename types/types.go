package types

// Role identifies who speaks a line
type Role string

const (
	RoleNarrator Role = "narrator"
	RoleLeft     Role = "left"  // incoming party
	RoleRight    Role = "right" // outgoing party
	RoleInner    Role = "inner" // inner voice, drawn on the outgoing side
)

// Line is one unscheduled unit of spoken content as written by the story stage
type Line struct {
	Speaker     Role    `json:"speaker"`
	Text        string  `json:"text"`
	Label       string  `json:"label"` // e.g. "9:41 PM"
	Title       string  `json:"title,omitempty"`
	AudioFile   string  `json:"audio_file,omitempty"`
	DurationSec float64 `json:"duration_sec"`
}

// Utterance is a Line with its assigned position on the timeline
type Utterance struct {
	Index       int     `json:"index"`
	Speaker     Role    `json:"speaker"`
	Text        string  `json:"text"`
	Label       string  `json:"label"`
	Title       string  `json:"title,omitempty"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	AudioFile   string  `json:"audio_file,omitempty"`
	DurationSec float64 `json:"duration_sec"`
}

// Cue is one timed caption fragment
type Cue struct {
	Index int     `json:"index"` // 1-based once emitted
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// OverlayFrame is one rendered chat snapshot and the window it is shown in.
// Utterance is the message the frame leads into (typing) or settles; -1 for
// the idle frame shown before the first message.
type OverlayFrame struct {
	Ordinal   int     `json:"ordinal"`
	Utterance int     `json:"utterance"`
	Visible   int     `json:"visible"` // messages 0..Visible-1 are drawn
	Step      int     `json:"step"`    // 1..Steps while typing
	Steps     int     `json:"steps"`   // 0 for settled and idle frames
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	ImagePath string  `json:"image_path,omitempty"`
}

// Typing reports whether the frame is a transient typing sub-state
func (f OverlayFrame) Typing() bool {
	return f.Steps > 0
}

// Timeline is the aggregate a single run composes
type Timeline struct {
	Utterances []Utterance    `json:"utterances"`
	Cues       []Cue          `json:"cues"`
	Frames     []OverlayFrame `json:"frames"`
	TotalSec   float64        `json:"total_sec"`
}

// Script is the output of the story stage
type Script struct {
	Kind     string   `json:"kind"` // "chat" | "sleep"
	Topic    string   `json:"topic"`
	Title    string   `json:"title"`
	Lines    []Line   `json:"lines"`
	Hashtags []string `json:"hashtags,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Chapter is a named start offset in a long-form video
type Chapter struct {
	StartSec float64 `json:"start_sec"`
	Name     string  `json:"name"`
}

// VideoMetadata holds all YouTube upload metadata
type VideoMetadata struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	CategoryID       string   `json:"category_id"`
	Language         string   `json:"language"`
	Visibility       string   `json:"visibility"`
	ScheduledTimeUTC string   `json:"scheduled_time_utc,omitempty"`
}

// PipelineState tracks the full state of one pipeline run
type PipelineState struct {
	RunID       string         `json:"run_id"`
	Variant     string         `json:"variant"`
	Seed        int64          `json:"seed"`
	StartedAt   string         `json:"started_at"`
	CompletedAt string         `json:"completed_at"`
	Script      *Script        `json:"script"`
	Timeline    *Timeline      `json:"timeline"`
	Background  string         `json:"background"`
	VideoFile   string         `json:"video_file"`
	Metadata    *VideoMetadata `json:"metadata"`
	YouTubeURL  string         `json:"youtube_url"`
	YouTubeID   string         `json:"youtube_id"`
	Error       string         `json:"error,omitempty"`
}
