package mediatool

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration returns a media file's container duration in seconds
func ProbeDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, &ExternalToolError{Tool: "ffprobe", Args: []string{path}, Err: err}
	}
	dur, err := ParseProbeDuration([]byte(out))
	if err != nil {
		return 0, &ExternalToolError{Tool: "ffprobe", Args: []string{path}, Err: err}
	}
	return dur, nil
}

// ParseProbeDuration extracts format.duration from ffprobe JSON output
func ParseProbeDuration(data []byte) (float64, error) {
	var res probeResult
	if err := json.Unmarshal(data, &res); err != nil {
		return 0, fmt.Errorf("parse probe output: %w", err)
	}
	raw := strings.TrimSpace(res.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("probe output has no duration")
	}
	dur, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("non-positive duration %v", dur)
	}
	return dur, nil
}
