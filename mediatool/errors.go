package mediatool

import (
	"fmt"
	"strings"
)

// ExternalToolError is returned when ffmpeg, ffprobe, a TTS engine, a download
// or an upload exits non-zero or hands back output we cannot use.
type ExternalToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Tool)
	sb.WriteString(" failed")
	if e.ExitCode != 0 {
		fmt.Fprintf(&sb, " (exit %d)", e.ExitCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if e.Stderr != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Stderr)
	}
	return sb.String()
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

