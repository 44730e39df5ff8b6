package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"story-shorts-pipeline/types"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm, rounded to the millisecond
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// WriteSRT writes cues as SRT blocks numbered from 1
func WriteSRT(w io.Writer, cues []types.Cue) error {
	bw := bufio.NewWriter(w)
	for i, c := range cues {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes cues to an SRT file
func WriteFile(path string, cues []types.Cue) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSRT(f, cues); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
