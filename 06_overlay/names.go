package overlay

import (
	"fmt"
	"regexp"
	"strconv"

	"story-shorts-pipeline/types"
)

var fileNameRe = regexp.MustCompile(`^overlay_(\d{3,})_(?:idle|msg(\d{2,})(?:_typing(\d+))?)\.png$`)

// FileInfo is what a frame's file name says about it
type FileInfo struct {
	Ordinal   int
	Utterance int // -1 for the idle frame
	Step      int // 0 for settled and idle frames
}

// FileName names a frame's image so a directory listing sorts in frame order:
// overlay_000_idle.png, overlay_001_msg01_typing1.png, overlay_004_msg01.png, ...
func FileName(f types.OverlayFrame) string {
	switch {
	case f.Utterance < 0:
		return fmt.Sprintf("overlay_%03d_idle.png", f.Ordinal)
	case f.Typing():
		return fmt.Sprintf("overlay_%03d_msg%02d_typing%d.png", f.Ordinal, f.Utterance+1, f.Step)
	default:
		return fmt.Sprintf("overlay_%03d_msg%02d.png", f.Ordinal, f.Utterance+1)
	}
}

// ParseFileName reverses FileName
func ParseFileName(name string) (FileInfo, bool) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return FileInfo{}, false
	}
	info := FileInfo{Utterance: -1}
	info.Ordinal, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		info.Utterance = n - 1
	}
	if m[3] != "" {
		info.Step, _ = strconv.Atoi(m[3])
	}
	return info, true
}
