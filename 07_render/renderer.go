package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"story-shorts-pipeline/05_subtitles"
	"story-shorts-pipeline/config"
	"story-shorts-pipeline/mediatool"
)

// Background is the bottom video layer
type Background struct {
	Path  string
	Still bool // a single image, looped for the whole video
}

// Renderer hands an InstructionSet to ffmpeg
type Renderer struct {
	cfg *config.Config
}

// New creates a new Renderer
func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// ShortsCanvas is the vertical chat-drama frame
func (r *Renderer) ShortsCanvas() Canvas {
	return Canvas{
		Width:      r.cfg.Shorts.Width,
		Height:     r.cfg.Shorts.Height,
		FPS:        r.cfg.Shorts.FPS,
		Contrast:   r.cfg.Render.Contrast,
		Saturation: r.cfg.Render.Saturation,
	}
}

// LongCanvas is the landscape sleep-story frame with slow zoom
func (r *Renderer) LongCanvas() Canvas {
	lc := r.cfg.Long
	return Canvas{
		Width:       lc.Width,
		Height:      lc.Height,
		FPS:         lc.FPS,
		Contrast:    1,
		Saturation:  1,
		ZoomStep:    lc.ZoomStep,
		ZoomMax:     lc.ZoomMax,
		DarkenAlpha: lc.DarkenAlpha,
		FontFile:    r.cfg.Overlay.FontPath,
	}
}

// Args is the full ffmpeg command line for one composition
func (r *Renderer) Args(set *InstructionSet, bg Background, c Canvas, outFile string) []string {
	total := fmt.Sprintf("%.3f", set.TotalSec)
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}

	if bg.Still {
		args = append(args, "-loop", "1", "-framerate", strconv.Itoa(c.FPS), "-t", total, "-i", bg.Path)
	} else {
		args = append(args, "-stream_loop", "-1", "-i", bg.Path)
	}
	for _, l := range set.Layers {
		args = append(args, "-i", l.Image)
	}
	for _, a := range set.Audio {
		args = append(args, "-i", a.Path)
	}

	subFilter := ""
	if set.Subtitles != "" {
		subFilter = subtitles.BurnFilter(set.Subtitles, r.cfg.Subtitles)
	}
	graph := set.VideoFilter(c, 1, subFilter) + ";" + set.AudioFilter(1+len(set.Layers))

	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-preset", r.cfg.Render.Preset,
		"-crf", strconv.Itoa(r.cfg.Render.CRF),
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(c.FPS),
		"-c:a", "aac",
		"-b:a", r.cfg.Render.AudioBitrate,
		"-t", total,
		"-movflags", "+faststart",
		outFile,
	)
	return args
}

// Run renders the composition into outputDir/final_video.mp4
func (r *Renderer) Run(ctx context.Context, set *InstructionSet, bg Background, c Canvas, outputDir string) (string, error) {
	log.Info().
		Int("layers", len(set.Layers)).
		Int("audio", len(set.Audio)).
		Float64("sec", set.TotalSec).
		Msg("[render] Starting final video assembly...")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	outFile := filepath.Join(outputDir, "final_video.mp4")
	if err := mediatool.Run(ctx, "ffmpeg", r.Args(set, bg, c, outFile)...); err != nil {
		return "", fmt.Errorf("compose video: %w", err)
	}

	dur, err := mediatool.ProbeDuration(outFile)
	if err != nil {
		return "", err
	}
	if dur < set.TotalSec-1 {
		return "", &mediatool.ExternalToolError{
			Tool: "ffmpeg",
			Err:  fmt.Errorf("rendered %.2fs of %.2fs", dur, set.TotalSec),
		}
	}

	log.Info().Str("file", outFile).Float64("sec", dur).Msg("[render] ✅ Final video ready")
	return outFile, nil
}
