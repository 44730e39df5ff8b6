package visuals

import (
	"context"
	"fmt"
	"strconv"

	"story-shorts-pipeline/mediatool"
)

// ProceduralSeed is the noise seed for the i-th generated background
func ProceduralSeed(i int) int {
	return 1000 + i*97
}

// proceduralArgs renders an abstract moving background offline: a radial
// gradient with seeded noise, heavy blur and a slow hue drift.
func proceduralArgs(i, width, height, fps int, durSec float64, preset string, crf int, outFile string) []string {
	src := fmt.Sprintf(
		"gradients=size=%dx%d:rate=%d:type=radial,"+
			"noise=alls=28:allf=t+u:all_seed=%d,"+
			"gblur=sigma=22:steps=2,"+
			"hue=h='3*t':s=1.4,"+
			"eq=contrast=1.10:saturation=1.40:brightness=0.02,"+
			"vignette=PI/4,"+
			"format=yuv420p",
		width, height, fps, ProceduralSeed(i),
	)
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", src,
		"-t", fmt.Sprintf("%.3f", durSec),
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outFile,
	}
}

// Procedural generates background number i into outFile
func Procedural(ctx context.Context, i, width, height, fps int, durSec float64, preset string, crf int, outFile string) error {
	return mediatool.Run(ctx, "ffmpeg", proceduralArgs(i, width, height, fps, durSec, preset, crf, outFile)...)
}
