package overlay

import (
	"image/color"
	"math/rand"
)

type theme struct {
	name        string
	base        color.NRGBA
	header      color.NRGBA
	leftBubble  color.NRGBA
	leftText    color.NRGBA
	leftMeta    color.NRGBA
	rightBubble color.NRGBA
	rightText   color.NRGBA
	rightMeta   color.NRGBA
	innerBubble color.NRGBA
}

var themes = []theme{
	{
		name:        "night-green",
		base:        color.NRGBA{18, 24, 28, 255},
		header:      color.NRGBA{255, 255, 255, 235},
		leftBubble:  color.NRGBA{245, 245, 245, 235},
		leftText:    color.NRGBA{25, 25, 25, 255},
		leftMeta:    color.NRGBA{0, 0, 0, 140},
		rightBubble: color.NRGBA{26, 115, 56, 230},
		rightText:   color.NRGBA{255, 255, 255, 255},
		rightMeta:   color.NRGBA{255, 255, 255, 160},
		innerBubble: color.NRGBA{70, 78, 92, 230},
	},
	{
		name:        "midnight-blue",
		base:        color.NRGBA{14, 20, 38, 255},
		header:      color.NRGBA{230, 236, 255, 235},
		leftBubble:  color.NRGBA{238, 241, 247, 235},
		leftText:    color.NRGBA{20, 24, 36, 255},
		leftMeta:    color.NRGBA{0, 0, 0, 130},
		rightBubble: color.NRGBA{37, 99, 235, 230},
		rightText:   color.NRGBA{255, 255, 255, 255},
		rightMeta:   color.NRGBA{255, 255, 255, 160},
		innerBubble: color.NRGBA{88, 80, 120, 230},
	},
	{
		name:        "plum",
		base:        color.NRGBA{30, 18, 34, 255},
		header:      color.NRGBA{255, 240, 250, 235},
		leftBubble:  color.NRGBA{246, 238, 244, 235},
		leftText:    color.NRGBA{34, 20, 30, 255},
		leftMeta:    color.NRGBA{0, 0, 0, 140},
		rightBubble: color.NRGBA{150, 52, 132, 230},
		rightText:   color.NRGBA{255, 255, 255, 255},
		rightMeta:   color.NRGBA{255, 255, 255, 160},
		innerBubble: color.NRGBA{96, 70, 100, 230},
	},
	{
		name:        "graphite",
		base:        color.NRGBA{28, 28, 30, 255},
		header:      color.NRGBA{245, 245, 245, 235},
		leftBubble:  color.NRGBA{58, 58, 62, 240},
		leftText:    color.NRGBA{240, 240, 240, 255},
		leftMeta:    color.NRGBA{255, 255, 255, 120},
		rightBubble: color.NRGBA{10, 132, 255, 230},
		rightText:   color.NRGBA{255, 255, 255, 255},
		rightMeta:   color.NRGBA{255, 255, 255, 160},
		innerBubble: color.NRGBA{94, 92, 110, 230},
	},
}

// pattern is the doodle wallpaper layout derived from the seed
type pattern struct {
	offsetX, offsetY int
	shapes           []int // per-cell rotation of the three doodles
}

func pickLook(seed int64, step int) (theme, pattern) {
	rng := rand.New(rand.NewSource(seed))
	th := themes[rng.Intn(len(themes))]
	p := pattern{}
	if step > 0 {
		p.offsetX = rng.Intn(step)
		p.offsetY = rng.Intn(step)
	}
	p.shapes = make([]int, 64)
	for i := range p.shapes {
		p.shapes[i] = rng.Intn(3)
	}
	return th, p
}
