package overlay

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/types"
)

// Renderer draws chat overlay frames as transparent PNGs
type Renderer struct {
	cfg    *config.Config
	width  int
	height int
	ttf    *truetype.Font // nil: fall back to the built-in bitmap face
}

// New creates a Renderer for the shorts canvas. A missing or unreadable font
// file falls back to a built-in face instead of failing the run.
func New(cfg *config.Config) *Renderer {
	r := &Renderer{cfg: cfg, width: cfg.Shorts.Width, height: cfg.Shorts.Height}
	if cfg.Overlay.FontPath == "" {
		return r
	}
	data, err := os.ReadFile(cfg.Overlay.FontPath)
	if err != nil {
		log.Warn().Err(err).Msg("[overlay] ⚠️  font not readable, using built-in face")
		return r
	}
	f, err := truetype.Parse(data)
	if err != nil {
		log.Warn().Err(err).Msg("[overlay] ⚠️  font not parseable, using built-in face")
		return r
	}
	r.ttf = f
	return r
}

// Run plans the frame sequence and renders every frame into outputDir.
// Frames render in parallel; the returned slice is in frame order.
func (r *Renderer) Run(ctx context.Context, utts []types.Utterance, totalSec float64, seed int64, outputDir string) ([]types.OverlayFrame, error) {
	oc := r.cfg.Overlay
	frames, err := Plan(utts, oc.TypingFrames, oc.TypingLeadSec, totalSec)
	if err != nil {
		return nil, fmt.Errorf("plan overlay frames: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	workers := oc.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log.Info().Int("frames", len(frames)).Int("workers", workers).Msg("[overlay] Rendering chat frames...")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := r.RenderFrame(utts, frames[i], seed)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			path := filepath.Join(outputDir, FileName(frames[i]))
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			frames[i].ImagePath = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Int("frames", len(frames)).Msg("[overlay] ✅ Frames ready")
	return frames, nil
}

// RenderFrame draws one frame and returns its PNG bytes. The output depends
// only on the utterances, the frame and the seed.
func (r *Renderer) RenderFrame(utts []types.Utterance, frame types.OverlayFrame, seed int64) ([]byte, error) {
	if frame.Visible > len(utts) {
		return nil, fmt.Errorf("frame shows %d messages, only %d exist", frame.Visible, len(utts))
	}
	if frame.Typing() && (frame.Utterance < 0 || frame.Utterance >= len(utts)) {
		return nil, fmt.Errorf("typing frame for missing utterance %d", frame.Utterance)
	}

	oc := r.cfg.Overlay
	th, pat := pickLook(seed, oc.PatternStep)
	faces := r.newFaces()

	dc := gg.NewContext(r.width, r.height)
	r.drawBackground(dc, th, pat)

	dc.SetFontFace(faces.header)
	dc.SetColor(th.header)
	dc.DrawStringAnchored(oc.HeaderText, float64(oc.HeaderX), float64(oc.HeaderY), 0, 1)

	y := oc.TopY
	for i := 0; i < frame.Visible; i++ {
		r.drawMessage(dc, faces, th, utts[i], y)
		y += oc.RowPitch
	}
	if frame.Typing() {
		r.drawTyping(dc, faces, th, utts[frame.Utterance].Speaker, y, frame.Step)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type faceSet struct {
	header, message, meta font.Face
	lineHeight            int
}

// newFaces builds fresh faces per frame: truetype faces cache glyphs and are
// not safe to share between goroutines.
func (r *Renderer) newFaces() faceSet {
	oc := r.cfg.Overlay
	if r.ttf == nil {
		f := basicfont.Face7x13
		return faceSet{header: f, message: f, meta: f, lineHeight: f.Height + 10}
	}
	mk := func(size float64) font.Face {
		return truetype.NewFace(r.ttf, &truetype.Options{Size: size, Hinting: font.HintingFull})
	}
	return faceSet{
		header:     mk(oc.HeaderSize),
		message:    mk(oc.MessageSize),
		meta:       mk(oc.TimeSize),
		lineHeight: int(oc.MessageSize) + 10,
	}
}

func (r *Renderer) drawBackground(dc *gg.Context, th theme, pat pattern) {
	oc := r.cfg.Overlay
	w, chatH := float64(r.width), float64(oc.ChatHeight)

	dc.SetColor(th.base)
	dc.DrawRectangle(0, 0, w, chatH)
	dc.Fill()

	step := oc.PatternStep
	if step <= 0 {
		return
	}
	dc.DrawRectangle(0, 0, w, chatH)
	dc.Clip()
	dc.SetColor(color.NRGBA{255, 255, 255, uint8(oc.PatternAlpha)})
	dc.SetLineWidth(2)

	cell := 0
	for y := -pat.offsetY; y < oc.ChatHeight+step; y += step {
		for x := -pat.offsetX; x < r.width+step; x += step {
			fx, fy := float64(x), float64(y)
			switch pat.shapes[cell%len(pat.shapes)] {
			case 0:
				dc.DrawEllipse(fx+22, fy+28, 10, 10)
				dc.Stroke()
				dc.DrawLine(fx+10, fy+60, fx+70, fy+60)
				dc.Stroke()
			case 1:
				dc.NewSubPath()
				dc.DrawArc(fx+61, fy+31, 21, 0, gg.Radians(220))
				dc.Stroke()
			default:
				dc.DrawEllipse(fx+22, fy+28, 10, 10)
				dc.Stroke()
				dc.NewSubPath()
				dc.DrawArc(fx+61, fy+31, 21, 0, gg.Radians(220))
				dc.Stroke()
				dc.DrawLine(fx+10, fy+60, fx+70, fy+60)
				dc.Stroke()
			}
			cell++
		}
	}
	dc.ResetClip()
}

type side struct {
	x        int
	maxWidth int
	bubble   color.NRGBA
	text     color.NRGBA
	meta     color.NRGBA
	outgoing bool
}

func (r *Renderer) sideFor(role types.Role, th theme) side {
	oc := r.cfg.Overlay
	switch role {
	case types.RoleRight:
		return side{x: oc.RightX, maxWidth: oc.RightMaxWidth, bubble: th.rightBubble, text: th.rightText, meta: th.rightMeta, outgoing: true}
	case types.RoleInner:
		return side{x: oc.RightX, maxWidth: oc.RightMaxWidth, bubble: th.innerBubble, text: th.rightText, meta: th.rightMeta, outgoing: true}
	default:
		return side{x: oc.LeftX, maxWidth: oc.LeftMaxWidth, bubble: th.leftBubble, text: th.leftText, meta: th.leftMeta}
	}
}

func (r *Renderer) drawMessage(dc *gg.Context, faces faceSet, th theme, u types.Utterance, y int) {
	oc := r.cfg.Overlay
	sd := r.sideFor(u.Speaker, th)

	dc.SetFontFace(faces.message)
	lines := wrapLines(u.Text, float64(sd.maxWidth), func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	})

	bubbleH := oc.PadY*2 + faces.lineHeight*len(lines) + 36
	bubbleW := sd.maxWidth + oc.PadX*2
	if bubbleW > oc.MaxBubbleWidth {
		bubbleW = oc.MaxBubbleWidth
	}

	dc.SetColor(sd.bubble)
	dc.DrawRoundedRectangle(float64(sd.x), float64(y), float64(bubbleW), float64(bubbleH), oc.Radius)
	dc.Fill()

	tx := float64(sd.x + oc.PadX)
	ty := float64(y + oc.PadY)
	dc.SetColor(sd.text)
	for _, ln := range lines {
		dc.DrawStringAnchored(ln, tx, ty, 0, 1)
		ty += float64(faces.lineHeight)
	}

	metaY := float64(y + bubbleH - 42)
	dc.SetFontFace(faces.meta)
	dc.SetColor(sd.meta)
	dc.DrawStringAnchored(u.Label, tx, metaY, 0, 1)
	if sd.outgoing {
		dc.DrawStringAnchored("✓✓", tx+170, metaY, 0, 1)
	}
}

func (r *Renderer) drawTyping(dc *gg.Context, faces faceSet, th theme, role types.Role, y, step int) {
	oc := r.cfg.Overlay
	sd := r.sideFor(role, th)

	dc.SetColor(sd.bubble)
	dc.DrawRoundedRectangle(float64(sd.x), float64(y), float64(oc.TypingWidth), float64(oc.TypingHeight), oc.Radius)
	dc.Fill()

	dots := (step-1)%3 + 1
	dc.SetFontFace(faces.message)
	dc.SetColor(sd.text)
	dc.DrawStringAnchored("typing"+strings.Repeat(".", dots), float64(sd.x+32), float64(y+16), 0, 1)
}
