package render

import (
	"fmt"
	"strings"

	"story-shorts-pipeline/mediatool"
)

// Canvas is the output frame and the look applied to the background
type Canvas struct {
	Width      int
	Height     int
	FPS        int
	Contrast   float64
	Saturation float64

	// slow zoom and darkening for stills; zero values disable them
	ZoomStep    float64
	ZoomMax     float64
	DarkenAlpha float64

	FontFile string // for text cards; empty lets fontconfig pick
}

// AudioFilter builds the mixing graph. Clip i is read from input
// firstInput+i; the result is labelled [aout].
func (s *InstructionSet) AudioFilter(firstInput int) string {
	var chains []string
	var labels []string
	var weights []string

	for i, a := range s.Audio {
		label := fmt.Sprintf("[a%d]", i)
		chains = append(chains, fmt.Sprintf("[%d:a]adelay=%d|%d%s", firstInput+i, a.DelayMs, a.DelayMs, label))
		labels = append(labels, label)
		weights = append(weights, formatWeight(a.Weight))
	}
	if amb := s.Ambient; amb != nil {
		chains = append(chains, fmt.Sprintf(
			"anoisesrc=color=pink:amplitude=%s:duration=%.3f,lowpass=f=%d,volume=%s[amb]",
			formatWeight(amb.Amplitude), s.TotalSec, amb.LowpassHz, formatWeight(amb.Volume),
		))
		labels = append(labels, "[amb]")
		weights = append(weights, "1")
	}

	chains = append(chains, fmt.Sprintf(
		"%samix=inputs=%d:duration=longest:dropout_transition=0:normalize=0:weights='%s'[mix]",
		strings.Join(labels, ""), len(labels), strings.Join(weights, " "),
	))
	chains = append(chains, fmt.Sprintf("[mix]apad=pad_dur=%.3f,atrim=0:%.3f[aout]", s.TotalSec+5, s.TotalSec))
	return strings.Join(chains, ";")
}

// VideoFilter builds the picture graph: background from input 0, overlay
// layer i from input firstOverlay+i, then text cards and burned captions.
// subtitleFilter is the complete subtitles filter, or empty. The result is
// labelled [vout].
func (s *InstructionSet) VideoFilter(c Canvas, firstOverlay int, subtitleFilter string) string {
	var chains []string

	bg := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", c.Width, c.Height),
		fmt.Sprintf("crop=%d:%d", c.Width, c.Height),
	}
	if c.ZoomStep > 0 {
		bg = append(bg, fmt.Sprintf(
			"zoompan=z='min(zoom+%s,%s)':d=1:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%dx%d:fps=%d",
			formatWeight(c.ZoomStep), formatWeight(c.ZoomMax), c.Width, c.Height, c.FPS,
		))
	}
	bg = append(bg, fmt.Sprintf("eq=contrast=%s:saturation=%s", formatWeight(c.Contrast), formatWeight(c.Saturation)))
	if c.DarkenAlpha > 0 {
		bg = append(bg, fmt.Sprintf("drawbox=x=0:y=0:w=iw:h=ih:color=black@%s:t=fill", formatWeight(c.DarkenAlpha)))
	}
	bg = append(bg, "setsar=1", "format=yuv420p")
	chains = append(chains, "[0:v]"+strings.Join(bg, ",")+"[bg]")

	cur := "[bg]"
	for i, l := range s.Layers {
		next := fmt.Sprintf("[v%d]", i+1)
		chains = append(chains, fmt.Sprintf(
			"%s[%d:v]overlay=0:0:enable='between(t,%.3f,%.3f)'%s",
			cur, firstOverlay+i, l.Start, l.End, next,
		))
		cur = next
	}

	var tail []string
	for _, card := range s.Cards {
		tail = append(tail, drawtext(card, c.FontFile))
	}
	if subtitleFilter != "" {
		tail = append(tail, subtitleFilter)
	}
	if len(tail) == 0 {
		tail = append(tail, "null")
	}
	chains = append(chains, cur+strings.Join(tail, ",")+"[vout]")
	return strings.Join(chains, ";")
}

func drawtext(card TextCard, fontFile string) string {
	opts := []string{}
	if fontFile != "" {
		opts = append(opts, "fontfile="+mediatool.EscapePath(fontFile))
	}
	y := card.Y
	if y == "" {
		y = "(h-text_h)/2"
	}
	opts = append(opts,
		"text="+mediatool.EscapeText(card.Text),
		"fontcolor=white",
		fmt.Sprintf("fontsize=%d", card.Size),
		"borderw=2",
		"bordercolor=black@0.6",
		"x=(w-text_w)/2",
		"y='"+y+"'",
		fmt.Sprintf("enable='between(t,%.3f,%.3f)'", card.Start, card.End),
	)
	return "drawtext=" + strings.Join(opts, ":")
}

// formatWeight prints a number without trailing zeros: 1, 0.5, 0.00008
func formatWeight(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
