package metadata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/types"

	"github.com/rs/zerolog/log"
)

const longTip = "Tip: Lower your screen brightness and breathe slowly."

// Generator builds YouTube metadata from templates, optionally polished by an LLM
type Generator struct {
	cfg      *config.Config
	polisher *Polisher
}

// New creates a new metadata Generator. Polishing is only enabled when
// configured and GROQ_API_KEY is present.
func New(cfg *config.Config) *Generator {
	g := &Generator{cfg: cfg}
	if cfg.Metadata.Polish {
		p, err := NewPolisher(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("[metadata] ⚠️  polish disabled")
		} else {
			g.polisher = p
		}
	}
	return g
}

// ShortMetadata builds the title "<hook> | <kw1> <kw2>", a hashtag
// description and the fixed short tags
func (g *Generator) ShortMetadata(rng *rand.Rand, script *types.Script) *types.VideoMetadata {
	m := g.cfg.Metadata
	title := script.Title
	if len(m.TitleHooks) > 0 {
		title = m.TitleHooks[rng.Intn(len(m.TitleHooks))]
	}
	if len(m.SearchKeywords) >= 2 {
		perm := rng.Perm(len(m.SearchKeywords))
		title = fmt.Sprintf("%s | %s %s", title, m.SearchKeywords[perm[0]], m.SearchKeywords[perm[1]])
	}
	title = truncate(title, m.TitleMaxChars)

	return &types.VideoMetadata{
		Title:       title,
		Description: fmt.Sprintf("%s\n\n%s\n", title, strings.Join(m.ShortHashtags, " ")),
		Tags:        append([]string(nil), m.ShortTags...),
		CategoryID:  m.CategoryID,
		Language:    m.Language,
		Visibility:  g.cfg.Upload.Visibility,
	}
}

// LongMetadata builds the sleep-story description with its chapter list
func (g *Generator) LongMetadata(script *types.Script, chapters []types.Chapter, now time.Time) *types.VideoMetadata {
	m := g.cfg.Metadata

	var sb strings.Builder
	sb.WriteString(script.Title + "\n")
	sb.WriteString(fmt.Sprintf("Immersive long-form sleep story. (%s UTC)\n\n", now.UTC().Format("2006-01-02")))
	sb.WriteString("CHAPTERS:\n")
	for _, c := range chapters {
		sb.WriteString(fmt.Sprintf("%s - %s\n", FormatChapterTimestamp(c.StartSec), c.Name))
	}
	sb.WriteString("\n" + longTip + "\n\n")
	sb.WriteString(strings.Join(script.Hashtags, " ") + "\n")

	return &types.VideoMetadata{
		Title:       truncate(script.Title, m.TitleMaxChars),
		Description: sb.String(),
		Tags:        append([]string(nil), script.Tags...),
		CategoryID:  m.CategoryID,
		Language:    m.Language,
		Visibility:  g.cfg.Upload.Visibility,
	}
}

// Run polishes md when a polisher is configured, falling back to the
// template text on any failure, and stamps the scheduled publish time
func (g *Generator) Run(ctx context.Context, md *types.VideoMetadata, script *types.Script, now time.Time) (*types.VideoMetadata, error) {
	if g.polisher != nil {
		polished, err := g.polisher.Polish(ctx, md, script)
		if err != nil {
			log.Warn().Err(err).Msg("[metadata] ⚠️  polish failed, keeping template metadata")
		} else {
			md = polished
			md.Title = truncate(md.Title, g.cfg.Metadata.TitleMaxChars)
		}
	}

	at, err := nextUploadTime(now, g.cfg.Upload.PublishDays, g.cfg.Upload.PublishHour, g.cfg.Upload.Timezone)
	if err != nil {
		return nil, err
	}
	md.ScheduledTimeUTC = at

	log.Info().Str("title", md.Title).Int("tags", len(md.Tags)).Msg("[metadata] ✅ Metadata ready")
	if at != "" {
		log.Info().Str("publish_at", at).Msg("[metadata] Scheduled")
	}
	return md, nil
}

// FormatChapterTimestamp renders MM:SS, or HH:MM:SS from one hour on
func FormatChapterTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	s := int(sec)
	h, m := s/3600, (s%3600)/60
	s %= 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// nextUploadTime returns the next configured weekday at hour in tz, in UTC
// RFC3339. No days means publish immediately and yields "".
func nextUploadTime(now time.Time, days []string, hour int, tz string) (string, error) {
	if len(days) == 0 {
		return "", nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("upload timezone %q: %w", tz, err)
	}
	want := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		wd, ok := parseWeekday(d)
		if !ok {
			return "", fmt.Errorf("unknown publish day %q", d)
		}
		want[wd] = true
	}

	local := now.In(loc)
	for i := 0; i <= 7; i++ {
		day := local.AddDate(0, 0, i)
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
		if want[at.Weekday()] && at.After(now) {
			return at.UTC().Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("no publish slot found for %v", days)
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return wd, true
		}
	}
	return 0, false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
