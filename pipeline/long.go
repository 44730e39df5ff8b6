package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"story-shorts-pipeline/01_story"
	"story-shorts-pipeline/02_schedule"
	"story-shorts-pipeline/03_audio"
	"story-shorts-pipeline/04_visuals"
	"story-shorts-pipeline/05_subtitles"
	"story-shorts-pipeline/07_render"
	"story-shorts-pipeline/08_metadata"
	"story-shorts-pipeline/config"
	"story-shorts-pipeline/state"
	"story-shorts-pipeline/types"

	"github.com/rs/zerolog/log"
)

// Long produces one landscape sleep story with chapters and an ambient bed
func (p *Pipeline) Long(ctx context.Context, opts Options) (ps *types.PipelineState, err error) {
	r, err := p.begin("long", opts)
	if err != nil {
		return nil, err
	}
	defer func() { p.finish(r, err) }()
	ps = r.ps
	cfg := p.cfg

	if !opts.DryRun {
		banner(0, "Auth Check")
		if err := p.uploader.VerifyAuth(ctx); err != nil {
			return ps, stageErr(0, "Auth", err)
		}
	}
	st := p.loadState(ctx)

	banner(1, "Story")
	script := story.New(cfg).Sleep(r.rng, st.RecentOf(state.KindThemes))
	ps.Script = script
	log.Info().Str("theme", script.Topic).Int("chapters", len(script.Lines)).Msg("[story] ✅ Sleep story written")

	banner(2, "Audio Generation")
	audioGen, err := audio.New(cfg)
	if err != nil {
		return ps, stageErr(2, "Audio", err)
	}
	if err := audioGen.Run(ctx, script.Lines, filepath.Join(r.workDir, "audio")); err != nil {
		return ps, stageErr(2, "Audio", err)
	}

	banner(3, "Timeline")
	utts, err := schedule.Schedule(script.Lines, schedule.LongPolicy(cfg))
	if err != nil {
		return ps, stageErr(3, "Timeline", err)
	}
	total := schedule.TotalDuration(utts, cfg.Long.TailSec)
	timeline := &types.Timeline{Utterances: utts, TotalSec: total}
	ps.Timeline = timeline
	chapters := chaptersOf(utts)
	log.Info().Float64("sec", total).Int("chapters", len(chapters)).Msg("[schedule] ✅ Chapters placed")

	banner(4, "Subtitles")
	subs := render.SubtitleTrack{TotalSec: total}
	if cfg.Subtitles.Enabled {
		path, cues, err := subtitles.New(cfg).Run(utts, total, 0, filepath.Join(r.workDir, "subtitles"))
		if err != nil {
			return ps, stageErr(4, "Subtitles", err)
		}
		subs.Path, subs.Cues = path, cues
		timeline.Cues = cues
	} else {
		log.Info().Msg("[subtitles] Disabled in config, skipping")
	}

	banner(5, "Visuals")
	bg, err := visuals.NewAssembler(cfg).Long(ctx, r.rng, script.Topic, filepath.Join(r.workDir, "visuals"))
	if err != nil {
		return ps, stageErr(5, "Visuals", err)
	}
	ps.Background = bg.Source

	banner(6, "Rendering")
	set, err := render.Assemble(subs, render.OverlayTrack{}, render.AudioTrack{
		Clips:    speechClips(utts, cfg.Audio.MixWeight),
		TotalSec: total,
		Ambient:  ambientOf(cfg),
	})
	if err != nil {
		return ps, stageErr(6, "Render", err)
	}
	set.Cards = chapterCards(cfg.Long, script.Title, chapters, total)
	renderer := render.New(cfg)
	video, err := renderer.Run(ctx, set, render.Background{Path: bg.Path, Still: bg.Still}, renderer.LongCanvas(), r.workDir)
	if err != nil {
		return ps, stageErr(6, "Render", err)
	}
	ps.VideoFile = video

	banner(7, "Metadata")
	metaGen := metadata.New(cfg)
	md, err := metaGen.Run(ctx, metaGen.LongMetadata(script, chapters, r.now), script, r.now)
	if err != nil {
		return ps, stageErr(7, "Metadata", err)
	}
	ps.Metadata = md

	banner(8, "Publish")
	if err := p.publish(ctx, r, video, md, opts.DryRun); err != nil {
		return ps, stageErr(8, "Upload", err)
	}

	p.remember(ctx, st, r, map[string]string{state.KindThemes: script.Topic})
	return ps, nil
}

func chaptersOf(utts []types.Utterance) []types.Chapter {
	chapters := make([]types.Chapter, len(utts))
	for i, u := range utts {
		chapters[i] = types.Chapter{StartSec: u.Start, Name: u.Title}
	}
	return chapters
}

func ambientOf(cfg *config.Config) *render.Ambient {
	if cfg.Long.AmbientVolume <= 0 {
		return nil
	}
	return &render.Ambient{
		Amplitude: cfg.Long.AmbientAmplitude,
		LowpassHz: cfg.Long.AmbientLowpassHz,
		Volume:    cfg.Long.AmbientVolume,
	}
}

// chapterCards keeps the brand and title on screen for the whole video and
// shows each chapter's name for a few seconds from its start
func chapterCards(lc config.LongConfig, title string, chapters []types.Chapter, total float64) []render.TextCard {
	var cards []render.TextCard
	if lc.Brand != "" {
		cards = append(cards, render.TextCard{Text: lc.Brand, Start: 0, End: total, Size: 34, Y: "70"})
	}
	cards = append(cards, render.TextCard{Text: title, Start: 0, End: total, Size: 44, Y: "130"})
	if lc.ChapterCardSec <= 0 {
		return cards
	}
	for i, c := range chapters {
		cards = append(cards, render.TextCard{
			Text:  fmt.Sprintf("Chapter %d: %s", i+1, c.Name),
			Start: c.StartSec,
			End:   min(c.StartSec+lc.ChapterCardSec, total),
			Size:  40,
		})
	}
	return cards
}
