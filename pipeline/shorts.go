package pipeline

import (
	"context"
	"path/filepath"

	"story-shorts-pipeline/01_story"
	"story-shorts-pipeline/02_schedule"
	"story-shorts-pipeline/03_audio"
	"story-shorts-pipeline/04_visuals"
	"story-shorts-pipeline/05_subtitles"
	"story-shorts-pipeline/06_overlay"
	"story-shorts-pipeline/07_render"
	"story-shorts-pipeline/08_metadata"
	"story-shorts-pipeline/state"
	"story-shorts-pipeline/types"

	"github.com/rs/zerolog/log"
)

// Shorts produces one vertical chat-drama short
func (p *Pipeline) Shorts(ctx context.Context, opts Options) (ps *types.PipelineState, err error) {
	r, err := p.begin("shorts", opts)
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
	script := story.New(cfg).Chat(r.rng, st.RecentOf(state.KindTopics), r.now)
	ps.Script = script
	log.Info().Str("topic", script.Topic).Str("title", script.Title).Msg("[story] ✅ Conversation written")

	banner(2, "Audio Generation")
	audioGen, err := audio.New(cfg)
	if err != nil {
		return ps, stageErr(2, "Audio", err)
	}
	if err := audioGen.Run(ctx, script.Lines, filepath.Join(r.workDir, "audio")); err != nil {
		return ps, stageErr(2, "Audio", err)
	}

	banner(3, "Timeline")
	utts, err := schedule.Schedule(script.Lines, schedule.ShortsPolicy(cfg))
	if err != nil {
		return ps, stageErr(3, "Timeline", err)
	}
	total := cfg.Shorts.DurationSec
	timeline := &types.Timeline{Utterances: utts, TotalSec: total}
	ps.Timeline = timeline

	banner(4, "Subtitles")
	subs := render.SubtitleTrack{TotalSec: total}
	if cfg.Subtitles.Enabled {
		path, cues, err := subtitles.New(cfg).Run(utts, total, cfg.Shorts.VoiceLeadSec, filepath.Join(r.workDir, "subtitles"))
		if err != nil {
			return ps, stageErr(4, "Subtitles", err)
		}
		subs.Path, subs.Cues = path, cues
		timeline.Cues = cues
	} else {
		log.Info().Msg("[subtitles] Disabled in config, skipping")
	}

	banner(5, "Chat Overlay")
	frames, err := overlay.New(cfg).Run(ctx, utts, total, ps.Seed, filepath.Join(r.workDir, "overlay"))
	if err != nil {
		return ps, stageErr(5, "Overlay", err)
	}
	timeline.Frames = frames

	banner(6, "Effects")
	effects := audio.NewEffects(cfg).Run(ctx, utts, filepath.Join(r.workDir, "sfx"))

	banner(7, "Visuals")
	recent := visuals.Recent{
		Clips:   st.RecentOf(state.KindBackgrounds),
		Queries: st.RecentOf(state.KindQueries),
	}
	bg, err := visuals.NewAssembler(cfg).Shorts(ctx, r.rng, recent, filepath.Join(r.workDir, "visuals"))
	if err != nil {
		return ps, stageErr(7, "Visuals", err)
	}
	ps.Background = bg.Source

	banner(8, "Rendering")
	clips := append(speechClips(utts, cfg.Audio.MixWeight), effectClips(effects)...)
	set, err := render.Assemble(subs,
		render.OverlayTrack{Frames: frames, TotalSec: total},
		render.AudioTrack{Clips: clips, TotalSec: total, VoiceLeadSec: cfg.Shorts.VoiceLeadSec},
	)
	if err != nil {
		return ps, stageErr(8, "Render", err)
	}
	renderer := render.New(cfg)
	video, err := renderer.Run(ctx, set, render.Background{Path: bg.Path, Still: bg.Still}, renderer.ShortsCanvas(), r.workDir)
	if err != nil {
		return ps, stageErr(8, "Render", err)
	}
	ps.VideoFile = video

	banner(9, "Metadata")
	metaGen := metadata.New(cfg)
	md, err := metaGen.Run(ctx, metaGen.ShortMetadata(r.rng, script), script, r.now)
	if err != nil {
		return ps, stageErr(9, "Metadata", err)
	}
	ps.Metadata = md

	banner(10, "Publish")
	if err := p.publish(ctx, r, video, md, opts.DryRun); err != nil {
		return ps, stageErr(10, "Upload", err)
	}

	libraryClip := ""
	if bg.Source == "library" {
		libraryClip = bg.Path
	}
	p.remember(ctx, st, r, map[string]string{
		state.KindTopics:      script.Topic,
		state.KindBackgrounds: libraryClip,
		state.KindQueries:     bg.Query,
	})
	return ps, nil
}

// speechClips places each utterance's clip at its start
func speechClips(utts []types.Utterance, weight float64) []render.AudioClip {
	clips := make([]render.AudioClip, 0, len(utts))
	for _, u := range utts {
		clips = append(clips, render.AudioClip{
			Utterance: u.Index,
			Path:      u.AudioFile,
			StartSec:  u.Start,
			Weight:    weight,
		})
	}
	return clips
}

// effectClips are notification sounds, not tied to any message's speech
func effectClips(fx []audio.Effect) []render.AudioClip {
	clips := make([]render.AudioClip, 0, len(fx))
	for _, e := range fx {
		clips = append(clips, render.AudioClip{Utterance: -1, Path: e.Path, StartSec: e.StartSec})
	}
	return clips
}
