package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChatLines is how many messages every chat-drama short carries
const ChatLines = 5

type Config struct {
	Shorts    ShortsConfig    `yaml:"shorts"`
	Long      LongConfig      `yaml:"long"`
	Subtitles SubtitlesConfig `yaml:"subtitles"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Audio     AudioConfig     `yaml:"audio"`
	Effects   EffectsConfig   `yaml:"effects"`
	Visuals   VisualsConfig   `yaml:"visuals"`
	Render    RenderConfig    `yaml:"render"`
	Metadata  MetadataConfig  `yaml:"metadata"`
	Upload    UploadConfig    `yaml:"upload"`
	State     StateConfig     `yaml:"state"`
	Cron      CronConfig      `yaml:"cron"`
	Paths     PathsConfig     `yaml:"paths"`
}

// ShortsConfig drives the vertical chat-drama variant
type ShortsConfig struct {
	DurationSec    float64   `yaml:"duration_sec"`
	Width          int       `yaml:"width"`
	Height         int       `yaml:"height"`
	FPS            int       `yaml:"fps"`
	AppearTimes    []float64 `yaml:"appear_times"` // explicit offsets; empty means lead_in + gap
	LeadInSec      float64   `yaml:"lead_in_sec"`
	GapSec         float64   `yaml:"gap_sec"`
	VoiceLeadSec   float64   `yaml:"voice_lead_sec"`
	TwoPersonRatio float64   `yaml:"two_person_ratio"`
}

// LongConfig drives the long-form sleep-story variant
type LongConfig struct {
	TargetMinutes    int     `yaml:"target_minutes"`
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	FPS              int     `yaml:"fps"`
	LeadInSec        float64 `yaml:"lead_in_sec"`
	ChapterPauseSec  float64 `yaml:"chapter_pause_sec"`
	TailSec          float64 `yaml:"tail_sec"`
	ChapterCardSec   float64 `yaml:"chapter_card_sec"`
	Brand            string  `yaml:"brand"`
	ZoomStep         float64 `yaml:"zoom_step"`
	ZoomMax          float64 `yaml:"zoom_max"`
	DarkenAlpha      float64 `yaml:"darken_alpha"`
	AmbientAmplitude float64 `yaml:"ambient_amplitude"`
	AmbientLowpassHz int     `yaml:"ambient_lowpass_hz"`
	AmbientVolume    float64 `yaml:"ambient_volume"`
}

type SubtitlesConfig struct {
	Enabled    bool    `yaml:"enabled"`
	ChunkWords int     `yaml:"chunk_words"`
	MinCueSec  float64 `yaml:"min_cue_sec"`
	MaxCueSec  float64 `yaml:"max_cue_sec"`
	Font       string  `yaml:"font"`
	FontSize   int     `yaml:"font_size"`
	Bold       bool    `yaml:"bold"`
	Outline    float64 `yaml:"outline"`
	MarginV    int     `yaml:"margin_v"`
	Alignment  int     `yaml:"alignment"`
}

// OverlayConfig is the chat overlay geometry in canvas pixels
type OverlayConfig struct {
	FontPath       string  `yaml:"font_path"`
	ChatHeight     int     `yaml:"chat_height"`
	HeaderText     string  `yaml:"header_text"`
	HeaderX        int     `yaml:"header_x"`
	HeaderY        int     `yaml:"header_y"`
	HeaderSize     float64 `yaml:"header_size"`
	MessageSize    float64 `yaml:"message_size"`
	TimeSize       float64 `yaml:"time_size"`
	LeftX          int     `yaml:"left_x"`
	RightX         int     `yaml:"right_x"`
	TopY           int     `yaml:"top_y"`
	RowPitch       int     `yaml:"row_pitch"`
	Radius         float64 `yaml:"radius"`
	PadX           int     `yaml:"pad_x"`
	PadY           int     `yaml:"pad_y"`
	LeftMaxWidth   int     `yaml:"left_max_width"`
	RightMaxWidth  int     `yaml:"right_max_width"`
	MaxBubbleWidth int     `yaml:"max_bubble_width"`
	TypingWidth    int     `yaml:"typing_width"`
	TypingHeight   int     `yaml:"typing_height"`
	TypingFrames   int     `yaml:"typing_frames"`
	TypingLeadSec  float64 `yaml:"typing_lead_sec"`
	PatternStep    int     `yaml:"pattern_step"`
	PatternAlpha   int     `yaml:"pattern_alpha"`
	Workers        int     `yaml:"workers"` // 0 = NumCPU
}

type AudioConfig struct {
	Engine      string            `yaml:"engine"` // command | polly
	Voices      map[string]string `yaml:"voices"` // role → voice id
	CoquiModel  string            `yaml:"coqui_model"`
	EdgeVoices  map[string]string `yaml:"edge_voices"` // voice id → edge-tts voice
	PollyRegion string            `yaml:"polly_region"`
	PollyEngine string            `yaml:"polly_engine"`
	PollyVoices map[string]string `yaml:"polly_voices"`
	SampleRate  int               `yaml:"sample_rate"`
	Channels    int               `yaml:"channels"`
	Retries     int               `yaml:"retries"`
	MixWeight   float64           `yaml:"mix_weight"`
}

// EffectsConfig maps speaker roles to short notification sounds in Dir
type EffectsConfig struct {
	Enabled    bool              `yaml:"enabled"`
	Dir        string            `yaml:"dir"`
	ByRole     map[string]string `yaml:"by_role"` // role → file name
	Volume     float64           `yaml:"volume"`
	MaxSec     float64           `yaml:"max_sec"`
	FadeInSec  float64           `yaml:"fade_in_sec"`
	FadeOutSec float64           `yaml:"fade_out_sec"`
}

type VisualsConfig struct {
	PexelsQueries        []string `yaml:"pexels_queries"`
	PexelsPerPage        int      `yaml:"pexels_per_page"`
	PexelsAttempts       int      `yaml:"pexels_attempts"`
	PexelsMinHeight      int      `yaml:"pexels_min_height"`
	PexelsMinBytes       int64    `yaml:"pexels_min_bytes"`
	PexelsTargetBytes    int64    `yaml:"pexels_target_bytes"`
	PexelsMinDurationSec float64  `yaml:"pexels_min_duration_sec"`
	RequestsPerMinute    int      `yaml:"requests_per_minute"`
	PollinationsModel    string   `yaml:"pollinations_model"`
	PollinationsAttempts int      `yaml:"pollinations_attempts"`
	ProceduralSec        float64  `yaml:"procedural_sec"`
}

type RenderConfig struct {
	Preset       string  `yaml:"preset"`
	CRF          int     `yaml:"crf"`
	AudioBitrate string  `yaml:"audio_bitrate"`
	Contrast     float64 `yaml:"contrast"`
	Saturation   float64 `yaml:"saturation"`
}

type MetadataConfig struct {
	TitleMaxChars  int      `yaml:"title_max_chars"`
	CategoryID     string   `yaml:"category_id"`
	Language       string   `yaml:"language"`
	TitleHooks     []string `yaml:"title_hooks"`
	SearchKeywords []string `yaml:"search_keywords"`
	ShortHashtags  []string `yaml:"short_hashtags"`
	ShortTags      []string `yaml:"short_tags"`
	Polish         bool     `yaml:"polish"`
	LLMModel       string   `yaml:"llm_model"`
	LLMBaseURL     string   `yaml:"llm_base_url"`
}

type UploadConfig struct {
	Visibility        string   `yaml:"visibility"`
	NotifySubscribers bool     `yaml:"notify_subscribers"`
	MadeForKids       bool     `yaml:"made_for_kids"`
	PublishDays       []string `yaml:"publish_days"` // empty = publish immediately
	PublishHour       int      `yaml:"publish_hour"`
	Timezone          string   `yaml:"timezone"`
}

type StateConfig struct {
	Backend     string `yaml:"backend"` // file | redis
	Path        string `yaml:"path"`
	RedisKey    string `yaml:"redis_key"`
	RecentLimit int    `yaml:"recent_limit"`
}

type CronConfig struct {
	Shorts string `yaml:"shorts"`
	Long   string `yaml:"long"`
}

type PathsConfig struct {
	Work     string `yaml:"work"`
	Output   string `yaml:"output"`
	Logs     string `yaml:"logs"`
	AssetsBG string `yaml:"assets_bg"`
}

// Default returns the values the pipeline was tuned with
func Default() *Config {
	return &Config{
		Shorts: ShortsConfig{
			DurationSec:    35,
			Width:          1080,
			Height:         1920,
			FPS:            30,
			AppearTimes:    []float64{2, 7, 14, 22, 29},
			LeadInSec:      2,
			GapSec:         0.6,
			VoiceLeadSec:   0.15,
			TwoPersonRatio: 0.7,
		},
		Long: LongConfig{
			TargetMinutes:    60,
			Width:            1280,
			Height:           720,
			FPS:              30,
			ChapterPauseSec:  4,
			TailSec:          4,
			ChapterCardSec:   6,
			Brand:            "IMMERSIVE WORLDS",
			ZoomStep:         0.00008,
			ZoomMax:          1.12,
			DarkenAlpha:      0.22,
			AmbientAmplitude: 0.03,
			AmbientLowpassHz: 1800,
			AmbientVolume:    0.10,
		},
		Subtitles: SubtitlesConfig{
			Enabled:    true,
			ChunkWords: 3,
			MinCueSec:  0.8,
			MaxCueSec:  3.0,
			Font:       "DejaVu Sans",
			FontSize:   14,
			Bold:       true,
			Outline:    2,
			MarginV:    60,
			Alignment:  2,
		},
		Overlay: OverlayConfig{
			FontPath:       "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			ChatHeight:     980,
			HeaderText:     "Messages",
			HeaderX:        50,
			HeaderY:        25,
			HeaderSize:     42,
			MessageSize:    44,
			TimeSize:       30,
			LeftX:          60,
			RightX:         520,
			TopY:           140,
			RowPitch:       145,
			Radius:         28,
			PadX:           28,
			PadY:           18,
			LeftMaxWidth:   900,
			RightMaxWidth:  500,
			MaxBubbleWidth: 960,
			TypingWidth:    280,
			TypingHeight:   86,
			TypingFrames:   3,
			TypingLeadSec:  0.9,
			PatternStep:    92,
			PatternAlpha:   18,
		},
		Audio: AudioConfig{
			Engine: "command",
			Voices: map[string]string{
				"left":     "p225",
				"right":    "p226",
				"inner":    "p225",
				"narrator": "p225",
			},
			CoquiModel: "tts_models/en/vctk/vits",
			EdgeVoices: map[string]string{
				"p225": "en-US-JennyNeural",
				"p226": "en-US-GuyNeural",
			},
			PollyRegion: "us-west-2",
			PollyEngine: "neural",
			PollyVoices: map[string]string{
				"left":     "Joanna",
				"right":    "Matthew",
				"inner":    "Ruth",
				"narrator": "Gregory",
			},
			SampleRate: 22050,
			Channels:   1,
			Retries:    3,
			MixWeight:  1.0,
		},
		Effects: EffectsConfig{
			Enabled: true,
			Dir:     "assets/sfx",
			ByRole: map[string]string{
				"left":  "message_in.wav",
				"right": "message_out.wav",
				"inner": "message_out.wav",
			},
			Volume:     0.35,
			MaxSec:     1.5,
			FadeInSec:  0.02,
			FadeOutSec: 0.2,
		},
		Visuals: VisualsConfig{
			PexelsQueries: []string{
				"oddly satisfying close up",
				"precision work hands",
				"craftsmanship close up",
				"kinetic sand close up",
				"woodworking close up",
				"metal polishing macro",
				"calming process close up",
				"tools close up",
			},
			PexelsPerPage:        40,
			PexelsAttempts:       8,
			PexelsMinHeight:      720,
			PexelsMinBytes:       2_000_000,
			PexelsTargetBytes:    12_000_000,
			PexelsMinDurationSec: 6,
			RequestsPerMinute:    30,
			PollinationsModel:    "flux",
			PollinationsAttempts: 3,
			ProceduralSec:        45,
		},
		Render: RenderConfig{
			Preset:       "veryfast",
			CRF:          22,
			AudioBitrate: "160k",
			Contrast:     1.03,
			Saturation:   1.05,
		},
		Metadata: MetadataConfig{
			TitleMaxChars: 100,
			CategoryID:    "22",
			Language:      "en",
			TitleHooks: []string{
				"I Almost Sent This Text…",
				"This Message Changed Everything",
				"I Shouldn’t Have Said This",
				"This Conversation Still Haunts Me",
				"I Wasn’t Ready For This Reply",
				"This Text Hit Too Hard",
				"I Deleted This Message…",
			},
			SearchKeywords: []string{
				"text message story",
				"chat story",
				"relatable conversation",
				"deep thoughts",
				"psychology",
				"late night thoughts",
				"relationship text",
			},
			ShortHashtags: []string{"#shorts", "#texting", "#chatstory", "#relatable", "#psychology"},
			ShortTags:     []string{"shorts", "chat", "texting", "story", "satisfying", "viral", "psychology"},
			LLMModel:      "llama-3.1-8b-instant",
			LLMBaseURL:    "https://api.groq.com/openai/v1",
		},
		Upload: UploadConfig{
			Visibility:  "public",
			PublishHour: 14,
			Timezone:    "America/New_York",
		},
		State: StateConfig{
			Backend:     "file",
			Path:        "state.json",
			RedisKey:    "story-shorts:state",
			RecentLimit: 5,
		},
		Cron: CronConfig{
			Shorts: "0 */6 * * *",
			Long:   "30 3 * * *",
		},
		Paths: PathsConfig{
			Work:     "work",
			Output:   "output",
			Logs:     "logs",
			AssetsBG: "assets/bg",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no run could succeed with
func (c *Config) Validate() error {
	if c.Shorts.DurationSec <= 0 {
		return fmt.Errorf("shorts.duration_sec must be positive")
	}
	if c.Shorts.Width <= 0 || c.Shorts.Height <= 0 || c.Shorts.FPS <= 0 {
		return fmt.Errorf("shorts canvas must be positive, got %dx%d@%d", c.Shorts.Width, c.Shorts.Height, c.Shorts.FPS)
	}
	if n := len(c.Shorts.AppearTimes); n > 0 && n < ChatLines {
		return fmt.Errorf("shorts.appear_times has %d entries, a chat needs %d", n, ChatLines)
	}
	for i, t := range c.Shorts.AppearTimes {
		if t < 0 {
			return fmt.Errorf("shorts.appear_times[%d]=%.2f is negative", i, t)
		}
		if i > 0 && t <= c.Shorts.AppearTimes[i-1] {
			return fmt.Errorf("shorts.appear_times[%d]=%.2f does not come after %.2f", i, t, c.Shorts.AppearTimes[i-1])
		}
		if t >= c.Shorts.DurationSec {
			return fmt.Errorf("shorts.appear_times[%d]=%.2f is past duration %.2f", i, t, c.Shorts.DurationSec)
		}
	}
	if c.Shorts.LeadInSec < 0 || c.Shorts.GapSec < 0 || c.Shorts.VoiceLeadSec < 0 {
		return fmt.Errorf("shorts lead-in, gap and voice lead must not be negative")
	}
	if c.Long.ChapterPauseSec < 0 || c.Long.TailSec < 0 {
		return fmt.Errorf("long pause and tail must not be negative")
	}
	if c.Subtitles.ChunkWords <= 0 {
		return fmt.Errorf("subtitles.chunk_words must be positive")
	}
	if c.Subtitles.MinCueSec > c.Subtitles.MaxCueSec {
		return fmt.Errorf("subtitles.min_cue_sec %.2f exceeds max_cue_sec %.2f", c.Subtitles.MinCueSec, c.Subtitles.MaxCueSec)
	}
	if c.Overlay.TypingFrames < 0 || c.Overlay.TypingLeadSec < 0 {
		return fmt.Errorf("overlay typing frames and lead must not be negative")
	}
	if c.Overlay.ChatHeight > c.Shorts.Height {
		return fmt.Errorf("overlay.chat_height %d exceeds canvas height %d", c.Overlay.ChatHeight, c.Shorts.Height)
	}
	if c.Overlay.RowPitch <= 0 {
		return fmt.Errorf("overlay.row_pitch must be positive")
	}
	switch c.Audio.Engine {
	case "command", "polly":
	default:
		return fmt.Errorf("audio.engine must be command or polly, got %q", c.Audio.Engine)
	}
	if c.Effects.Volume < 0 || c.Effects.MaxSec < 0 {
		return fmt.Errorf("effects volume and max_sec must not be negative")
	}
	if c.Audio.MixWeight <= 0 {
		return fmt.Errorf("audio.mix_weight must be positive")
	}
	switch c.State.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("state.backend must be file or redis, got %q", c.State.Backend)
	}
	return nil
}
