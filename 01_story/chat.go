package story

import (
	"math/rand"
	"time"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/types"
)

// topic is one weighted conversation subject with its line pools
type topic struct {
	name        string
	weight      int
	hooks       []string
	confessions []string
	twists      []string
	cliffs      []string
}

var topics = []topic{
	{
		name:   "relationship_ghosting",
		weight: 10,
		hooks: []string{
			"They replied... but it felt colder than silence.",
			"I saw their name and my stomach dropped.",
			"I didn't expect that message.",
		},
		confessions: []string{
			"I wasn't asking for love. Just clarity.",
			"I keep forgiving what I shouldn't.",
			"I hate how fast I miss people.",
		},
		twists: []string{
			"Maybe you're not 'too much'. Maybe they're not enough.",
			"Sometimes closure is just disappointment with a caption.",
		},
		cliffs: []string{"Don't ask me who. You'll know."},
	},
	{
		name:   "self_respect_boundaries",
		weight: 9,
		hooks: []string{
			"I finally said no... and everything changed.",
			"This is what self-respect looks like.",
			"I stopped explaining myself.",
		},
		confessions: []string{
			"I was shrinking to be easier to love.",
			"I kept lowering my standards to avoid being alone.",
		},
		twists: []string{
			"The right people don't need you to beg.",
			"Peace feels boring when you're addicted to chaos.",
		},
		cliffs: []string{"I'm not ready to tell you what happened next."},
	},
	{
		name:   "overthinking_anxiety",
		weight: 8,
		hooks: []string{
			"My brain won't stop replaying it.",
			"It's 2 AM and I'm still thinking about it.",
			"One sentence ruined my whole night.",
		},
		confessions: []string{
			"I overanalyze because surprises hurt.",
			"I don't trust calm. I wait for the twist.",
		},
		twists: []string{
			"Maybe you're not anxious. Maybe you're unsafe.",
			"Your body remembers what you ignore.",
		},
		cliffs: []string{"If I say the last part, you'll understand everything."},
	},
	{
		name:   "psychology_attachment",
		weight: 8,
		hooks: []string{
			"People don't leave suddenly. They leave quietly first.",
			"Attachment is a wild thing.",
			"This is why you can't let go.",
		},
		confessions: []string{
			"I confuse intensity with love.",
			"I chase what won't choose me.",
		},
		twists: []string{
			"Avoidants fear closeness. Anxious fear distance.",
			"Familiar pain feels safer than unknown peace.",
		},
		cliffs: []string{"This is the part nobody teaches you."},
	},
	{
		name:   "late_night_confession",
		weight: 7,
		hooks: []string{
			"I almost sent this... then I panicked.",
			"This is embarrassing to admit.",
			"I typed it. Deleted it. Typed it again.",
		},
		confessions: []string{
			"I miss the idea more than the person.",
			"I hate how hopeful I get.",
		},
		twists: []string{
			"Sometimes 'maybe' is just a soft no.",
			"If they wanted to, you wouldn't be guessing.",
		},
		cliffs: []string{"I'm deleting this soon."},
	},
	{
		name:   "friendship_betrayal",
		weight: 6,
		hooks: []string{
			"It hurts more when it's a friend.",
			"I didn't expect it from them.",
			"That laugh felt fake.",
		},
		confessions: []string{
			"I defended them. They never did the same.",
			"I ignored the red flags because I wanted it to work.",
		},
		twists: []string{
			"Loyalty isn't loud. It's consistent.",
			"You outgrow people when you stop accepting crumbs.",
		},
		cliffs: []string{"Don't make me say their name."},
	},
}

// Writer produces scripts from fixed line banks and an explicit random source
type Writer struct {
	cfg *config.Config
}

// New creates a new Writer
func New(cfg *config.Config) *Writer {
	return &Writer{cfg: cfg}
}

// Chat writes a conversation of config.ChatLines messages. Most conversations are between
// two people; the rest are someone arguing with their inner voice. Clock
// labels start at now and advance one minute per message.
func (w *Writer) Chat(rng *rand.Rand, recentTopics []string, now time.Time) *types.Script {
	t := pickTopic(rng, recentTopics)
	hook := pick(rng, t.hooks)
	confession := pick(rng, t.confessions)
	twist := pick(rng, t.twists)
	cliff := pick(rng, t.cliffs)

	var title string
	var texts []string
	var roles []types.Role
	if rng.Float64() < w.cfg.Shorts.TwoPersonRatio {
		title = "I almost sent this…"
		texts = []string{hook, "Say it.", confession, twist, cliff}
		roles = []types.Role{types.RoleLeft, types.RoleRight, types.RoleLeft, types.RoleRight, types.RoleLeft}
	} else {
		title = "My inner voice said this…"
		texts = []string{hook, "Don't send it.", confession, twist, cliff}
		roles = []types.Role{types.RoleLeft, types.RoleInner, types.RoleLeft, types.RoleInner, types.RoleLeft}
	}

	lines := make([]types.Line, len(texts))
	for i := range texts {
		lines[i] = types.Line{
			Speaker: roles[i],
			Text:    texts[i],
			Label:   ClockLabel(now, i),
		}
	}
	return &types.Script{
		Kind:  "chat",
		Topic: t.name,
		Title: title,
		Lines: lines,
	}
}

// ClockLabel is the time shown under a message, e.g. "9:41 PM"
func ClockLabel(base time.Time, addMinutes int) string {
	return base.Add(time.Duration(addMinutes) * time.Minute).Format("3:04 PM")
}

// pickTopic draws a topic by weight, skipping recent topics unless every
// topic is recent
func pickTopic(rng *rand.Rand, recent []string) topic {
	skip := make(map[string]bool, len(recent))
	for _, r := range recent {
		skip[r] = true
	}
	pool := make([]topic, 0, len(topics))
	for _, t := range topics {
		if !skip[t.name] {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		pool = topics
	}

	total := 0
	for _, t := range pool {
		total += t.weight
	}
	r := rng.Intn(total)
	for _, t := range pool {
		if r < t.weight {
			return t
		}
		r -= t.weight
	}
	return pool[0]
}

func pick(rng *rand.Rand, xs []string) string {
	return xs[rng.Intn(len(xs))]
}
