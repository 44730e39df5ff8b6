package story

import (
	"fmt"
	"math/rand"
	"strings"

	"story-shorts-pipeline/types"
)

var themes = []string{
	"The Quiet Floating City of Light",
	"A Night Train Through Silent Stars",
	"The Library at the Edge of the Ocean",
	"A Calm Space Station With No Alarms",
	"The Lantern Streets of a Dream City",
	"A Snowy Cabin Where Time Slows Down",
}

var chapterNames = []string{
	"Arrival", "The First Streets", "Gentle Rules", "A Safe Path",
	"Soft Wind", "The Quiet Center", "Slower Steps", "Lights Fading",
	"Breath Like Waves", "Closing the Day", "Still Water", "Goodnight",
}

var sentenceBuckets = []string{"world", "journey", "calm", "sleep"}

var sentenceBank = map[string][]string{
	"calm": {
		"There is nothing to fix right now.",
		"Your only job is to rest.",
		"Each breath is enough.",
		"You are safe, and the world can wait.",
		"Let your shoulders soften.",
		"Let your thoughts pass like clouds.",
	},
	"world": {
		"The air feels clean and slow, as if the city is breathing with you.",
		"Lights glow gently, like lanterns behind frosted glass.",
		"Footsteps are quiet here, softened by distance and calm.",
		"Everything moves at a patient pace, with no urgency.",
		"You notice small details, and they make you feel grounded.",
	},
	"journey": {
		"You walk forward without rushing, and the path meets you halfway.",
		"A calm corridor opens into a wider space, and you exhale.",
		"You turn a corner and find a place that feels familiar, even if you've never been here.",
		"The world seems designed for peace, simple and soft and kind.",
	},
	"sleep": {
		"With each sentence, your breathing becomes slower.",
		"Your eyelids grow heavier, and that is perfectly okay.",
		"If your mind wanders, gently return to the sound of the voice.",
		"The day can fade now.",
	},
}

// Sleep writes a narrated sleep story of 8 to 12 chapters, one line per
// chapter. Longer targets get more sentences per chapter; the first two
// chapters build the world and the last one winds down for longer.
func (w *Writer) Sleep(rng *rand.Rand, recentThemes []string) *types.Script {
	theme := pick(rng, preferUnused(themes, recentThemes))
	n := 8 + rng.Intn(5)

	base := 40
	if w.cfg.Long.TargetMinutes >= 60 {
		base = 55
	}

	lines := make([]types.Line, n)
	for i := 0; i < n; i++ {
		sentences := base + rng.Intn(21) - 10
		if i < 2 {
			sentences += 10
		}
		if i == n-1 {
			sentences += 15
		}
		name := chapterNames[i]
		lines[i] = types.Line{
			Speaker: types.RoleNarrator,
			Title:   name,
			Text:    fmt.Sprintf("Chapter %d. %s. Take a slow breath in… and out. %s", i+1, name, paragraph(rng, sentences)),
		}
	}

	return &types.Script{
		Kind:     "sleep",
		Topic:    theme,
		Title:    "Immersive Worlds Sleep Story: " + theme,
		Lines:    lines,
		Hashtags: []string{"#SleepStory", "#ImmersiveWorlds", "#DeepSleep", "#Relaxation"},
		Tags:     []string{"sleep story", "immersive", "relaxation", "deep sleep", "calm", "bedtime story", "ambient"},
	}
}

func paragraph(rng *rand.Rand, sentences int) string {
	parts := make([]string, sentences)
	for i := range parts {
		parts[i] = pick(rng, sentenceBank[pick(rng, sentenceBuckets)])
	}
	return strings.Join(parts, " ")
}

func preferUnused(all, recent []string) []string {
	used := make(map[string]bool, len(recent))
	for _, r := range recent {
		used[r] = true
	}
	var out []string
	for _, a := range all {
		if !used[a] {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}
