package visuals

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Library is a directory of ready-made background clips
type Library struct {
	dir string
}

// NewLibrary opens the clip directory
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Clips lists the library's video files by name
func (l *Library) Clips() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}
	var clips []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".mp4", ".mov", ".webm", ".mkv":
			clips = append(clips, e.Name())
		}
	}
	sort.Strings(clips)
	return clips, nil
}

// Pick returns a random clip that is not among the recently used names.
// When every clip was used recently it picks from all of them.
func (l *Library) Pick(rng *rand.Rand, recent []string) (string, error) {
	clips, err := l.Clips()
	if err != nil {
		return "", fmt.Errorf("read background library: %w", err)
	}
	if len(clips) == 0 {
		return "", fmt.Errorf("no background clips in %s", l.dir)
	}
	pool := preferFresh(clips, recent)
	return filepath.Join(l.dir, pool[rng.Intn(len(pool))]), nil
}
