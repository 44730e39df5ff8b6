// Package state persists what recent runs used, so the next run can pick
// something different. It is loaded once at the start of a run and saved
// once at the end.
package state

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/go-redis/redis/v8"

	"story-shorts-pipeline/config"
)

// Kinds of remembered subjects
const (
	KindTopics      = "topics"
	KindThemes      = "themes"
	KindBackgrounds = "backgrounds"
	KindQueries     = "queries"
)

// State is the persisted memory shared across runs
type State struct {
	Runs      int                 `json:"runs"`
	LastRunAt string              `json:"last_run_at,omitempty"`
	Recent    map[string][]string `json:"recent"`
}

// New returns an empty State
func New() *State {
	return &State{Recent: map[string][]string{}}
}

// Remember records value as the newest entry of kind, keeping at most
// limit entries. A value already present moves to the front.
func (s *State) Remember(kind, value string, limit int) {
	if value == "" {
		return
	}
	if s.Recent == nil {
		s.Recent = map[string][]string{}
	}
	list := slices.DeleteFunc(slices.Clone(s.Recent[kind]), func(v string) bool { return v == value })
	list = append([]string{value}, list...)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	s.Recent[kind] = list
}

// RecentOf returns the remembered entries of kind, newest first
func (s *State) RecentOf(kind string) []string {
	return s.Recent[kind]
}

// Store loads and saves State
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s *State) error
}

// Open returns the store named by state.backend. The Redis store reads
// REDIS_URL, either a redis:// URL or a bare host:port.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.State.Backend {
	case "redis":
		addr := os.Getenv("REDIS_URL")
		if addr == "" {
			addr = "localhost:6379"
		}
		opts, err := redis.ParseURL(addr)
		if err != nil {
			opts = &redis.Options{Addr: addr}
		}
		return NewRedisStore(redis.NewClient(opts), cfg.State.RedisKey), nil
	case "file", "":
		return NewFileStore(cfg.State.Path), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}
