package state

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"story-shorts-pipeline/config"
)

func TestRemember(t *testing.T) {
	s := New()
	for _, v := range []string{"a", "b", "c", "b", "d", ""} {
		s.Remember(KindTopics, v, 3)
	}
	if got := strings.Join(s.RecentOf(KindTopics), ","); got != "d,b,c" {
		t.Errorf("recent = %s, want d,b,c", got)
	}
	if len(s.RecentOf(KindThemes)) != 0 {
		t.Error("kinds leak into each other")
	}
}

func TestRememberOnZeroState(t *testing.T) {
	var s State
	s.Remember(KindQueries, "tools close up", 5)
	if !slices.Contains(s.RecentOf(KindQueries), "tools close up") {
		t.Error("value not remembered")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewFileStore(path)

	s, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if s.Runs != 0 || len(s.Recent) != 0 {
		t.Fatalf("fresh state = %+v", s)
	}

	s.Runs = 4
	s.Remember(KindThemes, "A Snowy Cabin Where Time Slows Down", 5)
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Runs != 4 || !slices.Contains(got.RecentOf(KindThemes), "A Snowy Cabin Where Time Slows Down") {
		t.Errorf("loaded %+v", got)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Runs != 0 || s.Recent == nil {
		t.Errorf("corrupt file gave %+v, want fresh state", s)
	}
}

func TestOpen(t *testing.T) {
	cfg := config.Default()
	st, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := st.(*FileStore); !ok {
		t.Errorf("default backend = %T, want *FileStore", st)
	}

	t.Setenv("REDIS_URL", "redis://localhost:6390/2")
	cfg.State.Backend = "redis"
	st, err = Open(cfg)
	if err != nil {
		t.Fatalf("Open redis: %v", err)
	}
	rs, ok := st.(*RedisStore)
	if !ok {
		t.Fatalf("redis backend = %T", st)
	}
	if rs.key != cfg.State.RedisKey {
		t.Errorf("key = %s", rs.key)
	}
	if opts := rs.rdb.Options(); opts.Addr != "localhost:6390" || opts.DB != 2 {
		t.Errorf("redis options = %s db %d", opts.Addr, opts.DB)
	}
	rs.Close()

	cfg.State.Backend = "sqlite"
	if _, err := Open(cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}
