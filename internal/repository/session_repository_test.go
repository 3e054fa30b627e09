package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionRepoTest(t *testing.T) (*SessionRepo, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewSessionRepo(rdb, "sess", time.Hour)
	return repo, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestSessionCreateAndFind(t *testing.T) {
	repo, _, done := newSessionRepoTest(t)
	defer done()
	ctx := context.Background()

	s, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID == "" {
		t.Fatal("empty session id")
	}

	s.IdentityID = 42
	s.Set("success", "welcome", true)
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Find(ctx, s.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.IdentityID != 42 {
		t.Fatalf("identity id = %d, want 42", got.IdentityID)
	}
	if v, ok := got.Get("success"); !ok || v != "welcome" {
		t.Fatalf("flash value = %q/%v, want welcome/true", v, ok)
	}
}

func TestSessionFlashClearedOnRead(t *testing.T) {
	repo, _, done := newSessionRepoTest(t)
	defer done()
	ctx := context.Background()

	s, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Set("error", "bad credentials", true)
	s.Set("theme", "dark", false)

	if _, ok := s.Get("error"); !ok {
		t.Fatal("flash value missing on first read")
	}
	if _, ok := s.Get("error"); ok {
		t.Fatal("flash value survived a second read")
	}
	// Non-flash values stay readable.
	for i := 0; i < 2; i++ {
		if v, ok := s.Get("theme"); !ok || v != "dark" {
			t.Fatalf("read %d: theme = %q/%v", i, v, ok)
		}
	}
}

func TestSessionDeleteIdempotent(t *testing.T) {
	repo, _, done := newSessionRepoTest(t)
	defer done()
	ctx := context.Background()

	s, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := repo.Find(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("find after delete = %v, want ErrNotFound", err)
	}
}

func TestSessionExpiresWithTTL(t *testing.T) {
	repo, mr, done := newSessionRepoTest(t)
	defer done()
	ctx := context.Background()

	s, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := repo.Find(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("find after ttl = %v, want ErrNotFound", err)
	}
}
