package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yitocode/members-api/internal/model"
)

// SessionRepo is the Redis implementation of SessionRepository.
// Sessions are stored as JSON blobs under "<prefix>:<id>" with an idle
// TTL that is renewed on every Save, so an untouched session expires
// on its own without a cleanup job.
type SessionRepo struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionRepo builds a SessionRepo.  A non-positive ttl falls back
// to one hour.
func NewSessionRepo(rdb *redis.Client, prefix string, ttl time.Duration) *SessionRepo {
	if prefix == "" {
		prefix = "sess"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepo{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *SessionRepo) key(id string) string { return r.prefix + ":" + id }

// Create allocates a new empty session and persists it.
func (r *SessionRepo) Create(ctx context.Context) (*model.Session, error) {
	now := time.Now().UTC()
	s := &model.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Find loads a session by id.  Missing or expired sessions yield
// ErrNotFound.
func (r *SessionRepo) Find(ctx context.Context, id string) (*model.Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the session back and renews its idle TTL.
func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(s.ID), raw, r.ttl).Err(); err != nil {
		return err
	}
	s.Dirty = false
	return nil
}

// Delete removes a session.  Deleting a missing session is a no-op so
// a double logout never fails.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}
