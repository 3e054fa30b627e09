package model

import "time"

// Session is a server-side authenticated interaction, persisted in
// Redis and referenced by the `sid` cookie.  Values carries arbitrary
// key/value data; keys listed in Flash are cleared on first read
// (one-shot messages shown once to the client).
//
// Fields:
//  ID         – opaque session identifier handed to the client.
//  IdentityID – owning identity; zero until SetUser assigns one.
//  Values     – arbitrary string key/value bag.
//  Flash      – keys in Values that are consumed on next read.
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last write.
//  Dirty      – in-memory state diverged from the store and must be
//               written back before the request finishes.
type Session struct {
	ID         string            `json:"id"`
	IdentityID uint64            `json:"identity_id"`
	Values     map[string]string `json:"values,omitempty"`
	Flash      map[string]bool   `json:"flash,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Dirty      bool              `json:"-"`
}

// Set stores a value in the session bag.  When flash is true the key
// is cleared the next time it is read.
func (s *Session) Set(key, value string, flash bool) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	s.Values[key] = value
	if flash {
		if s.Flash == nil {
			s.Flash = make(map[string]bool)
		}
		s.Flash[key] = true
	} else {
		delete(s.Flash, key)
	}
	s.UpdatedAt = time.Now().UTC()
	s.Dirty = true
}

// Get returns the value for key and clears it when it was stored as a
// flash value.  The second return reports whether the key was present.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	if !ok {
		return "", false
	}
	if s.Flash[key] {
		delete(s.Values, key)
		delete(s.Flash, key)
		s.UpdatedAt = time.Now().UTC()
		s.Dirty = true
	}
	return v, true
}
