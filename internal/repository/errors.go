// Package repository defines persistence interfaces for the service
// and their MySQL/Redis implementations.  Sentinel errors let handlers
// distinguish failure scenarios without inspecting driver errors: a
// duplicate identity becomes a domain-level rejection on signup,
// ErrNotFound becomes a 404 on CRUD endpoints.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateIdentity is returned when an insert collides with the
// unique email, nickname or phone number of an existing identity.
var ErrDuplicateIdentity = errors.New("identity already exists")

// ErrProfileExists is returned when an identity already has a profile.
var ErrProfileExists = errors.New("profile already exists")
