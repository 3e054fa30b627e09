package model

import (
	"strings"
	"time"
)

// Role is a coarse capability tier granted to an identity.  The three
// tiers mirror the `roles` SET column in the identities table: every
// account holds at least RoleUser, while RoleCreator and RoleOwner
// unlock elevated profile-management endpoints.
type Role string

const (
	RoleUser    Role = "user"    // baseline role, assigned on signup
	RoleCreator Role = "creator" // may modify profiles
	RoleOwner   Role = "owner"   // full administrative access
)

// RoleSet is the non-empty set of roles held by an identity.  MySQL
// stores it as a SET column, serialized as a comma-separated string.
type RoleSet []Role

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Intersects reports whether the set shares at least one role with
// required.  Authorization uses OR semantics across required roles.
func (s RoleSet) Intersects(required []Role) bool {
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// String serializes the set for the SET column ("user,creator").
func (s RoleSet) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// ParseRoleSet decodes the SET column value back into a RoleSet.  An
// empty value yields an empty set; callers treat that as a data fault.
func ParseRoleSet(raw string) RoleSet {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	set := make(RoleSet, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			set = append(set, Role(p))
		}
	}
	return set
}

// Identity represents a registered account as stored in the
// `identities` table.  Email, nickname and phone number are each
// globally unique; PasswordHash holds the bcrypt digest and is never
// exposed through the API.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address (stored lower-cased).
//  PasswordHash – bcrypt hash of the credential; empty for social-only accounts.
//  PhoneNumber  – unique phone number; may be empty for social signups.
//  Nickname     – unique public handle.
//  Name         – display name.
//  LastName     – optional last name.
//  Roles        – non-empty role set, defaults to {user}.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Identity struct {
	ID           uint64
	Email        string
	PasswordHash string
	PhoneNumber  string
	Nickname     string
	Name         string
	LastName     string
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
