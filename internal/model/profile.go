package model

import "time"

// Profile is the one-to-one public profile attached to an identity,
// stored in the `profiles` table.  SocialMedia is a free-form JSON
// document (links, handles) persisted in a JSON column.
//
// Fields:
//  ID          – primary key identifier.
//  IdentityID  – owning identity (unique; one profile per identity).
//  Picture     – URL of the profile picture.
//  LastName    – last name shown on the profile.
//  SocialMedia – raw JSON document; may be nil.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Profile struct {
	ID          uint64
	IdentityID  uint64
	Picture     string
	LastName    string
	SocialMedia []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
