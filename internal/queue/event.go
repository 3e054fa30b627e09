// Package queue defines the message payloads exchanged over the
// broker and the publisher/consumer for the welcome-mail queue.
package queue

// WelcomeQueueName is the durable queue carrying welcome-mail events.
const WelcomeQueueName = "mail.welcome"

// WelcomeEmailEvent is published after a successful signup.  It
// carries everything the mail consumer needs so delivery never has to
// query the primary database.
type WelcomeEmailEvent struct {
	IdentityID uint64 `json:"identity_id"`
	Email      string `json:"email"`
	Nickname   string `json:"nickname"`
	SignedUpAt string `json:"signed_up_at"`
}
