// Package mailer delivers welcome mail over SMTP.  Delivery runs in
// the queue consumer, outside the request path; failures are logged
// there and never reach the signup response.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/yitocode/members-api/internal/queue"
)

// Mailer sends mail through a plain SMTP relay (e.g. a local MailHog
// or the provider's submission endpoint).
type Mailer struct {
	addr string // host:port of the relay
	from string // From address
}

func New(addr, from string) *Mailer {
	return &Mailer{addr: addr, from: from}
}

// SendWelcome delivers the welcome message for a signup event.
func (m *Mailer) SendWelcome(ev queue.WelcomeEmailEvent) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Welcome!\r\n\r\nHi %s! It is a pleasure to have you with us.\r\n",
		m.from, ev.Email, ev.Nickname)
	return smtp.SendMail(m.addr, nil, m.from, []string{ev.Email}, []byte(msg))
}
