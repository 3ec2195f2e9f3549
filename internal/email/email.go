// Package email delivers portal mail. The Sender interface is the whole
// contract; the auth flow composes messages and does not care whether they
// end up at Postmark or on the console.
package email

import "context"

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers a message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}
