package email

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkSender sends transactional mail through Postmark.
type PostmarkSender struct {
	client    *postmark.Client
	fromEmail string
}

func NewPostmarkSender(serverToken, fromEmail string) *PostmarkSender {
	return &PostmarkSender{
		client:    postmark.NewClient(serverToken, ""),
		fromEmail: fromEmail,
	}
}

func (s *PostmarkSender) Send(ctx context.Context, msg Message) (string, error) {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:          s.fromEmail,
		To:            msg.To,
		Subject:       msg.Subject,
		HTMLBody:      msg.HTMLBody,
		TextBody:      msg.TextBody,
		MessageStream: "outbound",
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	if resp.ErrorCode > 0 {
		return "", fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)
	}
	return resp.MessageID, nil
}
