package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/runeberget/krets/internal/email"
	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/store"
)

// MagicLinkManager issues and consumes single-use login links.
type MagicLinkManager struct {
	users   *store.UserStore
	links   *store.MagicLinkStore
	sender  email.Sender
	baseURL string
	logger  *slog.Logger
}

func NewMagicLinkManager(
	us *store.UserStore,
	ls *store.MagicLinkStore,
	sender email.Sender,
	baseURL string,
	logger *slog.Logger,
) *MagicLinkManager {
	return &MagicLinkManager{
		users:   us,
		links:   ls,
		sender:  sender,
		baseURL: baseURL,
		logger:  logger,
	}
}

// CreateMagicLink inserts a fresh link for the user.
func (m *MagicLinkManager) CreateMagicLink(userID string) (*model.MagicLink, error) {
	ml, err := m.links.Create(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ml, nil
}

// LinkURL builds the URL that ends up in the email.
func (m *MagicLinkManager) LinkURL(token string) string {
	return fmt.Sprintf("%s/magic-link?token=%s", m.baseURL, token)
}

// SendMagicLink looks up the member by email, creates a link, and mails it.
// A delivery failure does not remove the already-created link row; the user
// can retry and the stale link ages out through the cleanup sweep.
func (m *MagicLinkManager) SendMagicLink(ctx context.Context, emailAddr string) error {
	user, err := m.users.GetByEmail(emailAddr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	ml, err := m.CreateMagicLink(user.ID)
	if err != nil {
		return err
	}

	url := m.LinkURL(ml.ID)
	msg := email.Message{
		To:      user.Email,
		Subject: "Sign in to the member portal",
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nClick this link to sign in:\n%s\n\nThe link expires in 24 hours and can only be used once.\n",
			user.Name, url,
		),
		HTMLBody: fmt.Sprintf(
			`<p>Hi %s,</p><p>Click this link to sign in:</p><p><a href="%s">%s</a></p><p>The link expires in 24 hours and can only be used once.</p>`,
			user.Name, url, url,
		),
	}

	messageID, err := m.sender.Send(ctx, msg)
	if err != nil {
		m.logger.Error("magic link delivery", "error", err, "to", user.Email)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	m.logger.Info("magic link sent", "user_id", user.ID, "message_id", messageID)
	return nil
}

// ValidateMagicLink consumes the token and returns the owning user ID.
// Consumption is atomic: of concurrent calls with the same token, exactly
// one succeeds and the rest see ErrLinkNotFound. An expired token returns
// ErrLinkExpired and stays in place for the cleanup sweep.
func (m *MagicLinkManager) ValidateMagicLink(token string) (string, error) {
	ml, err := m.links.Consume(token, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ml != nil {
		return ml.UserID, nil
	}

	// Nothing was consumed: the token is either expired or gone.
	existing, err := m.links.GetByID(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		return "", ErrLinkExpired
	}
	return "", ErrLinkNotFound
}

// CleanupExpired removes expired links. Idempotent; run periodically.
func (m *MagicLinkManager) CleanupExpired() (int64, error) {
	count, err := m.links.DeleteExpired()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if count > 0 {
		m.logger.Info("expired magic links swept", "count", count)
	}
	return count, nil
}
