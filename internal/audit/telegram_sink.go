package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageSender is the part of *bot.Bot the sink uses.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramSink posts entries to the moderators chat.
type TelegramSink struct {
	sender  MessageSender
	chatID  int64
	timeout time.Duration
}

func NewTelegramSink(sender MessageSender, chatID int64) *TelegramSink {
	return &TelegramSink{sender: sender, chatID: chatID, timeout: 3 * time.Second}
}

func (s *TelegramSink) Record(ctx context.Context, e model.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.chatID,
		Text:   FormatMessage(e),
	})
	if err != nil {
		return fmt.Errorf("send audit message: %w", err)
	}
	return nil
}

// FormatMessage renders an entry for chat.
func FormatMessage(e model.AuditEntry) string {
	var sb strings.Builder

	switch e.Action {
	case model.AuditActionPromoted:
		sb.WriteString("🎓 Guest promoted")
	case model.AuditActionRoleChanged:
		sb.WriteString("🛡 Role changed")
	case model.AuditActionOnboarded:
		sb.WriteString("👋 Onboarding completed")
	default:
		sb.WriteString("🔄 Status changed")
	}

	fmt.Fprintf(&sb, "\n\nAccount: #%d\nBy: #%d\n%s → %s", e.AccountID, e.ActorID, e.OldValue, e.NewValue)
	if e.Reason != "" {
		fmt.Fprintf(&sb, "\nReason: %s", e.Reason)
	}
	return sb.String()
}
