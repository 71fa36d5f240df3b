package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink 推送到管理员聊天；token 为空时只记日志
type TelegramSink struct {
	bot    botSender
	chatID int64
	log    *zap.Logger
}

func NewTelegramSink(token string, chatID int64, log *zap.Logger) (*TelegramSink, error) {
	if token == "" {
		log.Warn("telegram bot token is empty, telegram notifications disabled")
		return &TelegramSink{chatID: chatID, log: log}, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSink{bot: bot, chatID: chatID, log: log}, nil
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, m Message) error {
	text := telegramText(m)
	if s.bot == nil || s.chatID == 0 {
		s.log.Debug("telegram notification skipped", zap.String("text", text))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func telegramText(m Message) string {
	who := m.Customer.Name
	if who == "" {
		who = m.Customer.Username
	}
	switch m.Kind {
	case KindNewBooking:
		return fmt.Sprintf("*New booking*\n\nCustomer: %s (%s)\nDate: %s %s-%s\nID: `%s`",
			who, m.Customer.Email, m.Date, m.StartTime, m.EndTime, m.BookingID)
	case KindBookingConfirmed:
		return fmt.Sprintf("*Booking confirmed*\n\nCustomer: %s\nDate: %s %s-%s", who, m.Date, m.StartTime, m.EndTime)
	case KindBookingCancelled:
		return fmt.Sprintf("*Booking cancelled*\n\nCustomer: %s\nDate: %s %s-%s", who, m.Date, m.StartTime, m.EndTime)
	case KindWelcome:
		return fmt.Sprintf("*New user registered*\n\n%s (%s)", who, m.Customer.Email)
	default:
		return fmt.Sprintf("*%s*", m.Kind)
	}
}
