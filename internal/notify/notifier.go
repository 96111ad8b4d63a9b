// Package notify отправляет уведомления преподавателям в Telegram.
package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Notifier уведомляет преподавателя об изменениях его расписания
type Notifier interface {
	BookingCancelled(ctx context.Context, instructor model.Instructor, b model.Booking, reason string) error
	BookingRescheduled(ctx context.Context, instructor model.Instructor, b model.Booking, e model.RescheduleEntry, reason string) error
	VacationImpact(ctx context.Context, instructor model.Instructor, v model.Vacation) error
	VacationStatusChanged(ctx context.Context, instructor model.Instructor, v model.Vacation) error
}

// MessageSender часть *bot.Bot, нужная для отправки сообщений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier отправляет уведомления через Telegram бота
type TelegramNotifier struct {
	sender MessageSender
	logger *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, logger: logger}
}

func (n *TelegramNotifier) BookingCancelled(ctx context.Context, instructor model.Instructor, b model.Booking, reason string) error {
	return n.send(ctx, instructor, CancelledText(b, reason))
}

func (n *TelegramNotifier) BookingRescheduled(ctx context.Context, instructor model.Instructor, b model.Booking, e model.RescheduleEntry, reason string) error {
	return n.send(ctx, instructor, RescheduledText(b, e, reason))
}

func (n *TelegramNotifier) VacationImpact(ctx context.Context, instructor model.Instructor, v model.Vacation) error {
	return n.send(ctx, instructor, VacationImpactText(v))
}

func (n *TelegramNotifier) VacationStatusChanged(ctx context.Context, instructor model.Instructor, v model.Vacation) error {
	return n.send(ctx, instructor, VacationStatusText(v))
}

func (n *TelegramNotifier) send(ctx context.Context, instructor model.Instructor, text string) error {
	// Преподаватель без чата уведомления не получает
	if instructor.TelegramChatID == nil {
		n.logger.Debug("Instructor has no telegram chat, skipping notification",
			zap.Int64("instructor_id", instructor.ID))
		return nil
	}

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *instructor.TelegramChatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram message to instructor %d: %w", instructor.ID, err)
	}

	n.logger.Info("Notification sent",
		zap.Int64("instructor_id", instructor.ID),
		zap.Int64("chat_id", *instructor.TelegramChatID))
	return nil
}

// Nop ничего не отправляет, используется без TELEGRAM_TOKEN
type Nop struct{}

func (Nop) BookingCancelled(context.Context, model.Instructor, model.Booking, string) error {
	return nil
}

func (Nop) BookingRescheduled(context.Context, model.Instructor, model.Booking, model.RescheduleEntry, string) error {
	return nil
}

func (Nop) VacationImpact(context.Context, model.Instructor, model.Vacation) error {
	return nil
}

func (Nop) VacationStatusChanged(context.Context, model.Instructor, model.Vacation) error {
	return nil
}
