package service

import (
	"context"

	"github.com/Freeeeeet/instructor_scheduler/internal/cache"
	"github.com/Freeeeeet/instructor_scheduler/internal/events"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/notify"
	"go.uber.org/zap"
)

// Effects побочные эффекты после коммита: сброс кэша, события, уведомления.
// Закоммиченное состояние главнее, поэтому ошибки только логируются.
type Effects struct {
	Cache     cache.Availability
	Publisher events.Publisher
	Notifier  notify.Notifier
	Logger    *zap.Logger
}

// NewEffects создаёт Effects, подставляя Nop вместо пустых зависимостей
func NewEffects(c cache.Availability, p events.Publisher, n notify.Notifier, logger *zap.Logger) Effects {
	if c == nil {
		c = cache.Nop{}
	}
	if p == nil {
		p = events.Nop{}
	}
	if n == nil {
		n = notify.Nop{}
	}
	return Effects{Cache: c, Publisher: p, Notifier: n, Logger: logger}
}

func (e Effects) invalidate(ctx context.Context, instructorIDs ...int64) {
	seen := make(map[int64]bool, len(instructorIDs))
	for _, id := range instructorIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := e.Cache.Invalidate(ctx, id); err != nil {
			e.Logger.Warn("Failed to invalidate availability cache",
				zap.Int64("instructor_id", id),
				zap.Error(err))
		}
	}
}

func (e Effects) publish(ctx context.Context, eventType string, aggregateID int64, payload any) {
	event, err := events.New(eventType, aggregateID, payload)
	if err == nil {
		err = e.Publisher.Publish(ctx, event)
	}
	if err != nil {
		e.Logger.Error("Failed to publish event",
			zap.String("event_type", eventType),
			zap.Int64("aggregate_id", aggregateID),
			zap.Error(err))
	}
}

func (e Effects) notify(instructor *model.Instructor, send func(model.Instructor) error) {
	if instructor == nil {
		return
	}
	if err := send(*instructor); err != nil {
		e.Logger.Warn("Failed to notify instructor",
			zap.Int64("instructor_id", instructor.ID),
			zap.Error(err))
	}
}
