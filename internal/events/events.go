// Package events publishes scheduling domain events after a change commits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Типы событий совпадают с топиками Kafka
const (
	TypeBookingCreated      = "booking.created"
	TypeBookingCancelled    = "booking.cancelled"
	TypeBookingRescheduled  = "booking.rescheduled"
	TypeBookingCompleted    = "booking.completed"
	TypeVacationImpact      = "vacation.impact_computed"
	TypeVacationStatus      = "vacation.status_changed"
	TypeWorkingHoursUpdated = "working_hours.updated"
)

// Event доменное событие. Key держит события одного агрегата в одной партиции.
type Event struct {
	ID         string          `json:"event_id"`
	Type       string          `json:"event_type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New событие с новым id и payload в JSON
func New(eventType string, aggregateID int64, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        strconv.FormatInt(aggregateID, 10),
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Publisher доставляет события, реализации должны быть потокобезопасны
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Nop выбрасывает события, используется без брокеров
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
func (Nop) Close() error { return nil }
