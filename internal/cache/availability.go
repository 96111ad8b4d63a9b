// Package cache stores generated availability in Redis.
//
// Entries are never deleted on write. Each instructor has a generation counter
// that is part of every key; Invalidate bumps it, so stale entries stop being
// addressed and expire by TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/redis/go-redis/v9"
)

// Key идентифицирует один запрос доступности за диапазон дат
type Key struct {
	InstructorID          int64
	StartDate             time.Time
	EndDate               time.Time
	SlotDurationMinutes   int
	TimezoneOffsetMinutes int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d:%d",
		timeslot.FormatDate(k.StartDate), timeslot.FormatDate(k.EndDate), k.SlotDurationMinutes, k.TimezoneOffsetMinutes)
}

// Entry результат чтения кэша. Generation поколение преподавателя на момент чтения,
// его нужно передать обратно в Set.
type Entry struct {
	Days       []model.DayAvailability
	Hit        bool
	Generation int64
}

// Availability кэш, которым пользуется сервисный слой
type Availability interface {
	Get(ctx context.Context, key Key) (Entry, error)
	Set(ctx context.Context, key Key, generation int64, days []model.DayAvailability) error
	Invalidate(ctx context.Context, instructorID int64) error
}

type RedisAvailability struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedisAvailability(rdb redis.UniversalClient, ttl time.Duration) *RedisAvailability {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisAvailability{rdb: rdb, ttl: ttl, prefix: "availability"}
}

func (c *RedisAvailability) Get(ctx context.Context, key Key) (Entry, error) {
	gen, err := c.generation(ctx, key.InstructorID)
	if err != nil {
		return Entry{}, err
	}

	raw, err := c.rdb.Get(ctx, c.entryKey(key, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{Generation: gen}, nil
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get cached availability: %w", err)
	}

	days, err := Decode(raw)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Days: days, Hit: true, Generation: gen}, nil
}

// Set сохраняет дни под поколением, полученным из Get. Если между ними был Invalidate,
// запись ляжет под старое поколение, которое уже никто не читает.
func (c *RedisAvailability) Set(ctx context.Context, key Key, generation int64, days []model.DayAvailability) error {
	raw, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("marshal availability: %w", err)
	}
	if err := c.rdb.Set(ctx, c.entryKey(key, generation), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached availability: %w", err)
	}
	return nil
}

func (c *RedisAvailability) Invalidate(ctx context.Context, instructorID int64) error {
	if err := c.rdb.Incr(ctx, c.generationKey(instructorID)).Err(); err != nil {
		return fmt.Errorf("bump availability generation: %w", err)
	}
	return nil
}

func (c *RedisAvailability) generation(ctx context.Context, instructorID int64) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey(instructorID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get availability generation: %w", err)
	}
	return gen, nil
}

func (c *RedisAvailability) generationKey(instructorID int64) string {
	return fmt.Sprintf("%s:gen:%d", c.prefix, instructorID)
}

func (c *RedisAvailability) entryKey(key Key, gen int64) string {
	return fmt.Sprintf("%s:%d:%d:%s", c.prefix, key.InstructorID, gen, key)
}

// Decode разбирает запись кэша. Даты слотов не сериализуются и берутся из дня.
func Decode(raw []byte) ([]model.DayAvailability, error) {
	var days []model.DayAvailability
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("decode cached availability: %w", err)
	}
	for i := range days {
		if days[i].TimeSlots == nil {
			days[i].TimeSlots = []model.AvailabilitySlot{}
		}
		for j := range days[i].TimeSlots {
			days[i].TimeSlots[j].Date = days[i].Date
		}
	}
	return days, nil
}

// Nop никогда не попадает, используется без Redis
type Nop struct{}

func (Nop) Get(context.Context, Key) (Entry, error) { return Entry{}, nil }
func (Nop) Set(context.Context, Key, int64, []model.DayAvailability) error { return nil }
func (Nop) Invalidate(context.Context, int64) error { return nil }
