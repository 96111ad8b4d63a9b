package timeslot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	SecondsPerMinute = 60
	SecondsPerDay    = 24 * 60 * 60
	MinutesPerDay    = 24 * 60

	// EndOfDay 24:00:00, допустимо только как конец интервала
	EndOfDay Clock = SecondsPerDay
)

// Clock время суток в секундах от полуночи
type Clock int

// ParseClock принимает "HH:MM" и "HH:MM:SS". "24:00" означает конец суток.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}

	values := make([]int, 3)
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		values[i] = n
	}

	h, m, sec := values[0], values[1], values[2]
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if h > 24 || (h == 24 && (m != 0 || sec != 0)) {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}

	return Clock(h*3600 + m*60 + sec), nil
}

// MustParseClock паникует на ошибке, для констант и тестов
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromMinutes время по числу минут от полуночи
func FromMinutes(m int) Clock {
	return Clock(m * SecondsPerMinute)
}

func (c Clock) Hour() int { return int(c) / 3600 }

func (c Clock) Minute() int { return int(c) % 3600 / 60 }

func (c Clock) Second() int { return int(c) % 60 }

// Minutes возвращает hour*60+minute, секунды отбрасываются
func (c Clock) Minutes() int { return c.Hour()*60 + c.Minute() }

// Valid проверяет, что время в пределах [00:00:00, 24:00:00]
func (c Clock) Valid() bool { return c >= 0 && c <= EndOfDay }

// String формат HH:MM:SS, как в API
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

func (c Clock) HHMM() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On момент времени c в календарную дату day, в её часовом поясе
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Add(time.Duration(c) * time.Second)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
