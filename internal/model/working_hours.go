package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

// Weekday английское название дня недели, как в API
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays неделя с понедельника
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday принимает любой регистр
func ParseWeekday(s string) (Weekday, error) {
	for _, d := range Weekdays {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// WeekdayOf день недели календарной даты
func WeekdayOf(t time.Time) Weekday {
	return FromTimeWeekday(t.Weekday())
}

// FromTimeWeekday из time.Weekday (0 = воскресенье)
func FromTimeWeekday(wd time.Weekday) Weekday {
	return Weekday(wd.String())
}

// TimeWeekday обратно в time.Weekday, так день хранится в базе
func (d Weekday) TimeWeekday() time.Weekday {
	for i := time.Sunday; i <= time.Saturday; i++ {
		if i.String() == string(d) {
			return i
		}
	}
	return time.Sunday
}

// TimeSlot интервал рабочих часов [StartTime, EndTime) в день недели
type TimeSlot struct {
	// ID постоянный идентификатор, ноль до сохранения
	ID        int64          `json:"id,omitempty"`
	StartTime timeslot.Clock `json:"startTime"`
	EndTime   timeslot.Clock `json:"endTime"`
	IsActive  bool           `json:"isActive"`

	// Key адресует слот при локальном редактировании, сохранён он или нет
	Key string `json:"-"`
}

// IsDurable слот уже есть на сервере
func (s TimeSlot) IsDurable() bool { return s.ID != 0 }

// Seconds длина слота в секундах
func (s TimeSlot) Seconds() int { return int(s.EndTime - s.StartTime) }

// DaySchedule слоты одного дня недели по времени начала
type DaySchedule struct {
	Day   Weekday    `json:"day"`
	Slots []TimeSlot `json:"timeSlots"`
}

// ActiveSlots только слоты, которые дают рабочее время
func (d DaySchedule) ActiveSlots() []TimeSlot {
	var active []TimeSlot
	for _, s := range d.Slots {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active
}

// WeeklySchedule повторяющийся недельный шаблон рабочих часов преподавателя.
// Значения не изменяются, правки идут через пакет workinghours.
type WeeklySchedule struct {
	InstructorID int64
	Version      int64
	Days         map[Weekday]DaySchedule
}

// NewWeeklySchedule расписание из дней, слоты сортируются по началу
func NewWeeklySchedule(instructorID, version int64, days []DaySchedule) WeeklySchedule {
	ws := WeeklySchedule{
		InstructorID: instructorID,
		Version:      version,
		Days:         make(map[Weekday]DaySchedule, len(days)),
	}
	for _, d := range days {
		slots := append([]TimeSlot(nil), d.Slots...)
		SortSlots(slots)
		ws.Days[d.Day] = DaySchedule{Day: d.Day, Slots: slots}
	}
	return ws
}

// Day расписание дня недели, отсутствующий день пустой
func (w WeeklySchedule) Day(day Weekday) DaySchedule {
	if d, ok := w.Days[day]; ok {
		return d
	}
	return DaySchedule{Day: day}
}

// OrderedDays непустые дни с понедельника по воскресенье
func (w WeeklySchedule) OrderedDays() []DaySchedule {
	var days []DaySchedule
	for _, wd := range Weekdays {
		if d, ok := w.Days[wd]; ok && len(d.Slots) > 0 {
			days = append(days, d)
		}
	}
	return days
}

// Clone глубокая копия
func (w WeeklySchedule) Clone() WeeklySchedule {
	clone := WeeklySchedule{
		InstructorID: w.InstructorID,
		Version:      w.Version,
		Days:         make(map[Weekday]DaySchedule, len(w.Days)),
	}
	for k, d := range w.Days {
		clone.Days[k] = DaySchedule{Day: d.Day, Slots: append([]TimeSlot(nil), d.Slots...)}
	}
	return clone
}

// SortSlots по началу, затем по концу
func SortSlots(slots []TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime == slots[j].StartTime {
			return slots[i].EndTime < slots[j].EndTime
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

// WorkingHoursDay один день в теле upsert
type WorkingHoursDay struct {
	Day       Weekday    `json:"day"`
	TimeSlots []TimeSlot `json:"timeSlots"`
}

// WorkingHoursPayload тело PUT working_hours
type WorkingHoursPayload struct {
	TeacherID      int64             `json:"teacher_id"`
	Version        *int64            `json:"version,omitempty"`
	WeeklySchedule []WorkingHoursDay `json:"weeklySchedule"`
}
