// Package workinghours maintains an instructor's weekly recurring schedule.
//
// Every operation takes a model.WeeklySchedule by value and returns a new one;
// the input is never modified. On failure the returned error names the violated
// invariant and the caller keeps its previous value. Invariants are checked only
// over active slots of the same day:
//   - no two active slots overlap (touching endpoints are allowed)
//   - active slots sum to at most 24 hours
//   - every slot ends strictly after it starts
package workinghours

import (
	"errors"
	"strconv"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/google/uuid"
)

// Field поле слота, которое меняет UpdateSlot
type Field string

const (
	FieldStartTime Field = "startTime"
	FieldEndTime   Field = "endTime"
)

// Load готовит загруженное расписание к редактированию: у каждого слота появляется Key
func Load(ws model.WeeklySchedule) model.WeeklySchedule {
	out := ws.Clone()
	for day, d := range out.Days {
		for i := range d.Slots {
			ensureKey(&d.Slots[i])
		}
		model.SortSlots(d.Slots)
		out.Days[day] = d
	}
	return out
}

// AddSlot добавляет активный слот в день
func AddSlot(ws model.WeeklySchedule, day model.Weekday, slot model.TimeSlot) (model.WeeklySchedule, model.TimeSlot, error) {
	slot.IsActive = true
	ensureKey(&slot)

	current := ws.Day(day)
	if err := checkSlot(current.Slots, slot, ""); err != nil {
		return ws, model.TimeSlot{}, err
	}

	out := ws.Clone()
	slots := append(append([]model.TimeSlot(nil), current.Slots...), slot)
	model.SortSlots(slots)
	out.Days[day] = model.DaySchedule{Day: day, Slots: slots}
	return out, slot, nil
}

// UpdateSlot меняет начало или конец слота с ключом key
// и заново проверяет его против остальных активных слотов дня
func UpdateSlot(ws model.WeeklySchedule, day model.Weekday, key string, field Field, value timeslot.Clock) (model.WeeklySchedule, error) {
	current := ws.Day(day)
	idx := indexOf(current.Slots, key)
	if idx < 0 {
		return ws, apperror.NotFound("time slot", key)
	}

	updated := current.Slots[idx]
	switch field {
	case FieldStartTime:
		updated.StartTime = value
	case FieldEndTime:
		updated.EndTime = value
	default:
		return ws, apperror.Validation("unknown slot field %q", field)
	}

	if err := checkSlot(current.Slots, updated, key); err != nil {
		return ws, err
	}

	return replaceSlot(ws, day, idx, updated), nil
}

// ToggleActive переключает IsActive. Выключить можно всегда,
// включение проходит те же проверки, что и AddSlot.
func ToggleActive(ws model.WeeklySchedule, day model.Weekday, key string) (model.WeeklySchedule, error) {
	current := ws.Day(day)
	idx := indexOf(current.Slots, key)
	if idx < 0 {
		return ws, apperror.NotFound("time slot", key)
	}

	updated := current.Slots[idx]
	updated.IsActive = !updated.IsActive
	if updated.IsActive {
		if err := checkSlot(current.Slots, updated, key); err != nil {
			return ws, err
		}
	}

	return replaceSlot(ws, day, idx, updated), nil
}

// RemoveSlot удаляет слот без проверок и возвращает его:
// по ID вызывающий решает, нужно ли удаление на сервере
func RemoveSlot(ws model.WeeklySchedule, day model.Weekday, key string) (model.WeeklySchedule, model.TimeSlot, error) {
	current := ws.Day(day)
	idx := indexOf(current.Slots, key)
	if idx < 0 {
		return ws, model.TimeSlot{}, apperror.NotFound("time slot", key)
	}

	removed := current.Slots[idx]
	out := ws.Clone()
	slots := append([]model.TimeSlot(nil), current.Slots[:idx]...)
	slots = append(slots, current.Slots[idx+1:]...)
	if len(slots) == 0 {
		delete(out.Days, day)
	} else {
		out.Days[day] = model.DaySchedule{Day: day, Slots: slots}
	}
	return out, removed, nil
}

// Validate проверяет всю неделю целиком, например тело upsert на сервере
func Validate(ws model.WeeklySchedule) error {
	for _, wd := range model.Weekdays {
		var accepted []model.TimeSlot
		for _, s := range ws.Day(wd).Slots {
			if err := checkSlot(accepted, s, ""); err != nil {
				var appErr *apperror.Error
				if errors.As(err, &appErr) {
					return apperror.With(appErr, "%s: %s", wd, appErr.Message)
				}
				return err
			}
			accepted = append(accepted, s)
		}
	}
	return nil
}

// ToPersistencePayload отдаёт дни, где есть хотя бы один слот, начиная с понедельника.
// Время сериализуется с секундами (HH:MM:SS).
func ToPersistencePayload(ws model.WeeklySchedule) model.WorkingHoursPayload {
	payload := model.WorkingHoursPayload{
		TeacherID:      ws.InstructorID,
		WeeklySchedule: []model.WorkingHoursDay{},
	}
	version := ws.Version
	payload.Version = &version
	for _, d := range ws.OrderedDays() {
		slots := make([]model.TimeSlot, len(d.Slots))
		for i, s := range d.Slots {
			slots[i] = model.TimeSlot{ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime, IsActive: s.IsActive}
		}
		payload.WeeklySchedule = append(payload.WeeklySchedule, model.WorkingHoursDay{Day: d.Day, TimeSlots: slots})
	}
	return payload
}

// FromPayload превращает тело upsert в расписание
func FromPayload(p model.WorkingHoursPayload) (model.WeeklySchedule, error) {
	seen := make(map[model.Weekday]bool, len(p.WeeklySchedule))
	slotDays := make(map[int64]model.Weekday)
	days := make([]model.DaySchedule, 0, len(p.WeeklySchedule))
	for _, d := range p.WeeklySchedule {
		day, err := model.ParseWeekday(string(d.Day))
		if err != nil {
			return model.WeeklySchedule{}, apperror.Validation("%s", err.Error())
		}
		if seen[day] {
			return model.WeeklySchedule{}, apperror.Validation("day %s listed twice", day)
		}
		seen[day] = true
		for _, ts := range d.TimeSlots {
			if !ts.IsDurable() {
				continue
			}
			// один сохранённый слот не может оказаться в двух днях
			if prev, ok := slotDays[ts.ID]; ok {
				return model.WeeklySchedule{}, apperror.Validation("time slot %d listed twice (%s and %s)", ts.ID, prev, day)
			}
			slotDays[ts.ID] = day
		}
		days = append(days, model.DaySchedule{Day: day, Slots: d.TimeSlots})
	}

	var version int64
	if p.Version != nil {
		version = *p.Version
	}
	return Load(model.NewWeeklySchedule(p.TeacherID, version, days)), nil
}

// checkSlot проверяет candidate против остальных слотов дня, кроме слота excludeKey.
// Для неактивного слота достаточно корректного диапазона.
func checkSlot(daySlots []model.TimeSlot, candidate model.TimeSlot, excludeKey string) error {
	if !candidate.StartTime.Valid() || !candidate.EndTime.Valid() {
		return apperror.Validation("time must be within 00:00 and 24:00")
	}
	if timeslot.Minutes(candidate.StartTime, candidate.EndTime) <= 0 {
		return apperror.With(apperror.ErrEndBeforeStart, "end time %s must be after start time %s",
			candidate.EndTime.HHMM(), candidate.StartTime.HHMM())
	}
	if !candidate.IsActive {
		return nil
	}

	total := candidate.Seconds()
	for _, other := range daySlots {
		if !other.IsActive || (excludeKey != "" && other.Key == excludeKey) {
			continue
		}
		total += other.Seconds()
	}
	if total > timeslot.SecondsPerDay {
		return apperror.With(apperror.ErrDailyLimitExceeded, "active slots would total %d minutes, limit is %d",
			total/timeslot.SecondsPerMinute, timeslot.MinutesPerDay)
	}

	for _, other := range daySlots {
		if !other.IsActive || (excludeKey != "" && other.Key == excludeKey) {
			continue
		}
		if timeslot.Overlaps(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			return apperror.With(apperror.ErrOverlap, "%s-%s overlaps %s-%s",
				candidate.StartTime.HHMM(), candidate.EndTime.HHMM(), other.StartTime.HHMM(), other.EndTime.HHMM())
		}
	}
	return nil
}

func replaceSlot(ws model.WeeklySchedule, day model.Weekday, idx int, slot model.TimeSlot) model.WeeklySchedule {
	out := ws.Clone()
	slots := out.Days[day].Slots
	slots[idx] = slot
	model.SortSlots(slots)
	out.Days[day] = model.DaySchedule{Day: day, Slots: slots}
	return out
}

func indexOf(slots []model.TimeSlot, key string) int {
	for i, s := range slots {
		if s.Key == key {
			return i
		}
	}
	return -1
}

func ensureKey(s *model.TimeSlot) {
	if s.Key != "" {
		return
	}
	if s.IsDurable() {
		s.Key = strconv.FormatInt(s.ID, 10)
		return
	}
	s.Key = uuid.NewString()
}
