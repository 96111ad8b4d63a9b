package client

import (
	"context"
	"errors"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/Freeeeeet/instructor_scheduler/internal/workinghours"
)

// ErrNotLoaded операции ScheduleEditor до Load
var ErrNotLoaded = errors.New("working hours are not loaded")

// WorkingHoursAPI часть Client, нужная ScheduleEditor
type WorkingHoursAPI interface {
	WorkingHours(ctx context.Context, instructorID int64) (model.WeeklySchedule, error)
	SaveWorkingHours(ctx context.Context, payload model.WorkingHoursPayload) (model.WeeklySchedule, error)
	DeleteWorkingHoursSlot(ctx context.Context, slotID int64, version *int64) (int64, error)
}

// ScheduleEditor копит правки рабочих часов одного преподавателя
// и сохраняет их одним upsert. Каждая правка проверяется сразу,
// отклонённая не меняет буфер и ничего не отправляет.
type ScheduleEditor struct {
	api          WorkingHoursAPI
	instructorID int64
	schedule     model.WeeklySchedule
	loaded       bool
}

func NewScheduleEditor(api WorkingHoursAPI, instructorID int64) *ScheduleEditor {
	return &ScheduleEditor{api: api, instructorID: instructorID}
}

// Load загружает расписание, несохранённые правки теряются
func (e *ScheduleEditor) Load(ctx context.Context) error {
	ws, err := e.api.WorkingHours(ctx, e.instructorID)
	if err != nil {
		return err
	}
	e.schedule = workinghours.Load(ws)
	e.loaded = true
	return nil
}

// Reload это Load после конфликта: серверная копия заменяет локальные правки
func (e *ScheduleEditor) Reload(ctx context.Context) error {
	return e.Load(ctx)
}

// Schedule копия буфера
func (e *ScheduleEditor) Schedule() model.WeeklySchedule {
	return e.schedule.Clone()
}

func (e *ScheduleEditor) AddSlot(day model.Weekday, start, end timeslot.Clock) (model.TimeSlot, error) {
	if !e.loaded {
		return model.TimeSlot{}, ErrNotLoaded
	}
	ws, slot, err := workinghours.AddSlot(e.schedule, day, model.TimeSlot{StartTime: start, EndTime: end})
	if err != nil {
		return model.TimeSlot{}, err
	}
	e.schedule = ws
	return slot, nil
}

func (e *ScheduleEditor) UpdateSlot(day model.Weekday, key string, field workinghours.Field, value timeslot.Clock) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	ws, err := workinghours.UpdateSlot(e.schedule, day, key, field, value)
	if err != nil {
		return err
	}
	e.schedule = ws
	return nil
}

func (e *ScheduleEditor) ToggleActive(day model.Weekday, key string) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	ws, err := workinghours.ToggleActive(e.schedule, day, key)
	if err != nil {
		return err
	}
	e.schedule = ws
	return nil
}

// RemoveSlot сначала удаляет сохранённый слот на сервере, несохранённый
// просто убирается из буфера. Удаление несёт загруженную версию,
// новая версия принимается, только если идёт сразу за ней.
func (e *ScheduleEditor) RemoveSlot(ctx context.Context, day model.Weekday, key string) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	ws, removed, err := workinghours.RemoveSlot(e.schedule, day, key)
	if err != nil {
		return err
	}
	if removed.IsDurable() {
		loaded := e.schedule.Version
		version, err := e.api.DeleteWorkingHoursSlot(ctx, removed.ID, &loaded)
		if err != nil {
			return err
		}
		if version == loaded+1 {
			ws.Version = version
		}
	}
	e.schedule = ws
	return nil
}

// Save сохраняет всю неделю с загруженной версией.
// При конфликте буфер остаётся, вызывающий делает Reload.
func (e *ScheduleEditor) Save(ctx context.Context) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	saved, err := e.api.SaveWorkingHours(ctx, workinghours.ToPersistencePayload(e.schedule))
	if err != nil {
		return err
	}
	e.schedule = workinghours.Load(saved)
	return nil
}
