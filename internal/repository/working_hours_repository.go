package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/repository/base"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// StoredSlot слот рабочих часов вместе с владельцем и днём недели
type StoredSlot struct {
	model.TimeSlot
	InstructorID int64
	Day          model.Weekday
}

// WorkingHoursRepository управляет рабочими часами преподавателей в базе данных
type WorkingHoursRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewWorkingHoursRepository создаёт новый репозиторий
func NewWorkingHoursRepository(pool *pgxpool.Pool, logger *zap.Logger) *WorkingHoursRepository {
	return &WorkingHoursRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// GetByInstructorID получает все слоты преподавателя, сгруппированные по дням
func (r *WorkingHoursRepository) GetByInstructorID(ctx context.Context, instructorID int64) ([]model.DaySchedule, error) {
	query := `
		SELECT id, instructor_id, weekday, start_seconds, end_seconds, is_active
		FROM working_hours
		WHERE instructor_id = $1
		ORDER BY weekday, start_seconds
	`

	rows, err := r.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get working hours by instructor: %w", err)
	}
	defer rows.Close()

	byDay := make(map[model.Weekday][]model.TimeSlot)
	for rows.Next() {
		slot, err := scanStoredSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan working hours: %w", err)
		}
		byDay[slot.Day] = append(byDay[slot.Day], slot.TimeSlot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate working hours: %w", err)
	}

	days := make([]model.DaySchedule, 0, len(byDay))
	for _, wd := range model.Weekdays {
		if slots, ok := byDay[wd]; ok {
			days = append(days, model.DaySchedule{Day: wd, Slots: slots})
		}
	}
	return days, nil
}

// GetSlotByID получает слот по ID
func (r *WorkingHoursRepository) GetSlotByID(ctx context.Context, id int64) (*StoredSlot, error) {
	query := `
		SELECT id, instructor_id, weekday, start_seconds, end_seconds, is_active
		FROM working_hours
		WHERE id = $1
	`

	slot, err := scanStoredSlot(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get working hours slot by id: %w", err)
	}
	return &slot, nil
}

// ReplaceWeek заменяет неделю целиком: слоты с ID обновляются, без ID создаются,
// отсутствующие в новой неделе удаляются. Должен вызываться внутри транзакции.
func (r *WorkingHoursRepository) ReplaceWeek(ctx context.Context, ws model.WeeklySchedule) error {
	keep := make([]int64, 0)

	for _, day := range ws.OrderedDays() {
		weekday := int16(day.Day.TimeWeekday())
		for _, slot := range day.Slots {
			if slot.IsDurable() {
				affected, err := r.ExecAffected(ctx, `
					UPDATE working_hours
					SET weekday = $3, start_seconds = $4, end_seconds = $5, is_active = $6, updated_at = NOW()
					WHERE id = $1 AND instructor_id = $2
				`, slot.ID, ws.InstructorID, weekday, int(slot.StartTime), int(slot.EndTime), slot.IsActive)
				if err != nil {
					return fmt.Errorf("update working hours slot: %w", err)
				}
				if affected == 0 {
					return apperror.NotFound("time slot", slot.ID)
				}
				keep = append(keep, slot.ID)
				continue
			}

			var id int64
			err := r.QueryRow(ctx, `
				INSERT INTO working_hours (instructor_id, weekday, start_seconds, end_seconds, is_active)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
			`, ws.InstructorID, weekday, int(slot.StartTime), int(slot.EndTime), slot.IsActive).Scan(&id)
			if err != nil {
				return fmt.Errorf("create working hours slot: %w", err)
			}
			keep = append(keep, id)
		}
	}

	deleted, err := r.ExecAffected(ctx,
		`DELETE FROM working_hours WHERE instructor_id = $1 AND NOT (id = ANY($2))`,
		ws.InstructorID, keep)
	if err != nil {
		return fmt.Errorf("delete stale working hours: %w", err)
	}

	r.logger.Debug("Working hours replaced",
		zap.Int64("instructor_id", ws.InstructorID),
		zap.Int("kept", len(keep)),
		zap.Int64("deleted", deleted),
	)
	return nil
}

// Delete удаляет слот
func (r *WorkingHoursRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM working_hours WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete working hours slot: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("time slot", id)
	}
	return nil
}

func scanStoredSlot(row pgx.Row) (StoredSlot, error) {
	var (
		slot       StoredSlot
		weekday    int16
		start, end int
	)
	err := row.Scan(&slot.ID, &slot.InstructorID, &weekday, &start, &end, &slot.IsActive)
	if err != nil {
		return StoredSlot{}, err
	}
	slot.Day = model.FromTimeWeekday(time.Weekday(weekday))
	slot.StartTime = timeslot.Clock(start)
	slot.EndTime = timeslot.Clock(end)
	return slot, nil
}
