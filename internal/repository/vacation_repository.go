package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/repository/base"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VacationRepository struct {
	*base.Repository
}

func NewVacationRepository(pool *pgxpool.Pool) *VacationRepository {
	return &VacationRepository{Repository: base.NewRepository(pool)}
}

const vacationColumns = `id, instructor_id, start_date, end_date, reason, status, created_at, updated_at`

// Create создаёт заявку на отпуск
func (r *VacationRepository) Create(ctx context.Context, v *model.Vacation) error {
	query := `
		INSERT INTO vacations (instructor_id, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query, v.InstructorID, v.StartDate, v.EndDate, v.Reason, v.Status).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create vacation: %w", err)
	}

	return nil
}

// GetByID получает отпуск вместе со снимком затронутых занятий
func (r *VacationRepository) GetByID(ctx context.Context, id int64) (*model.Vacation, error) {
	return r.get(ctx, `SELECT `+vacationColumns+` FROM vacations WHERE id = $1`, id)
}

// GetForUpdate как GetByID, но блокирует строку до конца транзакции
func (r *VacationRepository) GetForUpdate(ctx context.Context, id int64) (*model.Vacation, error) {
	return r.get(ctx, `SELECT `+vacationColumns+` FROM vacations WHERE id = $1 FOR UPDATE`, id)
}

// ListByInstructor получает все отпуска преподавателя, новые первыми
func (r *VacationRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]model.Vacation, error) {
	query := `SELECT ` + vacationColumns + ` FROM vacations WHERE instructor_id = $1 ORDER BY start_date DESC, id DESC`

	vacations, err := r.list(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list vacations by instructor: %w", err)
	}

	for i := range vacations {
		impacted, err := r.impacted(ctx, vacations[i].ID)
		if err != nil {
			return nil, err
		}
		vacations[i].ImpactedClasses = impacted
	}
	return vacations, nil
}

// ListApprovedOverlapping получает одобренные отпуска, пересекающие диапазон дат
func (r *VacationRepository) ListApprovedOverlapping(ctx context.Context, instructorID int64, from, to time.Time) ([]model.Vacation, error) {
	query := `
		SELECT ` + vacationColumns + `
		FROM vacations
		WHERE instructor_id = $1 AND status = 'approved' AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date
	`

	vacations, err := r.list(ctx, query, instructorID, timeslot.Day(from), timeslot.Day(to))
	if err != nil {
		return nil, fmt.Errorf("list approved vacations: %w", err)
	}
	return vacations, nil
}

// Update обновляет даты и причину
func (r *VacationRepository) Update(ctx context.Context, v *model.Vacation) error {
	query := `
		UPDATE vacations
		SET start_date = $2, end_date = $3, reason = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, v.ID, v.StartDate, v.EndDate, v.Reason).Scan(&v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update vacation: %w", err)
	}
	return nil
}

// UpdateStatus обновляет статус заявки
func (r *VacationRepository) UpdateStatus(ctx context.Context, v *model.Vacation) error {
	err := r.QueryRow(ctx,
		`UPDATE vacations SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		v.ID, v.Status,
	).Scan(&v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update vacation status: %w", err)
	}
	return nil
}

// Delete удаляет отпуск
func (r *VacationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM vacations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete vacation: %w", err)
	}
	return affected > 0, nil
}

// ReplaceImpacted перезаписывает снимок затронутых занятий
func (r *VacationRepository) ReplaceImpacted(ctx context.Context, vacationID int64, bookingIDs []int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM vacation_impacted_bookings WHERE vacation_id = $1`, vacationID); err != nil {
		return fmt.Errorf("clear impacted bookings: %w", err)
	}
	if len(bookingIDs) == 0 {
		return nil
	}

	_, err := r.ExecAffected(ctx, `
		INSERT INTO vacation_impacted_bookings (vacation_id, booking_id)
		SELECT $1, unnest($2::bigint[])
	`, vacationID, bookingIDs)
	if err != nil {
		return fmt.Errorf("store impacted bookings: %w", err)
	}
	return nil
}

func (r *VacationRepository) get(ctx context.Context, query string, id int64) (*model.Vacation, error) {
	v, err := scanVacation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vacation by id: %w", err)
	}

	impacted, err := r.impacted(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.ImpactedClasses = impacted
	return &v, nil
}

func (r *VacationRepository) list(ctx context.Context, query string, args ...any) ([]model.Vacation, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vacations := []model.Vacation{}
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vacation: %w", err)
		}
		vacations = append(vacations, v)
	}
	return vacations, rows.Err()
}

func (r *VacationRepository) impacted(ctx context.Context, vacationID int64) ([]model.Booking, error) {
	query := `
		SELECT ` + prefixed("b", bookingColumns) + `
		FROM vacation_impacted_bookings vib
		JOIN bookings b ON b.id = vib.booking_id
		WHERE vib.vacation_id = $1
		ORDER BY b.date, b.start_seconds
	`

	rows, err := r.Query(ctx, query, vacationID)
	if err != nil {
		return nil, fmt.Errorf("get impacted bookings: %w", err)
	}
	defer rows.Close()

	bookings := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan impacted booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate impacted bookings: %w", err)
	}
	return bookings, nil
}

func scanVacation(row pgx.Row) (model.Vacation, error) {
	var v model.Vacation
	err := row.Scan(&v.ID, &v.InstructorID, &v.StartDate, &v.EndDate, &v.Reason, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}
