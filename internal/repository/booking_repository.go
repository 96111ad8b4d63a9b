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

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

const bookingColumns = `
	id, kind, instructor_id, student_id, group_id, date, start_seconds, end_seconds,
	status, cancellation_reason_id, created_at, updated_at
`

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (kind, instructor_id, student_id, group_id, date, start_seconds, end_seconds, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.Kind,
		booking.InstructorID,
		booking.StudentID,
		booking.GroupID,
		booking.Date,
		int(booking.StartTime),
		int(booking.EndTime),
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID вместе с историей переносов
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetForUpdate как GetByID, но блокирует строку до конца транзакции
func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*model.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

// ListActiveByInstructor получает неотменённые бронирования преподавателя в диапазоне дат включительно
func (r *BookingRepository) ListActiveByInstructor(ctx context.Context, instructorID int64, from, to time.Time) ([]model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE instructor_id = $1 AND date BETWEEN $2 AND $3 AND status <> 'cancelled'
		ORDER BY date, start_seconds
	`

	rows, err := r.Query(ctx, query, instructorID, timeslot.Day(from), timeslot.Day(to))
	if err != nil {
		return nil, fmt.Errorf("list bookings by instructor: %w", err)
	}
	defer rows.Close()

	bookings := []model.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus обновляет статус и причину отмены
func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET status = $2, cancellation_reason_id = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, booking.ID, booking.Status, booking.CancellationReasonID).Scan(&booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	return nil
}

// Reschedule переносит бронирование и дописывает запись в историю
func (r *BookingRepository) Reschedule(ctx context.Context, booking *model.Booking, entry *model.RescheduleEntry) error {
	err := r.QueryRow(ctx, `
		UPDATE bookings
		SET instructor_id = $2, date = $3, start_seconds = $4, end_seconds = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,
		booking.ID,
		booking.InstructorID,
		booking.Date,
		int(booking.StartTime),
		int(booking.EndTime),
		booking.Status,
	).Scan(&booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reschedule booking: %w", err)
	}

	err = r.QueryRow(ctx, `
		INSERT INTO booking_reschedules (
			booking_id, date, start_seconds, end_seconds, instructor_id,
			previous_date, previous_start_seconds, previous_end_seconds, previous_instructor_id, reason_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`,
		booking.ID,
		entry.Date,
		int(entry.StartTime),
		int(entry.EndTime),
		entry.InstructorID,
		entry.PreviousDate,
		int(entry.PreviousStartTime),
		int(entry.PreviousEndTime),
		entry.PreviousInstructorID,
		entry.ReasonID,
	).Scan(&entry.ID, &entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append reschedule history: %w", err)
	}

	booking.RescheduleHistory = append(booking.RescheduleHistory, *entry)
	return nil
}

func (r *BookingRepository) get(ctx context.Context, query string, id int64) (*model.Booking, error) {
	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	history, err := r.history(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.RescheduleHistory = history

	return &booking, nil
}

func (r *BookingRepository) history(ctx context.Context, bookingID int64) ([]model.RescheduleEntry, error) {
	query := `
		SELECT id, date, start_seconds, end_seconds, instructor_id,
		       previous_date, previous_start_seconds, previous_end_seconds, previous_instructor_id,
		       reason_id, created_at
		FROM booking_reschedules
		WHERE booking_id = $1
		ORDER BY id
	`

	rows, err := r.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get reschedule history: %w", err)
	}
	defer rows.Close()

	history := []model.RescheduleEntry{}
	for rows.Next() {
		var (
			e                  model.RescheduleEntry
			start, end         int
			prevStart, prevEnd int
		)
		err := rows.Scan(
			&e.ID, &e.Date, &start, &end, &e.InstructorID,
			&e.PreviousDate, &prevStart, &prevEnd, &e.PreviousInstructorID,
			&e.ReasonID, &e.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reschedule entry: %w", err)
		}
		e.StartTime, e.EndTime = timeslot.Clock(start), timeslot.Clock(end)
		e.PreviousStartTime, e.PreviousEndTime = timeslot.Clock(prevStart), timeslot.Clock(prevEnd)
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reschedule history: %w", err)
	}

	return history, nil
}

func scanBooking(row pgx.Row) (model.Booking, error) {
	var (
		b          model.Booking
		start, end int
	)
	err := row.Scan(
		&b.ID,
		&b.Kind,
		&b.InstructorID,
		&b.StudentID,
		&b.GroupID,
		&b.Date,
		&start,
		&end,
		&b.Status,
		&b.CancellationReasonID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	b.StartTime, b.EndTime = timeslot.Clock(start), timeslot.Clock(end)
	return b, nil
}
