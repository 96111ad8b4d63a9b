package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InstructorRepository struct {
	*base.Repository
}

func NewInstructorRepository(pool *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{Repository: base.NewRepository(pool)}
}

const instructorColumns = `id, name, telegram_chat_id, working_hours_version, created_at`

// Create создаёт нового преподавателя
func (r *InstructorRepository) Create(ctx context.Context, instructor *model.Instructor) error {
	query := `
		INSERT INTO instructors (name, telegram_chat_id)
		VALUES ($1, $2)
		RETURNING id, working_hours_version, created_at
	`

	err := r.QueryRow(ctx, query, instructor.Name, instructor.TelegramChatID).
		Scan(&instructor.ID, &instructor.WorkingHoursVersion, &instructor.CreatedAt)
	if err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}

	return nil
}

// GetByID получает преподавателя по ID
func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*model.Instructor, error) {
	return r.get(ctx, `SELECT `+instructorColumns+` FROM instructors WHERE id = $1`, id)
}

// GetForUpdate получает преподавателя и блокирует строку до конца транзакции.
// Сериализует запись рабочих часов и переносы занятий к одному преподавателю.
func (r *InstructorRepository) GetForUpdate(ctx context.Context, id int64) (*model.Instructor, error) {
	return r.get(ctx, `SELECT `+instructorColumns+` FROM instructors WHERE id = $1 FOR UPDATE`, id)
}

// BumpWorkingHoursVersion увеличивает версию рабочих часов и возвращает новую
func (r *InstructorRepository) BumpWorkingHoursVersion(ctx context.Context, id int64) (int64, error) {
	var version int64
	err := r.QueryRow(ctx,
		`UPDATE instructors SET working_hours_version = working_hours_version + 1 WHERE id = $1 RETURNING working_hours_version`,
		id,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("bump working hours version: %w", err)
	}
	return version, nil
}

func (r *InstructorRepository) get(ctx context.Context, query string, id int64) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.QueryRow(ctx, query, id).Scan(
		&instructor.ID,
		&instructor.Name,
		&instructor.TelegramChatID,
		&instructor.WorkingHoursVersion,
		&instructor.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get instructor by id: %w", err)
	}

	return &instructor, nil
}
