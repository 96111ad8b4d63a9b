package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CancellationReasonRepository struct {
	*base.Repository
}

func NewCancellationReasonRepository(pool *pgxpool.Pool) *CancellationReasonRepository {
	return &CancellationReasonRepository{Repository: base.NewRepository(pool)}
}

// GetByID получает причину по ID
func (r *CancellationReasonRepository) GetByID(ctx context.Context, id int64) (*model.CancellationReason, error) {
	var reason model.CancellationReason
	err := r.QueryRow(ctx, `SELECT id, title, is_active FROM cancellation_reasons WHERE id = $1`, id).
		Scan(&reason.ID, &reason.Title, &reason.IsActive)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cancellation reason: %w", err)
	}
	return &reason, nil
}

// ListActive получает все активные причины
func (r *CancellationReasonRepository) ListActive(ctx context.Context) ([]model.CancellationReason, error) {
	rows, err := r.Query(ctx, `SELECT id, title, is_active FROM cancellation_reasons WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cancellation reasons: %w", err)
	}
	defer rows.Close()

	reasons := []model.CancellationReason{}
	for rows.Next() {
		var reason model.CancellationReason
		if err := rows.Scan(&reason.ID, &reason.Title, &reason.IsActive); err != nil {
			return nil, fmt.Errorf("scan cancellation reason: %w", err)
		}
		reasons = append(reasons, reason)
	}
	return reasons, rows.Err()
}

// prefixed добавляет алиас таблицы к списку колонок
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
