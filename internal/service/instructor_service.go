package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"go.uber.org/zap"
)

type InstructorService struct {
	instructors InstructorRepository
	logger      *zap.Logger
}

func NewInstructorService(instructors InstructorRepository, logger *zap.Logger) *InstructorService {
	return &InstructorService{
		instructors: instructors,
		logger:      logger,
	}
}

// Create регистрирует преподавателя. telegramChatID = nil отключает уведомления.
func (s *InstructorService) Create(ctx context.Context, name string, telegramChatID *int64) (*model.Instructor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("instructor name is required")
	}

	instructor := &model.Instructor{
		Name:           name,
		TelegramChatID: telegramChatID,
	}
	if err := s.instructors.Create(ctx, instructor); err != nil {
		return nil, err
	}

	s.logger.Info("Instructor created",
		zap.Int64("instructor_id", instructor.ID),
		zap.String("name", instructor.Name),
	)
	return instructor, nil
}

// Get получает преподавателя по ID
func (s *InstructorService) Get(ctx context.Context, id int64) (*model.Instructor, error) {
	instructor, err := s.instructors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil {
		return nil, apperror.NotFound("instructor", id)
	}
	return instructor, nil
}
