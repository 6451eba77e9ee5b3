package app

import (
	"context"
	"errors"

	"safenest/internal/domain/entity"
)

var (
	ErrNoActiveInspection = errors.New("no inspection in progress")
	ErrNoImages           = errors.New("no images to inspect")
	ErrNoReport           = errors.New("no report yet")
	ErrInspectionRunning  = errors.New("inspection is already running")
)

// InspectionBatch фото и заметки, снятые с сессии при запуске проверки
type InspectionBatch struct {
	Images []entity.ImageInput
	Notes  string
}

// InspectionService ведёт сессию проверки: собирает фото и заметки, запускает конвейер
// и хранит последний отчёт пользователя.
type InspectionService struct {
	users    *UserService
	pipeline *InspectionPipeline
}

// NewInspectionService создаёт сервис, который управляет проверкой объекта.
func NewInspectionService(users *UserService, pipeline *InspectionPipeline) *InspectionService {
	return &InspectionService{
		users:    users,
		pipeline: pipeline,
	}
}

// BeginInspection открывает новую сессию и очищает ранее собранные фото.
func (s *InspectionService) BeginInspection(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.users.repo.Update(ctx, userID, chatID, func(user *entity.User) error {
		if user.State == entity.StateProcessing {
			return ErrInspectionRunning
		}
		user.ResetSession()
		user.SetState(entity.StateAwaitingImages)
		return nil
	})
}

// AddImage добавляет фото в текущую сессию и возвращает число собранных фото.
func (s *InspectionService) AddImage(ctx context.Context, userID, chatID int64, name string, data []byte) (int, error) {
	user, err := s.users.repo.Update(ctx, userID, chatID, func(user *entity.User) error {
		if user.State != entity.StateAwaitingImages {
			return ErrNoActiveInspection
		}
		user.Pending = append(user.Pending, entity.ImageInput{Name: name, Data: data})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(user.Pending), nil
}

// AddNotes дописывает заметки инспектора к текущей сессии.
func (s *InspectionService) AddNotes(ctx context.Context, userID, chatID int64, text string) error {
	_, err := s.users.repo.Update(ctx, userID, chatID, func(user *entity.User) error {
		if user.State != entity.StateAwaitingImages {
			return ErrNoActiveInspection
		}
		user.AppendNotes(text)
		return nil
	})
	return err
}

// Start забирает собранные фото и переводит сессию в обработку.
// Повторный вызов до Finish возвращает ErrInspectionRunning.
func (s *InspectionService) Start(ctx context.Context, userID, chatID int64) (*InspectionBatch, error) {
	var batch InspectionBatch
	_, err := s.users.repo.Update(ctx, userID, chatID, func(user *entity.User) error {
		switch {
		case user.State == entity.StateProcessing:
			return ErrInspectionRunning
		case user.State != entity.StateAwaitingImages:
			return ErrNoActiveInspection
		case len(user.Pending) == 0:
			return ErrNoImages
		}

		batch = InspectionBatch{Images: user.Pending, Notes: user.Notes}
		user.ResetSession()
		user.SetState(entity.StateProcessing)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// Finish прогоняет конвейер по пакету и сохраняет отчёт. Состояние сбрасывается
// в главное меню, только если сессия всё ещё в обработке.
func (s *InspectionService) Finish(ctx context.Context, userID, chatID int64, batch *InspectionBatch) (*entity.InspectionReport, error) {
	report := s.pipeline.Run(ctx, batch.Images, batch.Notes)

	_, err := s.users.repo.Update(ctx, userID, chatID, func(user *entity.User) error {
		user.LastReport = report
		if user.State == entity.StateProcessing {
			user.SetState(entity.StateMainMenu)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Complete запускает конвейер по собранным фото и сохраняет отчёт в сессии.
func (s *InspectionService) Complete(ctx context.Context, userID, chatID int64) (*entity.InspectionReport, error) {
	batch, err := s.Start(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return s.Finish(ctx, userID, chatID, batch)
}

// LastReport возвращает последний отчёт пользователя.
func (s *InspectionService) LastReport(ctx context.Context, userID, chatID int64) (*entity.InspectionReport, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if user.LastReport == nil {
		return nil, ErrNoReport
	}
	return user.LastReport, nil
}
