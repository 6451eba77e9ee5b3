package app

import (
	"context"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
)

type UserService struct {
	repo port.SessionRepository
}

func NewUserService(repo port.SessionRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Load(ctx, userID, chatID)
}

func (s *UserService) Save(ctx context.Context, user *entity.User) error {
	return s.repo.Save(ctx, user)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(user *entity.User) error {
		user.SetState(state)
		return nil
	})
}

// Cancel сбрасывает собранные фото и возвращает в главное меню. Последний отчёт сохраняется.
// Идущую проверку отменить нельзя.
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(user *entity.User) error {
		if user.State == entity.StateProcessing {
			return ErrInspectionRunning
		}
		user.ResetSession()
		user.SetState(entity.StateMainMenu)
		return nil
	})
}
