package port

import (
	"context"

	"safenest/internal/domain/entity"
)

// SessionRepository хранилище сессий пользователей бота
type SessionRepository interface {
	// Load возвращает копию сессии пользователя, создаёт новую если не найдена
	Load(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет сессию целиком
	Save(ctx context.Context, user *entity.User) error

	// Update атомарно применяет fn к сессии и сохраняет результат.
	// Если fn вернула ошибку, сессия не меняется.
	Update(ctx context.Context, userID, chatID int64, fn func(user *entity.User) error) (*entity.User, error)
}
