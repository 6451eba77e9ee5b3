package storage

import (
	"context"
	"sync"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий.
// Наружу отдаются копии, чтобы обработчики не делили изменяемое состояние.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.User
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[int64]*entity.User),
	}
}

// Load возвращает сессию по ID пользователя, создаёт новую если не найдена
func (r *MemorySessionRepository) Load(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.RLock()
	user, exists := r.sessions[userID]
	r.mu.RUnlock()

	if exists {
		return cloneUser(user), nil
	}

	newUser := entity.NewUser(userID, chatID)

	r.mu.Lock()
	if existing, ok := r.sessions[userID]; ok {
		newUser = existing
	} else {
		r.sessions[userID] = newUser
	}
	r.mu.Unlock()

	return cloneUser(newUser), nil
}

// Save сохраняет сессию пользователя
func (r *MemorySessionRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.sessions[user.ID] = cloneUser(user)
	r.mu.Unlock()

	return nil
}

// Update выполняет чтение-изменение-запись под одной блокировкой
func (r *MemorySessionRepository) Update(ctx context.Context, userID, chatID int64, fn func(user *entity.User) error) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.sessions[userID]
	if !exists {
		current = entity.NewUser(userID, chatID)
	}

	user := cloneUser(current)
	if err := fn(user); err != nil {
		return nil, err
	}
	r.sessions[userID] = cloneUser(user)

	return user, nil
}

// cloneUser копирует сессию. Байты изображений и отчёт не меняются после создания,
// поэтому копируется только срез.
func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.Pending != nil {
		c.Pending = append([]entity.ImageInput(nil), u.Pending...)
	}
	return &c
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
