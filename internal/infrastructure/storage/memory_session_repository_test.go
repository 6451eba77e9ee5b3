package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"safenest/internal/domain/entity"
)

func TestMemorySessionRepository_LoadCreatesSession(t *testing.T) {
	repo := NewMemorySessionRepository()

	user, err := repo.Load(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Equal(t, int64(10), user.ChatID)
}

func TestMemorySessionRepository_SaveIsolatesCopies(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	user, err := repo.Load(ctx, 1, 10)
	require.NoError(t, err)
	user.Pending = append(user.Pending, entity.ImageInput{Name: "a.png"})
	require.NoError(t, repo.Save(ctx, user))

	user.Pending = append(user.Pending, entity.ImageInput{Name: "b.png"})

	stored, err := repo.Load(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, stored.Pending, 1)
}

func TestMemorySessionRepository_Update(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	user, err := repo.Update(ctx, 1, 10, func(u *entity.User) error {
		u.SetState(entity.StateProcessing)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)

	stored, err := repo.Load(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, stored.State)
}

func TestMemorySessionRepository_UpdateErrorKeepsSession(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	boom := errors.New("refused")

	_, err := repo.Update(ctx, 1, 10, func(u *entity.User) error {
		u.SetState(entity.StateProcessing)
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.Load(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, stored.State)
}

func TestMemorySessionRepository_ConcurrentUpdates(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	errs := make([]error, 50)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.Update(ctx, 1, 10, func(u *entity.User) error {
				u.Pending = append(u.Pending, entity.ImageInput{Name: "a.png"})
				return nil
			})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.Load(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, stored.Pending, 50)
}
