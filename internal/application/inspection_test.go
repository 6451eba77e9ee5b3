package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"safenest/internal/domain/entity"
	"safenest/internal/infrastructure/knowledge"
	"safenest/internal/infrastructure/storage"
	"safenest/internal/infrastructure/vision"
)

func newInspectionService() *InspectionService {
	detector := NewDefectDetector(nil, vision.NewSyntheticBackend(), time.Second)
	pipeline := NewInspectionPipeline(detector, NewComplianceChecker(knowledge.Load("")), NewReportBuilder(), 2)
	return NewInspectionService(NewUserService(storage.NewMemorySessionRepository()), pipeline)
}

func TestInspectionService_FullSession(t *testing.T) {
	svc := newInspectionService()
	ctx := context.Background()

	user, err := svc.BeginInspection(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingImages, user.State)

	n, err := svc.AddImage(ctx, 1, 10, "kitchen.png", []byte("kitchen"))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = svc.AddImage(ctx, 1, 10, "photo.jpg", []byte("jpeg"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, svc.AddNotes(ctx, 1, 10, "water stains on ceiling"))

	report, err := svc.Complete(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, report.RejectedImages)
	require.Greater(t, report.TotalDefects, 1)

	last, err := svc.LastReport(ctx, 1, 10)
	require.NoError(t, err)
	require.Same(t, report, last)

	// После завершения сессия снова в главном меню
	_, err = svc.AddImage(ctx, 1, 10, "more.png", []byte("more"))
	require.ErrorIs(t, err, ErrNoActiveInspection)
}

func TestInspectionService_RequiresActiveSession(t *testing.T) {
	svc := newInspectionService()
	ctx := context.Background()

	_, err := svc.AddImage(ctx, 1, 10, "a.png", []byte("a"))
	require.ErrorIs(t, err, ErrNoActiveInspection)
	require.ErrorIs(t, svc.AddNotes(ctx, 1, 10, "note"), ErrNoActiveInspection)
	_, err = svc.Complete(ctx, 1, 10)
	require.ErrorIs(t, err, ErrNoActiveInspection)
}

func TestInspectionService_CompleteWithoutImages(t *testing.T) {
	svc := newInspectionService()
	ctx := context.Background()

	_, err := svc.BeginInspection(ctx, 1, 10)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, 1, 10)
	require.ErrorIs(t, err, ErrNoImages)
}

func TestInspectionService_NoReportYet(t *testing.T) {
	svc := newInspectionService()

	_, err := svc.LastReport(context.Background(), 5, 50)
	require.ErrorIs(t, err, ErrNoReport)
}

func TestInspectionService_BeginResetsPending(t *testing.T) {
	svc := newInspectionService()
	ctx := context.Background()

	_, err := svc.BeginInspection(ctx, 1, 10)
	require.NoError(t, err)
	_, err = svc.AddImage(ctx, 1, 10, "a.png", []byte("a"))
	require.NoError(t, err)

	user, err := svc.BeginInspection(ctx, 1, 10)
	require.NoError(t, err)
	require.Empty(t, user.Pending)
}

func TestInspectionService_RejectsWhileProcessing(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	users := NewUserService(repo)
	svc := NewInspectionService(users, nil)
	ctx := context.Background()

	_, err := users.SetState(ctx, 1, 10, entity.StateProcessing)
	require.NoError(t, err)

	_, err = svc.BeginInspection(ctx, 1, 10)
	require.ErrorIs(t, err, ErrInspectionRunning)
}

// gatedAnalyzer держит анализ до закрытия release
type gatedAnalyzer struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedAnalyzer() *gatedAnalyzer {
	return &gatedAnalyzer{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedAnalyzer) Analyze(ctx context.Context, img entity.ImageInput, notes string) ([]entity.Defect, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return []entity.Defect{scoredDefect("Roof Damage", entity.SeverityHigh, 0.9, 1000)}, nil
}

func newGatedService(analyzer ImageAnalyzer) (*InspectionService, *UserService) {
	users := NewUserService(storage.NewMemorySessionRepository())
	pipeline := NewInspectionPipeline(analyzer, NewComplianceChecker(knowledge.Load("")), NewReportBuilder(), 1)
	return NewInspectionService(users, pipeline), users
}

func TestInspectionService_SessionLockedWhileRunning(t *testing.T) {
	analyzer := newGatedAnalyzer()
	svc, users := newGatedService(analyzer)
	ctx := context.Background()

	_, err := svc.BeginInspection(ctx, 1, 10)
	require.NoError(t, err)
	_, err = svc.AddImage(ctx, 1, 10, "a.png", []byte("a"))
	require.NoError(t, err)

	type result struct {
		report *entity.InspectionReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := svc.Complete(ctx, 1, 10)
		done <- result{report, err}
	}()
	<-analyzer.started

	_, err = users.Cancel(ctx, 1, 10)
	require.ErrorIs(t, err, ErrInspectionRunning)
	_, err = svc.BeginInspection(ctx, 1, 10)
	require.ErrorIs(t, err, ErrInspectionRunning)
	_, err = svc.AddImage(ctx, 1, 10, "b.png", []byte("b"))
	require.ErrorIs(t, err, ErrNoActiveInspection)
	_, err = svc.Start(ctx, 1, 10)
	require.ErrorIs(t, err, ErrInspectionRunning)

	close(analyzer.release)
	res := <-done
	require.NoError(t, res.err)
	require.Equal(t, 1, res.report.TotalDefects)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Same(t, res.report, user.LastReport)
}

func TestInspectionService_FinishKeepsNewerSession(t *testing.T) {
	analyzer := newGatedAnalyzer()
	close(analyzer.release)
	svc, users := newGatedService(analyzer)
	ctx := context.Background()

	_, err := svc.BeginInspection(ctx, 1, 10)
	require.NoError(t, err)
	_, err = svc.AddImage(ctx, 1, 10, "a.png", []byte("a"))
	require.NoError(t, err)

	batch, err := svc.Start(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, batch.Images, 1)

	// Сессия успела уйти в новую проверку, пока шёл анализ
	_, err = users.SetState(ctx, 1, 10, entity.StateAwaitingImages)
	require.NoError(t, err)
	_, err = svc.AddImage(ctx, 1, 10, "b.png", []byte("b"))
	require.NoError(t, err)

	report, err := svc.Finish(ctx, 1, 10, batch)
	require.NoError(t, err)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingImages, user.State)
	require.Len(t, user.Pending, 1)
	require.Equal(t, "b.png", user.Pending[0].Name)
	require.Same(t, report, user.LastReport)
}

func TestInspectionService_StartClearsPending(t *testing.T) {
	svc := newInspectionService()
	ctx := context.Background()

	_, err := svc.BeginInspection(ctx, 1, 10)
	require.NoError(t, err)
	_, err = svc.AddImage(ctx, 1, 10, "a.png", []byte("a"))
	require.NoError(t, err)
	require.NoError(t, svc.AddNotes(ctx, 1, 10, "sagging floor"))

	batch, err := svc.Start(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, "sagging floor", batch.Notes)

	_, err = svc.Complete(ctx, 1, 10)
	require.ErrorIs(t, err, ErrInspectionRunning)
}
