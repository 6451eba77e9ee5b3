//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
)

// ContourBackend заглушка без OpenCV: каждый вызов завершается ошибкой,
// и детектор считает вклад бэкенда пустым.
type ContourBackend struct {
	ContourSettings
}

// NewContourBackend создаёт бэкенд-заглушку
func NewContourBackend() *ContourBackend {
	return &ContourBackend{ContourSettings: DefaultContourSettings()}
}

func (d *ContourBackend) Name() string {
	return ContourBackendName
}

// Infer возвращает ошибку, если сборка без тега gocv.
func (d *ContourBackend) Infer(ctx context.Context, imageData []byte, notes string) ([]entity.Candidate, error) {
	return nil, errors.New("gocv build tag is not enabled")
}

// Проверка реализации интерфейса
var _ port.AnalysisBackend = (*ContourBackend)(nil)
