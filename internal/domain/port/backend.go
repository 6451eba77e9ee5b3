package port

import (
	"context"

	"safenest/internal/domain/entity"
)

// AnalysisBackend источник кандидатов в дефекты для одного изображения
type AnalysisBackend interface {
	// Name возвращает имя бэкенда для логов и пометки источников
	Name() string

	// Infer анализирует изображение с учётом заметок инспектора
	Infer(ctx context.Context, imageData []byte, notes string) ([]entity.Candidate, error)
}
