package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"safenest/internal/domain/entity"
	"safenest/internal/logger"
)

// DefaultConcurrency сколько изображений анализируется одновременно
const DefaultConcurrency = 4

// ImageAnalyzer анализ одного изображения; реализуется DefectDetector
type ImageAnalyzer interface {
	Analyze(ctx context.Context, img entity.ImageInput, notes string) ([]entity.Defect, error)
}

// InspectionPipeline последовательность детектор -> проверка норм -> отчёт.
// Между вызовами состояния не хранит.
type InspectionPipeline struct {
	analyzer    ImageAnalyzer
	compliance  *ComplianceChecker
	reports     *ReportBuilder
	concurrency int
}

// NewInspectionPipeline собирает конвейер проверки
func NewInspectionPipeline(analyzer ImageAnalyzer, compliance *ComplianceChecker, reports *ReportBuilder, concurrency int) *InspectionPipeline {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &InspectionPipeline{
		analyzer:    analyzer,
		compliance:  compliance,
		reports:     reports,
		concurrency: concurrency,
	}
}

// Run проверяет пакет изображений и возвращает один отчёт.
// Сбой одного изображения записывается в лог и не прерывает пакет.
func (p *InspectionPipeline) Run(ctx context.Context, images []entity.ImageInput, notes string) *entity.InspectionReport {
	started := time.Now()
	perImage := make([][]entity.Defect, len(images))

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)

	for i, img := range images {
		g.Go(func() error {
			defects, err := p.analyzeSafely(ctx, img, notes)
			if err != nil {
				logger.Error("image analysis failed", "index", i, "image", img.Name, "error", err)
				return nil
			}
			perImage[i] = defects
			return nil
		})
	}
	_ = g.Wait()

	var all []entity.Defect
	for _, defects := range perImage {
		all = append(all, defects...)
	}
	// Порядок изображений сохраняется для дефектов одного уровня
	entity.SortBySeverity(all)

	compliance := p.compliance.Check(all)
	report := p.reports.Build(all, compliance)

	logger.Info("inspection completed",
		"images", len(images),
		"defects", report.TotalDefects,
		"violations", len(report.Violations),
		"risk_score", report.RiskScore,
		"elapsed", time.Since(started),
	)
	return report
}

// analyzeSafely превращает панику анализатора в ошибку этого изображения
func (p *InspectionPipeline) analyzeSafely(ctx context.Context, img entity.ImageInput, notes string) (defects []entity.Defect, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while analyzing %s: %v", img.Name, r)
		}
	}()
	return p.analyzer.Analyze(ctx, img, notes)
}
