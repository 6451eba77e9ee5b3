package app

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
	"safenest/internal/logger"
)

const (
	// DefaultBackendTimeout ограничение на один вызов внешнего бэкенда
	DefaultBackendTimeout = 30 * time.Second

	// maxReconciled сколько кандидатов остаётся после сведения источников
	maxReconciled = 5

	// Тексты отказа для неподходящих файлов
	RejectJPGMessage     = "JPG/JPEG images are not accepted as housing property photos. Please upload the photo as a PNG file."
	RejectGenericMessage = "This file is not recognised as a housing property photo. Only PNG images are accepted."
)

// ErrEmptyImage изображение без содержимого
var ErrEmptyImage = errors.New("image is empty")

// DefectDetector превращает одно изображение и заметки в список дефектов
type DefectDetector struct {
	backends []port.AnalysisBackend
	fallback port.AnalysisBackend
	timeout  time.Duration
}

// NewDefectDetector создаёт детектор. Порядок backends задаёт основной и дополнительные источники;
// fallback вызывается, когда внешние бэкенды ничего не вернули.
func NewDefectDetector(backends []port.AnalysisBackend, fallback port.AnalysisBackend, timeout time.Duration) *DefectDetector {
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &DefectDetector{
		backends: backends,
		fallback: fallback,
		timeout:  timeout,
	}
}

// Analyze проверяет изображение и возвращает дефекты, упорядоченные по серьёзности и уверенности
func (d *DefectDetector) Analyze(ctx context.Context, img entity.ImageInput, notes string) ([]entity.Defect, error) {
	if reason, ok := validateImageName(img.Name); !ok {
		logger.Info("image rejected", "image", img.Name, "reason", reason)
		return []entity.Defect{entity.NewRejectedDefect(img.Name, reason)}, nil
	}
	if len(img.Data) == 0 {
		return nil, ErrEmptyImage
	}

	var lists [][]entity.Candidate
	for _, b := range d.backends {
		if c := d.infer(ctx, b, img, notes); len(c) > 0 {
			lists = append(lists, c)
		}
	}

	var candidates []entity.Candidate
	switch len(lists) {
	case 0:
		if d.fallback != nil {
			candidates = d.infer(ctx, d.fallback, img, notes)
		}
	case 1:
		candidates = lists[0]
	default:
		candidates = lists[0]
		for _, secondary := range lists[1:] {
			candidates = Reconcile(candidates, secondary)
		}
	}

	defects := make([]entity.Defect, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence < entity.MinConfidence {
			continue
		}
		defects = append(defects, entity.NewDefect(c, img.Name))
	}

	entity.SortBySeverityAndConfidence(defects)
	return defects, nil
}

// infer вызывает бэкенд с таймаутом. Ошибки не выходят за эту границу:
// сбой бэкенда означает пустой вклад.
func (d *DefectDetector) infer(ctx context.Context, b port.AnalysisBackend, img entity.ImageInput, notes string) []entity.Candidate {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	started := time.Now()
	candidates, err := b.Infer(callCtx, img.Data, notes)
	if err != nil {
		logger.Warn("analysis backend failed",
			"backend", b.Name(),
			"image", img.Name,
			"elapsed", time.Since(started),
			"error", err,
		)
		return nil
	}
	logger.Debug("analysis backend finished", "backend", b.Name(), "image", img.Name, "candidates", len(candidates))
	return candidates
}

// validateImageName грубая проверка по расширению файла: принимается только PNG
func validateImageName(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "", true
	case ".jpg", ".jpeg":
		return RejectJPGMessage, false
	default:
		return RejectGenericMessage, false
	}
}

// Reconcile сводит кандидатов двух источников. Кандидаты с совпадающим типом
// (подстрока в любую сторону, без учёта регистра) объединяются в один,
// остальные проходят без изменений. Результат отсортирован по уверенности и обрезан до 5.
func Reconcile(primary, secondary []entity.Candidate) []entity.Candidate {
	remaining := append([]entity.Candidate(nil), secondary...)
	out := make([]entity.Candidate, 0, len(primary)+len(secondary))

	for _, p := range primary {
		idx := matchByType(p, remaining)
		if idx < 0 {
			out = append(out, p)
			continue
		}
		s := remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		out = append(out, merge(p, s))
	}
	out = append(out, remaining...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > maxReconciled {
		out = out[:maxReconciled]
	}
	return out
}

func matchByType(p entity.Candidate, pool []entity.Candidate) int {
	pt := strings.ToLower(p.Type)
	for i, s := range pool {
		st := strings.ToLower(s.Type)
		if strings.Contains(pt, st) || strings.Contains(st, pt) {
			return i
		}
	}
	return -1
}

// merge объединяет подтверждённый двумя источниками дефект: уверенность растёт, стоимость усредняется
func merge(p, s entity.Candidate) entity.Candidate {
	merged := p
	confidence := math.Min(0.95, (p.Confidence+s.Confidence)/2+0.10)
	merged.Confidence = math.Round(confidence*100) / 100
	merged.EstimatedCost = (p.EstimatedCost + s.EstimatedCost) / 2
	if merged.CodeRef == "" {
		merged.CodeRef = s.CodeRef
	}
	if merged.Description == "" {
		merged.Description = s.Description
	}

	merged.Sources = append([]string(nil), p.Sources...)
	for _, src := range s.Sources {
		if !containsString(merged.Sources, src) {
			merged.Sources = append(merged.Sources, src)
		}
	}
	return merged
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
