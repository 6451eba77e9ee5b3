package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"safenest/internal/domain/entity"
	"safenest/internal/logger"
)

// rawDefect дефект в JSON-ответе внешнего сервиса анализа
type rawDefect struct {
	Type          string  `json:"type"`
	Severity      string  `json:"severity"`
	Location      string  `json:"location"`
	Confidence    float64 `json:"confidence"`
	Description   string  `json:"description"`
	CodeRef       string  `json:"code_ref"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// toCandidates проверяет сырые дефекты и помечает их источником.
// Записи без типа или с неизвестной серьёзностью отбрасываются.
func toCandidates(raws []rawDefect, source string) []entity.Candidate {
	out := make([]entity.Candidate, 0, len(raws))
	for _, r := range raws {
		typ := strings.TrimSpace(r.Type)
		if typ == "" {
			continue
		}
		severity, ok := entity.ParseSeverity(r.Severity)
		if !ok {
			logger.Debug("dropping candidate with unknown severity", "backend", source, "type", typ, "severity", r.Severity)
			continue
		}
		confidence := r.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		cost := int(r.EstimatedCost)
		if cost < 0 {
			cost = 0
		}
		out = append(out, entity.Candidate{
			Type:          typ,
			Severity:      severity,
			Location:      strings.TrimSpace(r.Location),
			Confidence:    confidence,
			Description:   strings.TrimSpace(r.Description),
			CodeRef:       strings.TrimSpace(r.CodeRef),
			EstimatedCost: cost,
			Sources:       []string{source},
		})
	}
	return out
}

// decodeDefects принимает либо массив дефектов, либо объект {"defects": [...]}
func decodeDefects(text string) ([]rawDefect, error) {
	text = stripCodeFence(text)

	var list []rawDefect
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Defects []rawDefect `json:"defects"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
		return nil, fmt.Errorf("decode defects: %w", err)
	}
	return wrapped.Defects, nil
}

// stripCodeFence убирает markdown-обёртку ```json ... ```, которую иногда добавляют модели
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
