package app

import (
	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
)

// ComplianceChecker сопоставляет дефекты со строительными нормами
type ComplianceChecker struct {
	codes port.CodeLookup
}

// NewComplianceChecker создаёт проверку поверх справочника норм
func NewComplianceChecker(codes port.CodeLookup) *ComplianceChecker {
	return &ComplianceChecker{codes: codes}
}

// Check обходит дефекты по порядку. Точное совпадение code_ref даёт Violation для High
// и Review Required для остальных; совпадение по ключевым словам всегда Review Required.
// Дефекты без подходящей нормы пропускаются.
func (c *ComplianceChecker) Check(defects []entity.Defect) entity.ComplianceResult {
	var result entity.ComplianceResult
	cited := make(map[string]struct{})

	for _, d := range defects {
		if d.IsRejected() {
			continue
		}

		if code, ok := c.codes.Lookup(d.CodeRef); ok {
			status := entity.StatusReviewRequired
			if d.Severity == entity.SeverityHigh {
				status = entity.StatusViolation
			}
			result.Violations = append(result.Violations, entity.ViolationRecord{
				DefectRef:       d.Type,
				Location:        d.Location,
				CodeID:          code.ID,
				CodeTitle:       code.Title,
				CodeDescription: code.Description,
				Category:        code.Category,
				Status:          status,
				Severity:        d.Severity,
				Resolution:      entity.ResolutionExact,
			})
			if _, seen := cited[code.ID]; !seen {
				cited[code.ID] = struct{}{}
				result.CodeReferences = append(result.CodeReferences, code.ID)
			}
			continue
		}

		matches := c.codes.SearchByKeyword(d.Type)
		if len(matches) == 0 {
			continue
		}
		best := matches[0]
		result.Violations = append(result.Violations, entity.ViolationRecord{
			DefectRef:       d.Type,
			Location:        d.Location,
			CodeID:          best.ID,
			CodeTitle:       best.Title,
			CodeDescription: best.Description,
			Category:        best.Category,
			Status:          entity.StatusReviewRequired,
			Severity:        d.Severity,
			Resolution:      entity.ResolutionKeyword,
			Confidence:      best.Confidence,
		})
	}

	return result
}
