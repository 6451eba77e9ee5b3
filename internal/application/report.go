package app

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"safenest/internal/domain/entity"
)

const (
	emptyRiskScore    = 10
	rejectedRiskScore = 0
	minRiskScore      = 15
	maxRiskScore      = 95
	structuralBonus   = 5
	maxUrgentActions  = 3
	riskJitterSpread  = 3
)

// Уровни риска в отчёте
const (
	RiskLevelHigh        = "High"
	RiskLevelModerate    = "Moderate"
	RiskLevelLowModerate = "Low-Moderate"
)

// ReportBuilder собирает итоговый отчёт: риск, стоимость, рекомендации
type ReportBuilder struct {
	jitter func() int
	now    func() time.Time
}

// NewReportBuilder создаёт сборщик с несидированным шумом ±3 к оценке риска
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{
		jitter: func() int { return rand.IntN(2*riskJitterSpread+1) - riskJitterSpread },
		now:    time.Now,
	}
}

// WithJitter подменяет источник шума, например нулевым в тестах
func (b *ReportBuilder) WithJitter(jitter func() int) *ReportBuilder {
	c := *b
	c.jitter = jitter
	return &c
}

// WithClock подменяет часы для поля GeneratedAt
func (b *ReportBuilder) WithClock(now func() time.Time) *ReportBuilder {
	c := *b
	c.now = now
	return &c
}

// Build строит отчёт. Срезы копируются, вызывающий код владеет результатом единолично.
func (b *ReportBuilder) Build(defects []entity.Defect, compliance entity.ComplianceResult) *entity.InspectionReport {
	report := &entity.InspectionReport{
		TotalDefects:   len(defects),
		AllDefects:     append([]entity.Defect{}, defects...),
		Violations:     append([]entity.ViolationRecord{}, compliance.Violations...),
		CodeReferences: append([]string{}, compliance.CodeReferences...),
		GeneratedAt:    b.now(),
	}

	baseCost := 0
	for _, d := range defects {
		switch d.Severity {
		case entity.SeverityHigh:
			report.HighRisk++
		case entity.SeverityMedium:
			report.MediumRisk++
		default:
			report.LowRisk++
		}
		if d.IsRejected() {
			report.RejectedImages++
		}
		baseCost += d.EstimatedCost
	}

	for _, v := range compliance.Violations {
		if v.Status == entity.StatusViolation {
			report.ComplianceViolations++
		} else {
			report.ComplianceReviews++
		}
	}

	report.RiskScore = b.riskScore(defects)
	report.RiskLevel = riskLevel(report.RiskScore)
	report.BaseCost = baseCost
	report.TotalCost = int(math.Round(float64(baseCost) * costMultiplier(report.RiskScore)))
	report.Recommendations = recommendations(scoredDefects(defects), report.RiskScore)

	return report
}

// riskScore взвешенная оценка 0-100. Вес каждого следующего дефекта того же уровня
// убывает, поэтому разнообразие находок весит больше их количества.
func (b *ReportBuilder) riskScore(defects []entity.Defect) int {
	if len(defects) == 0 {
		return emptyRiskScore
	}
	scored := scoredDefects(defects)
	if len(scored) == 0 {
		return rejectedRiskScore
	}

	var total, confidenceSum float64
	var high, medium, low, structural int
	for _, d := range scored {
		switch d.Severity {
		case entity.SeverityHigh:
			total += float64(max(20, 30-5*high))
			high++
		case entity.SeverityMedium:
			total += float64(max(8, 15-3*medium))
			medium++
		default:
			total += float64(max(3, 6-low))
			low++
		}
		if d.IsStructural() {
			structural++
		}
		confidenceSum += d.Confidence
	}

	avgConfidence := confidenceSum / float64(len(scored))
	total *= 0.8 + 0.4*avgConfidence
	total += float64(structuralBonus * structural)
	if b.jitter != nil {
		total += float64(b.jitter())
	}

	score := int(math.Round(total))
	return min(maxRiskScore, max(minRiskScore, score))
}

// scoredDefects дефекты без служебных записей об отклонённых изображениях
func scoredDefects(defects []entity.Defect) []entity.Defect {
	out := make([]entity.Defect, 0, len(defects))
	for _, d := range defects {
		if !d.IsRejected() {
			out = append(out, d)
		}
	}
	return out
}

func riskLevel(score int) string {
	switch {
	case score >= 70:
		return RiskLevelHigh
	case score >= 50:
		return RiskLevelModerate
	default:
		return RiskLevelLowModerate
	}
}

func costMultiplier(score int) float64 {
	switch {
	case score < 30:
		return 1.0
	case score < 50:
		return 1.1
	case score < 70:
		return 1.25
	default:
		return 1.4
	}
}

func recommendations(defects []entity.Defect, score int) []string {
	recs := []string{
		fmt.Sprintf("Overall risk: %s (score %d/100)", riskLevel(score), score),
	}

	var medium, low, urgent int
	for _, d := range defects {
		switch d.Severity {
		case entity.SeverityHigh:
			if urgent < maxUrgentActions {
				recs = append(recs, fmt.Sprintf("🚨 URGENT: Address %s at %s within 7 days", d.Type, d.Location))
				urgent++
			}
		case entity.SeverityMedium:
			medium++
		default:
			low++
		}
	}

	if medium > 0 {
		recs = append(recs, fmt.Sprintf("⚠️ Schedule repairs for %d medium-priority issue(s) within 30 days", medium))
	}
	if low > 0 {
		recs = append(recs, fmt.Sprintf("ℹ️ Monitor %d low-priority issue(s) and address during routine maintenance", low))
	}
	return recs
}
