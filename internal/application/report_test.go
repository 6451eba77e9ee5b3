package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"safenest/internal/domain/entity"
)

func fixedBuilder() *ReportBuilder {
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	return NewReportBuilder().
		WithJitter(func() int { return 0 }).
		WithClock(func() time.Time { return at })
}

func scoredDefect(typ string, severity entity.Severity, confidence float64, cost int) entity.Defect {
	return entity.Defect{
		Type:          typ,
		Severity:      severity,
		Location:      "Basement",
		Confidence:    confidence,
		EstimatedCost: cost,
		SourceImage:   "a.png",
	}
}

func TestReportBuilder_Build(t *testing.T) {
	defects := []entity.Defect{
		scoredDefect("Structural Crack", entity.SeverityHigh, 0.9, 50000),
		scoredDefect("Water Damage", entity.SeverityHigh, 0.8, 30000),
		scoredDefect("HVAC Issue", entity.SeverityMedium, 0.7, 9000),
		scoredDefect("Paint Deterioration", entity.SeverityLow, 0.9, 3000),
	}
	compliance := entity.ComplianceResult{
		Violations: []entity.ViolationRecord{
			{CodeID: "R403.1", Status: entity.StatusViolation},
			{CodeID: "M1411.3", Status: entity.StatusReviewRequired},
		},
		CodeReferences: []string{"R403.1"},
	}

	report := fixedBuilder().Build(defects, compliance)

	// (30 + 25 + 15 + 6) * (0.8 + 0.4*0.825) + 5 = 90.88
	require.Equal(t, 91, report.RiskScore)
	require.Equal(t, RiskLevelHigh, report.RiskLevel)
	require.Equal(t, 92000, report.BaseCost)
	require.Equal(t, 128800, report.TotalCost)
	require.Equal(t, 4, report.TotalDefects)
	require.Equal(t, 2, report.HighRisk)
	require.Equal(t, 1, report.MediumRisk)
	require.Equal(t, 1, report.LowRisk)
	require.Equal(t, 1, report.ComplianceViolations)
	require.Equal(t, 1, report.ComplianceReviews)
	require.Equal(t, []string{"R403.1"}, report.CodeReferences)
	require.Equal(t, time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), report.GeneratedAt)

	require.Equal(t, []string{
		"Overall risk: High (score 91/100)",
		"🚨 URGENT: Address Structural Crack at Basement within 7 days",
		"🚨 URGENT: Address Water Damage at Basement within 7 days",
		"⚠️ Schedule repairs for 1 medium-priority issue(s) within 30 days",
		"ℹ️ Monitor 1 low-priority issue(s) and address during routine maintenance",
	}, report.Recommendations)
}

func TestReportBuilder_CopiesInputs(t *testing.T) {
	defects := []entity.Defect{scoredDefect("Roof Damage", entity.SeverityHigh, 0.9, 100)}
	report := fixedBuilder().Build(defects, entity.ComplianceResult{})

	defects[0].Type = "mutated"
	require.Equal(t, "Roof Damage", report.AllDefects[0].Type)
}

func TestReportBuilder_EmptyDefects(t *testing.T) {
	report := fixedBuilder().Build(nil, entity.ComplianceResult{})

	require.Equal(t, 10, report.RiskScore)
	require.Zero(t, report.TotalCost)
	require.Zero(t, report.TotalDefects)
	require.Equal(t, []string{"Overall risk: Low-Moderate (score 10/100)"}, report.Recommendations)
}

func TestReportBuilder_AllRejected(t *testing.T) {
	defects := []entity.Defect{
		entity.NewRejectedDefect("a.jpg", RejectJPGMessage),
		entity.NewRejectedDefect("b.gif", RejectGenericMessage),
	}
	report := NewReportBuilder().Build(defects, entity.ComplianceResult{})

	require.Equal(t, 0, report.RiskScore)
	require.Equal(t, 2, report.RejectedImages)
	require.Equal(t, 2, report.TotalDefects)
	require.Len(t, report.Recommendations, 1)
}

func TestReportBuilder_RejectedExcludedFromScoring(t *testing.T) {
	defects := []entity.Defect{
		scoredDefect("HVAC Issue", entity.SeverityMedium, 0.5, 1000),
		entity.NewRejectedDefect("b.jpg", RejectJPGMessage),
	}
	report := fixedBuilder().Build(defects, entity.ComplianceResult{})

	// 15 * (0.8 + 0.2) = 15
	require.Equal(t, 15, report.RiskScore)
	require.Equal(t, 1, report.RejectedImages)
	require.Equal(t, 1, report.LowRisk)
	for _, rec := range report.Recommendations {
		require.False(t, strings.Contains(rec, "low-priority"))
	}
}

func TestReportBuilder_DiminishingWeights(t *testing.T) {
	var defects []entity.Defect
	for i := 0; i < 5; i++ {
		defects = append(defects, scoredDefect("HVAC Issue", entity.SeverityMedium, 0.5, 0))
	}

	// 15 + 12 + 9 + 8 + 8 при множителе уверенности 1.0
	require.Equal(t, 52, fixedBuilder().Build(defects, entity.ComplianceResult{}).RiskScore)
	require.Equal(t, 36, fixedBuilder().Build(defects[:3], entity.ComplianceResult{}).RiskScore)
}

func TestReportBuilder_ClampsScore(t *testing.T) {
	low := fixedBuilder().Build([]entity.Defect{
		scoredDefect("Paint Deterioration", entity.SeverityLow, 0.6, 1000),
	}, entity.ComplianceResult{})
	require.Equal(t, 15, low.RiskScore)
	require.Equal(t, 1000, low.TotalCost)

	var many []entity.Defect
	for i := 0; i < 10; i++ {
		many = append(many, scoredDefect("Foundation Settlement", entity.SeverityHigh, 1.0, 1000))
	}
	high := fixedBuilder().Build(many, entity.ComplianceResult{})
	require.Equal(t, 95, high.RiskScore)
	require.Equal(t, 14000, high.TotalCost)

	var urgent int
	for _, rec := range high.Recommendations {
		if strings.HasPrefix(rec, "🚨") {
			urgent++
		}
	}
	require.Equal(t, 3, urgent)
}

func TestReportBuilder_JitterStaysInBounds(t *testing.T) {
	b := NewReportBuilder()
	defects := []entity.Defect{
		scoredDefect("Paint Deterioration", entity.SeverityLow, 0.6, 1000),
	}
	for i := 0; i < 200; i++ {
		score := b.Build(defects, entity.ComplianceResult{}).RiskScore
		require.GreaterOrEqual(t, score, 15)
		require.LessOrEqual(t, score, 95)
	}

	var many []entity.Defect
	for i := 0; i < 8; i++ {
		many = append(many, scoredDefect("Roof Damage", entity.SeverityHigh, 0.95, 1000))
	}
	for i := 0; i < 200; i++ {
		require.Equal(t, 95, b.Build(many, entity.ComplianceResult{}).RiskScore)
	}
}

func TestReportBuilder_CostMonotonicity(t *testing.T) {
	base := []entity.Defect{
		scoredDefect("Water Damage", entity.SeverityHigh, 0.8, 20000),
		scoredDefect("Plumbing Leak", entity.SeverityMedium, 0.7, 5000),
		scoredDefect("Window Damage", entity.SeverityLow, 0.9, 2000),
	}
	prev := fixedBuilder().Build(base, entity.ComplianceResult{}).TotalCost

	for _, factor := range []int{2, 3, 10} {
		scaled := make([]entity.Defect, len(base))
		for i, d := range base {
			d.EstimatedCost *= factor
			scaled[i] = d
		}
		total := fixedBuilder().Build(scaled, entity.ComplianceResult{}).TotalCost
		require.GreaterOrEqual(t, total, prev)
		prev = total
	}
}

func TestCostMultiplierTiers(t *testing.T) {
	require.Equal(t, 1.0, costMultiplier(29))
	require.Equal(t, 1.1, costMultiplier(30))
	require.Equal(t, 1.25, costMultiplier(50))
	require.Equal(t, 1.4, costMultiplier(70))
	require.Equal(t, RiskLevelModerate, riskLevel(50))
	require.Equal(t, RiskLevelLowModerate, riskLevel(49))
}
