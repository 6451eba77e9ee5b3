package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"safenest/internal/domain/entity"
)

func TestFormatReport(t *testing.T) {
	report := &entity.InspectionReport{
		TotalCost:            128800,
		BaseCost:             92000,
		RiskScore:            91,
		RiskLevel:            "High",
		TotalDefects:         3,
		HighRisk:             1,
		MediumRisk:           1,
		LowRisk:              1,
		RejectedImages:       1,
		ComplianceViolations: 1,
		Violations: []entity.ViolationRecord{
			{CodeID: "R403.1", CodeTitle: "Footings", DefectRef: "Structural Crack", Status: entity.StatusViolation},
		},
		Recommendations: []string{"Overall risk: High (score 91/100)"},
		AllDefects: []entity.Defect{
			{Type: "Structural Crack", Severity: entity.SeverityHigh, Location: "Basement Wall", Confidence: 0.9, EstimatedCost: 50000},
			{Type: "HVAC Issue", Severity: entity.SeverityMedium, Location: "Ductwork", Confidence: 0.7, EstimatedCost: 9000},
			entity.NewRejectedDefect("photo.jpg", "not accepted"),
		},
	}

	text := FormatReport(report)
	require.Contains(t, text, "91/100 (High)")
	require.Contains(t, text, "₹128800 (базовая ₹92000)")
	require.NotContains(t, text, "$")
	require.Contains(t, text, "🔴 Высокий риск:\n1. Structural Crack — Basement Wall, уверенность 90%, ~₹50000")
	require.Contains(t, text, "🟠 Средний риск:\n2. HVAC Issue — Ductwork, уверенность 70%, ~₹9000")
	require.Contains(t, text, "• [photo.jpg] not accepted")
	require.Contains(t, text, "R403.1 Footings — Structural Crack: Violation")
	require.Contains(t, text, "Overall risk: High (score 91/100)")

	// Отклонённое изображение не попадает в раздел низкого риска
	require.NotContains(t, text, "🟢 Низкий риск:")
}

func TestFormatReport_Truncates(t *testing.T) {
	report := &entity.InspectionReport{}
	for i := 0; i < 500; i++ {
		report.AllDefects = append(report.AllDefects, entity.Defect{
			Type:     "Moisture Intrusion",
			Severity: entity.SeverityMedium,
			Location: "Wall Cavity",
		})
	}

	text := FormatReport(report)
	require.Equal(t, maxMessageLength, utf16Len(text))
	require.True(t, strings.HasSuffix(text, truncatedSuffix))
}

func TestTruncate_CountsUTF16Units(t *testing.T) {
	// Каждая строка: эмодзи вне BMP (2 единицы UTF-16) и 8 символов ASCII
	text := strings.Repeat("🚨 URGENT\n", 450)
	require.Less(t, len([]rune(text)), maxMessageLength)
	require.Greater(t, utf16Len(text), maxMessageLength)

	got := truncate(text, maxMessageLength)
	require.LessOrEqual(t, utf16Len(got), maxMessageLength)
	require.GreaterOrEqual(t, utf16Len(got), maxMessageLength-1)
	require.True(t, strings.HasSuffix(got, truncatedSuffix))

	// Суррогатная пара не разрывается
	require.NotContains(t, got, "�")
}

func TestTruncate_ShortTextUnchanged(t *testing.T) {
	require.Equal(t, "🏠 ok", truncate("🏠 ok", 10))
}
