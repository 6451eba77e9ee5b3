package telegram

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"safenest/internal/domain/entity"
)

// maxMessageLength лимит Telegram на длину текста сообщения (в единицах UTF-16)
const maxMessageLength = 4096

const truncatedSuffix = "\n…"

var severitySections = []struct {
	severity entity.Severity
	title    string
}{
	{entity.SeverityHigh, "🔴 Высокий риск:"},
	{entity.SeverityMedium, "🟠 Средний риск:"},
	{entity.SeverityLow, "🟢 Низкий риск:"},
}

// FormatReport отчёт проверки в виде простого текста для чата.
// Стоимости в рупиях.
func FormatReport(r *entity.InspectionReport) string {
	var sb strings.Builder

	sb.WriteString("🏠 Отчёт о проверке объекта\n\n")
	fmt.Fprintf(&sb, "Риск: %d/100 (%s)\n", r.RiskScore, r.RiskLevel)
	fmt.Fprintf(&sb, "Стоимость ремонта: ₹%d (базовая ₹%d)\n", r.TotalCost, r.BaseCost)
	fmt.Fprintf(&sb, "Дефекты: %d (высокий %d, средний %d, низкий %d)\n",
		r.TotalDefects, r.HighRisk, r.MediumRisk, r.LowRisk)

	n := 0
	for _, section := range severitySections {
		defects := r.DefectsBySeverity(section.severity)
		if len(defects) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s\n", section.title)
		for _, d := range defects {
			n++
			fmt.Fprintf(&sb, "%d. %s — %s, уверенность %.0f%%, ~₹%d\n",
				n, d.Type, d.Location, d.Confidence*100, d.EstimatedCost)
		}
	}

	if r.RejectedImages > 0 {
		fmt.Fprintf(&sb, "\n🚫 Отклонено изображений: %d\n", r.RejectedImages)
		for _, d := range r.AllDefects {
			if d.IsRejected() {
				fmt.Fprintf(&sb, "• [%s] %s\n", d.SourceImage, d.Description)
			}
		}
	}

	if len(r.Violations) > 0 {
		fmt.Fprintf(&sb, "\n📜 Нормы (нарушений %d, на проверку %d):\n", r.ComplianceViolations, r.ComplianceReviews)
		for _, v := range r.Violations {
			fmt.Fprintf(&sb, "• %s %s — %s: %s\n", v.CodeID, v.CodeTitle, v.DefectRef, v.Status)
		}
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\n📋 Рекомендации:\n")
		for _, rec := range r.Recommendations {
			sb.WriteString(rec)
			sb.WriteString("\n")
		}
	}

	return truncate(strings.TrimRight(sb.String(), "\n"), maxMessageLength)
}

// truncate обрезает текст до limit единиц UTF-16, не разрывая суррогатные пары
func truncate(text string, limit int) string {
	if utf16Len(text) <= limit {
		return text
	}

	budget := limit - utf16Len(truncatedSuffix)
	var sb strings.Builder
	used := 0
	for _, r := range text {
		size := utf16.RuneLen(r)
		if used+size > budget {
			break
		}
		used += size
		sb.WriteRune(r)
	}
	return sb.String() + truncatedSuffix
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
