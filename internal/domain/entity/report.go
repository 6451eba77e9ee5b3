package entity

import "time"

// ImageInput изображение, переданное на проверку
type ImageInput struct {
	Name string
	Data []byte
}

// InspectionReport итоговый отчёт одной проверки. Создаётся один раз и не изменяется.
type InspectionReport struct {
	TotalCost            int               `json:"total_cost"`
	BaseCost             int               `json:"base_cost"`
	RiskScore            int               `json:"risk_score"`
	RiskLevel            string            `json:"risk_level"`
	TotalDefects         int               `json:"total_defects"`
	HighRisk             int               `json:"high_risk"`
	MediumRisk           int               `json:"medium_risk"`
	LowRisk              int               `json:"low_risk"`
	RejectedImages       int               `json:"rejected_images"`
	ComplianceViolations int               `json:"compliance_violations"`
	ComplianceReviews    int               `json:"compliance_reviews"`
	Violations           []ViolationRecord `json:"violations"`
	CodeReferences       []string          `json:"code_references"`
	Recommendations      []string          `json:"recommendations"`
	AllDefects           []Defect          `json:"all_defects"`
	GeneratedAt          time.Time         `json:"generated_at"`
}

// DefectsBySeverity возвращает дефекты указанной серьёзности в порядке отчёта
func (r *InspectionReport) DefectsBySeverity(s Severity) []Defect {
	var out []Defect
	for _, d := range r.AllDefects {
		if d.Severity == s && !d.IsRejected() {
			out = append(out, d)
		}
	}
	return out
}
