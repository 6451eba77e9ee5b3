package entity

// ComplianceStatus статус соответствия нормам
type ComplianceStatus string

const (
	StatusViolation      ComplianceStatus = "Violation"
	StatusReviewRequired ComplianceStatus = "Review Required"
)

// Resolution способ, которым дефект был сопоставлен с нормой
type Resolution string

const (
	ResolutionExact   Resolution = "exact"   // точный поиск по code_ref
	ResolutionKeyword Resolution = "keyword" // поиск по ключевым словам
)

// CodeEntry запись строительной нормы
type CodeEntry struct {
	ID          string `json:"code_id" yaml:"-"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
}

// CodeMatch норма, найденная по ключевым словам, с синтетической уверенностью
type CodeMatch struct {
	CodeEntry
	Confidence float64
}

// ViolationRecord связь дефекта с нормой
type ViolationRecord struct {
	DefectRef       string           `json:"defect"`
	Location        string           `json:"location"`
	CodeID          string           `json:"code"`
	CodeTitle       string           `json:"code_title"`
	CodeDescription string           `json:"code_description"`
	Category        string           `json:"category,omitempty"`
	Status          ComplianceStatus `json:"status"`
	Severity        Severity         `json:"severity"`
	Resolution      Resolution       `json:"resolution"`
	Confidence      float64          `json:"confidence,omitempty"` // только для ResolutionKeyword
}

// ComplianceResult итог проверки соответствия
type ComplianceResult struct {
	Violations     []ViolationRecord
	CodeReferences []string // упорядоченное множество процитированных норм
}
