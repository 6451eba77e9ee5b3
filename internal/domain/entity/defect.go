package entity

import (
	"sort"
	"strings"
)

// Severity уровень серьёзности дефекта
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// MinConfidence порог уверенности, ниже которого дефект не показывается
const MinConfidence = 0.60

// RejectedDefectType тип служебного дефекта для отклонённого изображения
const RejectedDefectType = "Image Not Accepted"

// Rank возвращает порядок сортировки: High=0, Medium=1, Low=2
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// ParseSeverity разбирает серьёзность из ответа бэкенда без учёта регистра
func ParseSeverity(raw string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "critical":
		return SeverityHigh, true
	case "medium", "moderate":
		return SeverityMedium, true
	case "low", "minor":
		return SeverityLow, true
	}
	return "", false
}

// Candidate сырой кандидат в дефекты от одного или нескольких бэкендов анализа
type Candidate struct {
	Type          string   // категория, например "Structural Crack"
	Severity      Severity // серьёзность
	Location      string   // где найден
	Confidence    float64  // уверенность в [0,1]
	Description   string   // пояснение
	CodeRef       string   // идентификатор строительной нормы, может быть пустым
	EstimatedCost int      // оценка стоимости ремонта
	Sources       []string // бэкенды, которые нашли кандидата
}

// SingleSource сообщает, что кандидата подтвердил только один бэкенд
func (c Candidate) SingleSource() bool {
	return len(c.Sources) <= 1
}

// Defect обнаруженный дефект объекта недвижимости.
// После создания не изменяется.
type Defect struct {
	Type          string   `json:"type"`
	Severity      Severity `json:"severity"`
	Location      string   `json:"location"`
	Confidence    float64  `json:"confidence"`
	Description   string   `json:"description"`
	CodeRef       string   `json:"code_ref,omitempty"`
	EstimatedCost int      `json:"estimated_cost"`
	SourceImage   string   `json:"source_image"`
	Sources       []string `json:"sources,omitempty"`
}

// NewDefect превращает кандидата в дефект конкретного изображения
func NewDefect(c Candidate, sourceImage string) Defect {
	cost := c.EstimatedCost
	if cost < 0 {
		cost = 0
	}
	var sources []string
	if len(c.Sources) > 0 {
		sources = append(sources, c.Sources...)
	}
	return Defect{
		Type:          c.Type,
		Severity:      c.Severity,
		Location:      c.Location,
		Confidence:    c.Confidence,
		Description:   c.Description,
		CodeRef:       c.CodeRef,
		EstimatedCost: cost,
		SourceImage:   sourceImage,
		Sources:       sources,
	}
}

// NewRejectedDefect создаёт служебный дефект для изображения, не прошедшего проверку
func NewRejectedDefect(sourceImage, reason string) Defect {
	return Defect{
		Type:          RejectedDefectType,
		Severity:      SeverityLow,
		Location:      "N/A",
		Confidence:    0,
		Description:   reason,
		EstimatedCost: 0,
		SourceImage:   sourceImage,
	}
}

// IsRejected true для служебного дефекта отклонённого изображения
func (d Defect) IsRejected() bool {
	return d.Type == RejectedDefectType && d.Confidence == 0
}

// IsStructural true для категорий, влияющих на несущие конструкции
func (d Defect) IsStructural() bool {
	switch d.Type {
	case "Structural Crack", "Foundation Settlement", "Roof Damage":
		return true
	}
	return false
}

// SortBySeverityAndConfidence упорядочивает дефекты: сначала серьёзные, при равенстве более уверенные
func SortBySeverityAndConfidence(defects []Defect) {
	sort.SliceStable(defects, func(i, j int) bool {
		ri, rj := defects[i].Severity.Rank(), defects[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return defects[i].Confidence > defects[j].Confidence
	})
}

// SortBySeverity упорядочивает только по серьёзности, сохраняя исходный порядок при равенстве
func SortBySeverity(defects []Defect) {
	sort.SliceStable(defects, func(i, j int) bool {
		return defects[i].Severity.Rank() < defects[j].Severity.Rank()
	})
}

// DefectArea представляет область изображения с обнаруженным дефектом
type DefectArea struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
	Area   int // площадь области в пикселях
}

// Center возвращает координаты центра дефекта
func (d DefectArea) Center() (x, y int) {
	return d.X + d.Width/2, d.Y + d.Height/2
}

// Elongated true для вытянутых областей, похожих на трещины
func (d DefectArea) Elongated() bool {
	if d.Width == 0 || d.Height == 0 {
		return false
	}
	aspect := float64(d.Width) / float64(d.Height)
	return aspect >= 3 || aspect <= 1.0/3
}
