package vision

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
)

// SyntheticBackendName имя синтетического бэкенда в поле Sources
const SyntheticBackendName = "synthetic"

// defectTemplate шаблон дефекта для синтетического генератора
type defectTemplate struct {
	Type     string
	Severity []entity.Severity
	Location []string
	BaseCost int
	Codes    []string
}

var (
	highMedium = []entity.Severity{entity.SeverityHigh, entity.SeverityMedium}
	mediumLow  = []entity.Severity{entity.SeverityMedium, entity.SeverityLow}
)

// catalog фиксированный набор шаблонов; порядок влияет на воспроизводимость
var catalog = []defectTemplate{
	{"Structural Crack", highMedium, []string{"Foundation Wall", "Basement Wall", "Exterior Wall", "Interior Wall"}, 50000, []string{"R403.1", "R302.1", "R602.10"}},
	{"Water Damage", highMedium, []string{"Ceiling - Kitchen", "Ceiling - Bathroom", "Basement", "Attic"}, 35000, []string{"R806.1", "R302.1"}},
	{"Electrical Hazard", highMedium, []string{"Main Panel", "Outlet - Kitchen", "Exposed Wiring", "Junction Box"}, 18000, []string{"E3404.1", "E3605.1"}},
	{"Plumbing Leak", mediumLow, []string{"Under Sink", "Bathroom Fixture", "Water Heater", "Supply Line"}, 8000, []string{"P2903.2"}},
	{"Paint Deterioration", mediumLow, []string{"Exterior Wall", "Window Frame", "Door Frame", "Siding"}, 12000, []string{"R703.1"}},
	{"Roof Damage", highMedium, []string{"Shingles", "Flashing", "Roof Vent", "Gutter"}, 45000, []string{"R905.2", "R806.1"}},
	{"Window Damage", mediumLow, []string{"Living Room", "Bedroom", "Kitchen", "Bathroom"}, 7000, []string{"R308.4"}},
	{"HVAC Issue", mediumLow, []string{"Air Handler", "Condensate Line", "Ductwork", "Thermostat"}, 15000, []string{"M1411.3"}},
	{"Foundation Settlement", highMedium, []string{"Corner Foundation", "Front Foundation", "Rear Foundation", "Crawlspace"}, 75000, []string{"R403.1"}},
	{"Moisture Intrusion", mediumLow, []string{"Basement", "Crawlspace", "Attic", "Wall Cavity"}, 22000, []string{"R302.1", "R806.1"}},
}

// SyntheticBackend детерминированный генератор дефектов.
// Одни и те же байты изображения всегда дают один и тот же набор дефектов.
type SyntheticBackend struct{}

// NewSyntheticBackend создаёт синтетический бэкенд
func NewSyntheticBackend() *SyntheticBackend {
	return &SyntheticBackend{}
}

func (b *SyntheticBackend) Name() string {
	return SyntheticBackendName
}

// Infer генерирует от 2 до 5 дефектов по хешу содержимого изображения
func (b *SyntheticBackend) Infer(ctx context.Context, imageData []byte, notes string) ([]entity.Candidate, error) {
	seed := xxhash.Sum64(imageData)
	rng := rand.New(rand.NewSource(int64(seed)))

	count := 2 + int(seed%4)
	picked := rng.Perm(len(catalog))[:count]

	candidates := make([]entity.Candidate, 0, count)
	for _, idx := range picked {
		t := catalog[idx]
		severity := t.Severity[rng.Intn(len(t.Severity))]
		location := t.Location[rng.Intn(len(t.Location))]
		jitter := 0.8 + rng.Float64()*0.4
		cost := int(float64(t.BaseCost) * severityCostMultiplier(severity) * jitter)
		code := t.Codes[rng.Intn(len(t.Codes))]
		confidence := math.Round((0.75+rng.Float64()*0.2)*100) / 100

		candidates = append(candidates, entity.Candidate{
			Type:          t.Type,
			Severity:      severity,
			Location:      location,
			Confidence:    confidence,
			Description:   describe(t.Type, location, severity),
			CodeRef:       code,
			EstimatedCost: cost,
			Sources:       []string{SyntheticBackendName},
		})
	}
	return candidates, nil
}

func severityCostMultiplier(s entity.Severity) float64 {
	switch s {
	case entity.SeverityHigh:
		return 1.0
	case entity.SeverityMedium:
		return 0.6
	default:
		return 0.3
	}
}

// describe формирует текст описания по типу дефекта
func describe(defectType, location string, severity entity.Severity) string {
	high := severity == entity.SeverityHigh
	pick := func(ifHigh, otherwise string) string {
		if high {
			return ifHigh
		}
		return otherwise
	}

	switch defectType {
	case "Structural Crack":
		return fmt.Sprintf("%s crack detected in %s, requires structural assessment", pick("Significant", "Visible"), location)
	case "Water Damage":
		return fmt.Sprintf("%s water damage observed at %s, potential leak source", pick("Active", "Historical"), location)
	case "Electrical Hazard":
		return fmt.Sprintf("%s electrical safety concern at %s", pick("Critical", "Notable"), location)
	case "Plumbing Leak":
		return fmt.Sprintf("Plumbing leak detected at %s, %s repair needed", location, pick("immediate", "timely"))
	case "Paint Deterioration":
		return fmt.Sprintf("Paint deterioration on %s, indicating potential exposure issues", location)
	case "Roof Damage":
		return fmt.Sprintf("Roof damage at %s, %s repair recommended", location, pick("urgent", "scheduled"))
	case "Window Damage":
		return fmt.Sprintf("Window damage in %s, impacts energy efficiency and security", location)
	case "HVAC Issue":
		return fmt.Sprintf("HVAC system issue at %s, affecting comfort and efficiency", location)
	case "Foundation Settlement":
		return fmt.Sprintf("Foundation settlement near %s, structural integrity concern", location)
	case "Moisture Intrusion":
		return fmt.Sprintf("Moisture intrusion in %s, risk of mold and material damage", location)
	}
	return fmt.Sprintf("%s detected at %s", defectType, location)
}

// Проверка реализации интерфейса
var _ port.AnalysisBackend = (*SyntheticBackend)(nil)
