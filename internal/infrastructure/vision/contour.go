package vision

import (
	"fmt"

	"safenest/internal/domain/entity"
)

// ContourBackendName имя контурного бэкенда в поле Sources
const ContourBackendName = "contour"

// ContourSettings пороги качества снимка и фильтры областей
type ContourSettings struct {
	MinAreaRatio          float64
	MaxAspectRatio        float64
	MinAspectRatio        float64
	MaxSide               int
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
}

// DefaultContourSettings пороги, подобранные для фото помещений
func DefaultContourSettings() ContourSettings {
	return ContourSettings{
		MinAreaRatio:          0.001,
		MinAspectRatio:        0.05,
		MaxAspectRatio:        20.0,
		MaxSide:               1024,
		MinImageSide:          400,
		MinSharpnessEdgeRatio: 0.008,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.08,
	}
}

// regionClass описание класса областей: вытянутые похожи на трещины, компактные на пятна
type regionClass struct {
	Type     string
	BaseCost int
	Describe string
}

var (
	crackClass  = regionClass{Type: "Surface Crack", BaseCost: 20000, Describe: "Linear surface discontinuity detected"}
	damageClass = regionClass{Type: "Surface Damage", BaseCost: 12000, Describe: "Irregular surface damage or staining detected"}
)

// candidatesFromRegions сводит найденные области в не более чем два кандидата:
// по одному на класс, с местом по центру самой крупной области.
func candidatesFromRegions(regions []entity.DefectArea, width, height int) []entity.Candidate {
	if len(regions) == 0 || width <= 0 || height <= 0 {
		return nil
	}

	type group struct {
		class   regionClass
		largest entity.DefectArea
		area    int
		count   int
	}
	groups := map[string]*group{}
	var order []string

	for _, r := range regions {
		class := damageClass
		if r.Elongated() {
			class = crackClass
		}
		g, ok := groups[class.Type]
		if !ok {
			g = &group{class: class}
			groups[class.Type] = g
			order = append(order, class.Type)
		}
		g.count++
		g.area += r.Area
		if r.Area > g.largest.Area {
			g.largest = r
		}
	}

	total := float64(width * height)
	out := make([]entity.Candidate, 0, len(order))
	for _, name := range order {
		g := groups[name]
		coverage := float64(g.area) / total
		severity := severityForCoverage(coverage)
		confidence := 0.6 + coverage*2
		if confidence > 0.9 {
			confidence = 0.9
		}
		location := regionLocation(g.largest, width, height)
		out = append(out, entity.Candidate{
			Type:          g.class.Type,
			Severity:      severity,
			Location:      location,
			Confidence:    confidence,
			Description:   fmt.Sprintf("%s in the %s (%d region(s), %.1f%% of frame)", g.class.Describe, location, g.count, coverage*100),
			EstimatedCost: int(float64(g.class.BaseCost) * severityCostMultiplier(severity)),
			Sources:       []string{ContourBackendName},
		})
	}
	return out
}

func severityForCoverage(coverage float64) entity.Severity {
	switch {
	case coverage >= 0.10:
		return entity.SeverityHigh
	case coverage >= 0.02:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}

// regionLocation называет часть кадра по центру области, например "upper-left area of the photo"
func regionLocation(r entity.DefectArea, width, height int) string {
	x, y := r.Center()

	vertical := "middle"
	switch {
	case y < height/3:
		vertical = "upper"
	case y >= 2*height/3:
		vertical = "lower"
	}
	horizontal := "center"
	switch {
	case x < width/3:
		horizontal = "left"
	case x >= 2*width/3:
		horizontal = "right"
	}

	if vertical == "middle" && horizontal == "center" {
		return "center of the photo"
	}
	return fmt.Sprintf("%s-%s area of the photo", vertical, horizontal)
}
