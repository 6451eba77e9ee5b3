//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
)

// ContourBackend ищет трещины и пятна по контурам изображения (OpenCV)
type ContourBackend struct {
	ContourSettings
}

// NewContourBackend создаёт бэкенд с настройками по умолчанию
func NewContourBackend() *ContourBackend {
	return &ContourBackend{ContourSettings: DefaultContourSettings()}
}

func (d *ContourBackend) Name() string {
	return ContourBackendName
}

// Infer проверяет качество снимка, находит контуры и превращает их в кандидатов
func (d *ContourBackend) Infer(ctx context.Context, imageData []byte, notes string) ([]entity.Candidate, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	// mat может быть заменён уменьшенной копией ниже
	defer func() { mat.Close() }()

	if err := d.checkImageQuality(mat); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Приводим изображение к стандартному размеру для стабильных порогов.
	if mat.Cols() > d.MaxSide || mat.Rows() > d.MaxSide {
		scale := float64(d.MaxSide) / float64(max(mat.Cols(), mat.Rows()))
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(int(float64(mat.Cols())*scale), int(float64(mat.Rows())*scale)), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := int(float64(mat.Cols()*mat.Rows()) * d.MinAreaRatio)
	regions := make([]entity.DefectArea, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		area := rect.Dx() * rect.Dy()
		if area < minArea || rect.Dy() == 0 {
			continue
		}
		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect < d.MinAspectRatio || aspect > d.MaxAspectRatio {
			continue
		}
		regions = append(regions, entity.DefectArea{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
			Area:   area,
		})
	}

	return candidatesFromRegions(regions, mat.Cols(), mat.Rows()), nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

// checkImageQuality отсеивает слишком мелкие, размытые, пере- и недоэкспонированные снимки и блики
func (d *ContourBackend) checkImageQuality(mat gocv.Mat) error {
	if mat.Empty() {
		return errors.New("quality gate failed: empty image")
	}

	if mat.Cols() < d.MinImageSide || mat.Rows() < d.MinImageSide {
		return fmt.Errorf("quality gate failed: image is too small (%dx%d)", mat.Cols(), mat.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)
	if r := ratioOfMask(edges); r < d.MinSharpnessEdgeRatio {
		return fmt.Errorf("quality gate failed: image is blurry (edge_ratio=%.4f)", r)
	}

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	if r := ratioOfMask(bright); r > d.MaxOverexposedRatio {
		return fmt.Errorf("quality gate failed: overexposed image (ratio=%.4f)", r)
	}

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	if r := ratioOfMask(dark); r > d.MaxUnderexposedRatio {
		return fmt.Errorf("quality gate failed: underexposed image (ratio=%.4f)", r)
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)
	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return errors.New("quality gate failed: invalid hsv channels")
	}

	lowSat := gocv.NewMat()
	defer lowSat.Close()
	gocv.Threshold(channels[1], &lowSat, 40, 255, gocv.ThresholdBinaryInv)

	highVal := gocv.NewMat()
	defer highVal.Close()
	gocv.Threshold(channels[2], &highVal, 245, 255, gocv.ThresholdBinary)

	glare := gocv.NewMat()
	defer glare.Close()
	gocv.BitwiseAnd(lowSat, highVal, &glare)
	if r := ratioOfMask(glare); r > d.MaxGlareRatio {
		return fmt.Errorf("quality gate failed: too much glare (ratio=%.4f)", r)
	}

	return nil
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

// Проверка реализации интерфейса
var _ port.AnalysisBackend = (*ContourBackend)(nil)
