//go:build gocv
// +build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

// PresenceGate ищет в кадре печатную плату без обученной модели.
// Не хранит изменяемого состояния, безопасен для конкурентного вызова.
type PresenceGate struct {
	BlurKernel      int
	CLAHEClipLimit  float64
	CLAHETileSize   int
	BlockSize       int
	ThresholdC      float32
	MorphKernel     int
	MorphIterations int
}

// NewPresenceGate создаёт детектор платы с настройками по умолчанию.
func NewPresenceGate() *PresenceGate {
	return &PresenceGate{
		BlurKernel:      7,
		CLAHEClipLimit:  3.0,
		CLAHETileSize:   8,
		BlockSize:       35,
		ThresholdC:      10,
		MorphKernel:     9,
		MorphIterations: 2,
	}
}

// Detect проверяет наличие платы; пустой кадр даёт отрицательный результат.
func (g *PresenceGate) Detect(frame port.Frame) entity.PresenceResult {
	if frame == nil {
		return entity.NotDetected()
	}
	mat, err := asMat(frame)
	if err != nil {
		return entity.NotDetected()
	}
	return g.DetectMat(mat)
}

// DetectMat выполняет проверку над BGR-матрицей.
func (g *PresenceGate) DetectMat(img gocv.Mat) entity.PresenceResult {
	if img.Empty() || img.Rows() == 0 || img.Cols() == 0 {
		return entity.NotDetected()
	}
	frameArea := img.Rows() * img.Cols()

	src := img
	if img.Channels() == 1 {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(img, &bgr, gocv.ColorGrayToBGR)
		src = bgr
	}

	// Подавляем шум сенсора
	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(src, &blur, image.Pt(g.BlurKernel, g.BlurKernel), 0, 0, gocv.BorderDefault)

	// Выравниваем освещённость только по каналу L, цвет платы не искажается
	norm := g.normalizeLightness(blur)
	defer norm.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(norm, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.AdaptiveThreshold(gray, &mask, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, g.BlockSize, g.ThresholdC)

	// Закрытие (dilate x N, erode x N), затем ещё dilate x N
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(g.MorphKernel, g.MorphKernel))
	defer kernel.Close()
	for i := 0; i < g.MorphIterations; i++ {
		gocv.Dilate(mask, &mask, kernel)
	}
	for i := 0; i < g.MorphIterations; i++ {
		gocv.Erode(mask, &mask, kernel)
	}
	for i := 0; i < g.MorphIterations; i++ {
		gocv.Dilate(mask, &mask, kernel)
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return entity.NotDetected()
	}

	largest, largestArea := -1, -1.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > largestArea {
			largest, largestArea = i, area
		}
	}

	bbox := gocv.BoundingRect(contours.At(largest))
	return entity.ClassifyBoard(largestArea, frameArea, bbox)
}

func (g *PresenceGate) normalizeLightness(bgr gocv.Mat) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(bgr, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(g.CLAHEClipLimit, image.Pt(g.CLAHETileSize, g.CLAHETileSize))
	defer clahe.Close()

	l := gocv.NewMat()
	clahe.Apply(channels[0], &l)
	channels[0].Close()
	channels[0] = l

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	out := gocv.NewMat()
	gocv.CvtColor(merged, &out, gocv.ColorLabToBGR)
	return out
}

var _ port.PresenceGate = (*PresenceGate)(nil)
