// Package fusion объединяет ответы моделей ансамбля в один набор дефектов.
package fusion

import "pcb-vision/internal/domain/entity"

// Пороги отсечения вырожденных рамок
const (
	MinBoxWidth     = 4
	MinBoxHeight    = 4
	MinBoxArea      = 50
	MinBoxAreaRatio = 0.0001
	MaxBoxAreaRatio = 0.95
)

// Admit обрезает рамку модели границами кадра w x h и решает, пропускать ли её дальше.
func Admit(raw entity.RawBox, w, h int) (entity.Box, bool) {
	if w <= 0 || h <= 0 {
		return entity.Box{}, false
	}

	box := raw.Truncate().Clip(w, h)
	bw, bh := box.Width(), box.Height()
	if bw < MinBoxWidth || bh < MinBoxHeight {
		return entity.Box{}, false
	}

	area := bw * bh
	if area < MinBoxArea {
		return entity.Box{}, false
	}

	ratio := float64(area) / float64(w*h)
	if ratio < MinBoxAreaRatio || ratio > MaxBoxAreaRatio {
		return entity.Box{}, false
	}

	return box, true
}
