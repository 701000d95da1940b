package entity

import "image"

// Границы геометрического фильтра кандидата на плату (включительно)
const (
	MinBoardAreaRatio   = 0.05
	MaxBoardAreaRatio   = 0.95
	MinBoardAspectRatio = 0.3
	MaxBoardAspectRatio = 3.5
)

// PresenceResult итог проверки наличия платы в кадре.
// BBox и AreaRatio имеют смысл только при Detected.
type PresenceResult struct {
	Detected  bool            `json:"detected"`
	BBox      image.Rectangle `json:"bbox"`
	AreaRatio float64         `json:"area_ratio"`
}

// NotDetected отрицательный результат проверки
func NotDetected() PresenceResult {
	return PresenceResult{}
}

// ClassifyBoard применяет геометрические фильтры к крупнейшему контуру:
// доля площади контура в кадре и соотношение сторон его ограничивающего прямоугольника.
func ClassifyBoard(contourArea float64, frameArea int, bbox image.Rectangle) PresenceResult {
	if frameArea <= 0 {
		return NotDetected()
	}

	areaRatio := contourArea / float64(frameArea)
	if areaRatio < MinBoardAreaRatio || areaRatio > MaxBoardAreaRatio {
		return NotDetected()
	}

	w, h := bbox.Dx(), bbox.Dy()
	if w <= 0 || h <= 0 {
		return NotDetected()
	}
	aspect := float64(w) / float64(h)
	if inv := float64(h) / float64(w); inv > aspect {
		aspect = inv
	}
	if aspect < MinBoardAspectRatio || aspect > MaxBoardAspectRatio {
		return NotDetected()
	}

	return PresenceResult{Detected: true, BBox: bbox, AreaRatio: areaRatio}
}
