//go:build !gocv
// +build !gocv

package vision

import (
	"errors"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// DefaultInputSize сторона квадратного входа сети
const DefaultInputSize = 640

// FrameSource заглушка источника кадров (без OpenCV).
type FrameSource struct{}

// NewFrameSource создаёт источник-заглушку.
func NewFrameSource() *FrameSource {
	return &FrameSource{}
}

// Load возвращает ошибку, если сборка без тега gocv.
func (s *FrameSource) Load(path string) (port.Frame, error) {
	_ = path
	return nil, errNoGoCV
}

// PresenceGate заглушка детектора платы.
type PresenceGate struct{}

// NewPresenceGate создаёт детектор-заглушку.
func NewPresenceGate() *PresenceGate {
	return &PresenceGate{}
}

// Detect без OpenCV плата никогда не обнаруживается.
func (g *PresenceGate) Detect(frame port.Frame) entity.PresenceResult {
	_ = frame
	return entity.NotDetected()
}

// Annotator заглушка рисовальщика.
type Annotator struct {
	Thickness int
}

// NewAnnotator создаёт рисовальщик-заглушку.
func NewAnnotator() *Annotator {
	return &Annotator{Thickness: 2}
}

// Annotate возвращает ошибку, если сборка без тега gocv.
func (a *Annotator) Annotate(frame port.Frame, detections []entity.FinalDetection, colors entity.ColorTable, outPath string) error {
	_ = frame
	_ = detections
	_ = colors
	_ = outPath
	return errNoGoCV
}

// LoadDetectors возвращает ошибку, если сборка без тега gocv.
func LoadDetectors(ref string, inputSize int) ([]port.Detector, error) {
	_ = ref
	_ = inputSize
	return nil, errNoGoCV
}

var (
	_ port.FrameSource  = (*FrameSource)(nil)
	_ port.PresenceGate = (*PresenceGate)(nil)
	_ port.Annotator    = (*Annotator)(nil)
)
