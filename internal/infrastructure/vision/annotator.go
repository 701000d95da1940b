//go:build gocv
// +build gocv

package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

// Annotator рисует рамки дефектов цветами из таблицы и пишет кадр на диск
type Annotator struct {
	Thickness int
}

// NewAnnotator создаёт рисовальщик с толщиной линии 2 px.
func NewAnnotator() *Annotator {
	return &Annotator{Thickness: 2}
}

// Annotate рисует рамки на копии кадра; исходный кадр не меняется.
func (a *Annotator) Annotate(frame port.Frame, detections []entity.FinalDetection, colors entity.ColorTable, outPath string) error {
	mat, err := asMat(frame)
	if err != nil {
		return err
	}

	canvas := mat.Clone()
	defer canvas.Close()

	for _, d := range detections {
		gocv.Rectangle(&canvas, d.Box.Rect(), colors.Lookup(d.Label), a.Thickness)
	}

	if ok := gocv.IMWrite(outPath, canvas); !ok {
		return fmt.Errorf("failed to write annotated image %s", outPath)
	}

	return nil
}

var _ port.Annotator = (*Annotator)(nil)
