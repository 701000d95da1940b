package port

import "pcb-vision/internal/domain/entity"

// Annotator рисует итоговые рамки на копии кадра и сохраняет результат
type Annotator interface {
	// Annotate записывает размеченный кадр в outPath, перезаписывая существующий файл
	Annotate(frame Frame, detections []entity.FinalDetection, colors entity.ColorTable, outPath string) error
}
