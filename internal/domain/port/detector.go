package port

import (
	"context"

	"pcb-vision/internal/domain/entity"
)

// Detector одна обученная модель детекции дефектов в составе ансамбля
type Detector interface {
	// Name идентификатор модели (имя файла или адрес сервиса)
	Name() string

	// Labels словарь классов модели
	Labels() entity.LabelSet

	// Detect запускает инференс с параметрами conf/iou/max_det самой модели.
	// Координаты возвращаются в пикселях кадра без обрезки.
	Detect(ctx context.Context, frame Frame, params entity.DetectionParams) ([]entity.RawBox, error)

	Close() error
}

// PresenceGate проверяет, есть ли в кадре печатная плата
type PresenceGate interface {
	// Detect не имеет побочных эффектов и безопасен для конкурентного вызова
	Detect(frame Frame) entity.PresenceResult
}
