package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/fusion"
	"pcb-vision/internal/domain/port"
)

// Ensemble набор независимо обученных детекторов, загруженных один раз.
// Вызовы Detect одного детектора не должны идти конкурентно.
type Ensemble struct {
	members []port.Detector
}

// NewEnsemble собирает ансамбль; пустой ансамбль не допускается.
func NewEnsemble(members ...port.Detector) (*Ensemble, error) {
	if len(members) == 0 {
		return nil, entity.ErrNoModels
	}
	return &Ensemble{members: members}, nil
}

// Members имена моделей в порядке запуска
func (e *Ensemble) Members() []string {
	names := make([]string, len(e.members))
	for i, m := range e.members {
		names[i] = m.Name()
	}
	return names
}

// DetectAll запускает каждую модель, обрезает и фильтрует её рамки.
// Ошибка одной модели исключает только её вклад в этот запуск.
// Второй результат содержит количество принятых детекций каждой модели по меткам.
// Если не отработала ни одна модель, возвращается entity.ErrInferenceFailed.
func (e *Ensemble) DetectAll(ctx context.Context, frame port.Frame, params entity.DetectionParams) ([]entity.RawDetection, map[string]entity.DefectSummary, error) {
	w, h := frame.Width(), frame.Height()

	var detections []entity.RawDetection
	perModel := make(map[string]entity.DefectSummary, len(e.members))
	var errs []error

	for _, m := range e.members {
		name := m.Name()
		boxes, err := m.Detect(ctx, frame, params)
		if err != nil {
			log.Printf("Model %s inference failed: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		labels := m.Labels()
		summary := make(entity.DefectSummary)
		for _, raw := range boxes {
			box, ok := fusion.Admit(raw, w, h)
			if !ok {
				continue
			}
			label := labels.Resolve(raw.ClassID)
			detections = append(detections, entity.RawDetection{
				Box:        box,
				Label:      label,
				Confidence: raw.Confidence,
				Model:      name,
			})
			summary[label]++
		}
		perModel[name] = summary
	}

	if len(perModel) == 0 {
		return nil, nil, fmt.Errorf("%w: %w", entity.ErrInferenceFailed, errors.Join(errs...))
	}

	return detections, perModel, nil
}

// Close освобождает все модели ансамбля
func (e *Ensemble) Close() error {
	var errs []error
	for _, m := range e.members {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
