package port

import (
	"context"

	"pcb-vision/internal/domain/entity"
)

// ResultPublisher отправляет итоги проверок внешним потребителям
type ResultPublisher interface {
	Publish(ctx context.Context, event *entity.InspectionEvent) error
}
