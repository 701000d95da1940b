package port

import (
	"context"

	"pcb-vision/internal/domain/entity"
)

// UserRepository хранилище операторов бота
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// SetModel выбирает набор параметров детекции для пользователя
	SetModel(ctx context.Context, userID int64, model string) error
}
