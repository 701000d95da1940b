package entity

// UserState состояние оператора в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото платы
	StateProcessing    UserState = "processing"     // Идёт проверка платы
)

// User оператор, отправляющий снимки плат боту
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние
	Model  string    // Имя набора параметров детекции; пустое имя означает набор по умолчанию
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// Busy сообщает, что проверка предыдущего снимка ещё идёт
func (u *User) Busy() bool {
	return u.State == StateProcessing
}
