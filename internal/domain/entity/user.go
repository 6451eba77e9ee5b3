package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu       UserState = "main_menu"       // В главном меню
	StateAwaitingImages UserState = "awaiting_images" // Собираем фото и заметки для проверки
	StateProcessing     UserState = "processing"      // Идёт проверка
)

// User представляет пользователя бота и его текущую сессию проверки
type User struct {
	ID         int64             // Telegram User ID
	ChatID     int64             // Telegram Chat ID
	State      UserState         // Текущее состояние пользователя
	Pending    []ImageInput      // Фото, ожидающие проверки
	Notes      string            // Заметки инспектора
	LastReport *InspectionReport // Последний готовый отчёт
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

// ResetSession очищает собранные фото и заметки
func (u *User) ResetSession() {
	u.Pending = nil
	u.Notes = ""
}

// AppendNotes добавляет строку к заметкам инспектора
func (u *User) AppendNotes(text string) {
	if u.Notes == "" {
		u.Notes = text
		return
	}
	u.Notes += "\n" + text
}
