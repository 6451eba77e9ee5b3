package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "safenest/internal/application"
	"safenest/internal/container"
	"safenest/internal/domain/entity"
	"safenest/internal/logger"
)

const (
	msgStart = `👋 Привет! Я бот для проверки жилых объектов.

📸 Пришлите фото объекта, и я найду дефекты, сверю их со строительными нормами и оценю риск.

📋 Команды:
/inspect — начать проверку
/done — закончить загрузку и получить отчёт
/report — показать последний отчёт
/help — справка
/cancel — отменить текущую проверку`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /inspect
2️⃣ Загрузите одно или несколько фото объекта файлом (PNG)
3️⃣ При желании напишите заметки текстом
4️⃣ Отправьте /done и получите отчёт

💡 Рекомендации:
• Отправляйте фото как файл, а не как сжатое фото
• Принимаются только PNG-изображения
• Снимайте при хорошем освещении

📋 Команды:
/inspect — начать проверку
/done — получить отчёт
/report — последний отчёт
/cancel — отменить проверку`

	msgAwaitingImages  = "📸 Загрузите фото объекта файлом (PNG). Текстом можно добавить заметки. Когда закончите, отправьте /done."
	msgImageAdded      = "✅ Фото %q добавлено (всего %d). Отправьте ещё или /done."
	msgNotesAdded      = "📝 Заметка добавлена."
	msgCancelled       = "❌ Проверка отменена. Отправьте /inspect для новой проверки."
	msgStartInspection = "📸 Чтобы начать проверку, отправьте /inspect."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Анализирую %d фото..."
	msgNoImages        = "📭 Вы ещё не загрузили ни одного фото."
	msgNoReport        = "📭 Отчётов пока нет. Отправьте /inspect."
	msgAlreadyRunning  = "⏳ Проверка уже идёт, дождитесь отчёта."
	msgProcessingError = "⚠️ Не удалось обработать запрос. Попробуйте ещё раз."
	msgDownloadError   = "⚠️ Не удалось скачать файл. Попробуйте отправить его ещё раз."
)

// photoFileName имя для сжатых фото Telegram: они всегда приходят в JPEG
const photoFileName = "photo.jpg"

// Bot представляет Telegram-бота
type Bot struct {
	api         *tgbotapi.BotAPI
	users       *app.UserService
	inspections *app.InspectionService
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("authorized on telegram", "account", api.Self.UserName)

	return &Bot{
		api:         api,
		users:       c.UserService,
		inspections: c.InspectionService,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Файл сохраняет исходное имя, сжатое фото всегда JPEG
	if msg.Document != nil {
		b.handleUpload(ctx, msg, msg.Document.FileID, msg.Document.FileName)
		return
	}
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleUpload(ctx, msg, photo.FileID, photoFileName)
		return
	}

	if msg.Text != "" {
		b.handleNotes(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgStartInspection)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.users.Get(ctx, userID, chatID); err != nil {
			b.fail(chatID, "load session", err)
			return
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "inspect":
		if _, err := b.inspections.BeginInspection(ctx, userID, chatID); err != nil {
			if errors.Is(err, app.ErrInspectionRunning) {
				b.sendMessage(chatID, msgAlreadyRunning)
				return
			}
			b.fail(chatID, "begin inspection", err)
			return
		}
		b.sendMessage(chatID, msgAwaitingImages)

	case "done":
		b.handleDone(ctx, msg)

	case "report":
		report, err := b.inspections.LastReport(ctx, userID, chatID)
		if err != nil {
			if errors.Is(err, app.ErrNoReport) {
				b.sendMessage(chatID, msgNoReport)
				return
			}
			b.fail(chatID, "load report", err)
			return
		}
		b.sendMessage(chatID, FormatReport(report))

	case "cancel":
		if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
			if errors.Is(err, app.ErrInspectionRunning) {
				b.sendMessage(chatID, msgAlreadyRunning)
				return
			}
			b.fail(chatID, "cancel", err)
			return
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleUpload скачивает файл и добавляет его в текущую проверку
func (b *Bot) handleUpload(ctx context.Context, msg *tgbotapi.Message, fileID, fileName string) {
	chatID := msg.Chat.ID

	user, err := b.users.Get(ctx, msg.From.ID, chatID)
	if err != nil {
		b.fail(chatID, "load session", err)
		return
	}
	if user.State != entity.StateAwaitingImages {
		b.sendMessage(chatID, msgStartInspection)
		return
	}

	data, err := b.downloadFile(fileID)
	if err != nil {
		logger.Error("download failed", "chat_id", chatID, "file", fileName, "error", err)
		b.sendMessage(chatID, msgDownloadError)
		return
	}

	count, err := b.inspections.AddImage(ctx, msg.From.ID, chatID, fileName, data)
	if err != nil {
		if errors.Is(err, app.ErrNoActiveInspection) {
			b.sendMessage(chatID, msgStartInspection)
			return
		}
		b.fail(chatID, "add image", err)
		return
	}

	// Подпись к фото считаем заметкой
	if msg.Caption != "" {
		if err := b.inspections.AddNotes(ctx, msg.From.ID, chatID, msg.Caption); err != nil {
			logger.Warn("caption not saved", "chat_id", chatID, "error", err)
		}
	}

	b.sendMessage(chatID, fmt.Sprintf(msgImageAdded, fileName, count))
}

func (b *Bot) handleNotes(ctx context.Context, msg *tgbotapi.Message) {
	err := b.inspections.AddNotes(ctx, msg.From.ID, msg.Chat.ID, msg.Text)
	switch {
	case errors.Is(err, app.ErrNoActiveInspection):
		b.sendMessage(msg.Chat.ID, msgStartInspection)
	case err != nil:
		b.fail(msg.Chat.ID, "add notes", err)
	default:
		b.sendMessage(msg.Chat.ID, msgNotesAdded)
	}
}

// handleDone переводит сессию в обработку сразу, а сам анализ запускает в отдельной горутине,
// чтобы не блокировать других пользователей
func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	batch, err := b.inspections.Start(ctx, userID, chatID)
	switch {
	case errors.Is(err, app.ErrInspectionRunning):
		b.sendMessage(chatID, msgAlreadyRunning)
		return
	case errors.Is(err, app.ErrNoImages):
		b.sendMessage(chatID, msgNoImages)
		return
	case errors.Is(err, app.ErrNoActiveInspection):
		b.sendMessage(chatID, msgStartInspection)
		return
	case err != nil:
		b.fail(chatID, "start inspection", err)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf(msgProcessing, len(batch.Images)))

	go func() {
		report, err := b.inspections.Finish(ctx, userID, chatID, batch)
		if err != nil {
			b.fail(chatID, "complete inspection", err)
			return
		}
		b.sendMessage(chatID, FormatReport(report))
	}()
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) fail(chatID int64, op string, err error) {
	logger.Error("bot operation failed", "op", op, "chat_id", chatID, "error", err)
	b.sendMessage(chatID, msgProcessingError)
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.Error("send message failed", "chat_id", chatID, "error", err)
	}
}
