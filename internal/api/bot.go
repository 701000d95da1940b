package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "pcb-vision/internal/application"
	"pcb-vision/internal/container"
	"pcb-vision/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для контроля качества печатных плат.

📸 Отправьте мне фото платы, и я найду дефекты пайки и монтажа.

📋 Команды:
/check — начать проверку платы
/model — выбрать набор параметров детекции
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check и фото платы
2️⃣ Бот убедится, что на снимке есть плата
3️⃣ Вы получите фото с рамками дефектов и сводку по типам

💡 Рекомендации:
• Плата должна занимать большую часть кадра
• Снимайте при ровном освещении без бликов
• Используйте контрастный однотонный фон

📋 Команды:
/check — начать проверку
/model <имя> — выбрать набор параметров
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото платы для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото платы для проверки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Проверяю плату..."
	msgBusy            = "⏳ Предыдущий снимок ещё проверяется, подождите."
	msgNoBoard         = "🔍 Плата на снимке не найдена. Сфотографируйте плату крупнее на контрастном фоне."
	msgNotGradable     = "⚠️ Снимок не подходит для оценки (слишком тёмный, пересвеченный или повреждённый). Сделайте другое фото."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Bot представляет Telegram-бота
type Bot struct {
	api         *tgbotapi.BotAPI
	users       *app.UserService
	inspections *app.InspectionService
	pipeline    *app.DetectionPipeline

	// проверки, запущенные из handlePhoto
	inflight sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		users:       c.UserService,
		inspections: c.InspectionService,
		pipeline:    c.Pipeline,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
// Перед возвратом дожидается незавершённых проверок.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.inflight.Wait()
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
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
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, user)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	switch msg.Command() {
	case "start":
		b.setState(ctx, user, b.users.Cancel)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		if user.Busy() {
			b.sendMessage(msg.Chat.ID, msgBusy)
			return
		}
		b.setState(ctx, user, b.users.BeginCheck)
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "cancel":
		b.setState(ctx, user, b.users.Cancel)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	case "model":
		b.handleModel(ctx, msg, user)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handleModel показывает или меняет набор параметров детекции
func (b *Bot) handleModel(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		b.sendMessage(msg.Chat.ID, formatProfiles(user.Model, b.pipeline.Profiles()))
		return
	}

	if !b.pipeline.HasProfile(name) && name != entity.DefaultProfile {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("❓ Набор «%s» не настроен.\n%s", name, formatProfiles(user.Model, b.pipeline.Profiles())))
		return
	}

	if _, err := b.users.SelectModel(ctx, user.ID, user.ChatID, name); err != nil {
		log.Printf("Error selecting model: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Набор параметров: %s", name))
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	if user.Busy() {
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	}

	// Устанавливаем состояние "обработка"
	b.setState(ctx, user, b.users.BeginProcessing)
	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	b.track(func() {
		defer b.setState(ctx, user, b.users.Cancel)

		imageData, err := b.downloadFile(ctx, photo.FileID)
		if err != nil {
			log.Printf("Error downloading photo: %v", err)
			b.sendMessage(msg.Chat.ID, msgProcessingError)
			return
		}

		out, err := b.inspections.InspectPhoto(ctx, imageData, user.Model)
		b.reply(msg.Chat.ID, out, err)
	})
}

// track запускает fn в фоне; Run дожидается её завершения
func (b *Bot) track(fn func()) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		fn()
	}()
}

// reply отправляет оператору результат проверки
func (b *Bot) reply(chatID int64, out *app.InspectionOutput, err error) {
	switch {
	case errors.Is(err, entity.ErrNoBoard):
		b.sendMessage(chatID, msgNoBoard)
		return
	case errors.Is(err, entity.ErrInvalidFrame), errors.Is(err, entity.ErrDegenerateExposure):
		log.Printf("Photo not gradable: %v", err)
		b.sendMessage(chatID, msgNotGradable)
		return
	case errors.Is(err, entity.ErrInferenceFailed):
		log.Printf("Inference unavailable: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	case err != nil:
		log.Printf("Inspection failed: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	caption := formatResult(out.Result)
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(out.Result.AnnotatedImagePath))
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending annotated photo: %v", err)
		b.sendMessage(chatID, caption)
	}
}

func (b *Bot) setState(ctx context.Context, user *entity.User, transition func(ctx context.Context, userID, chatID int64) (*entity.User, error)) {
	updated, err := transition(ctx, user.ID, user.ChatID)
	if err != nil {
		log.Printf("Error updating user state: %v", err)
		return
	}
	user.SetState(updated.State)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
