package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pcb-vision/config"
	telegram "pcb-vision/internal/api"
	"pcb-vision/internal/container"
	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/infrastructure/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	// Собираем сервисы приложения
	appContainer, err := container.New(ctx, cfg, userRepo)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			log.Printf("Close error: %v", err)
		}
	}()

	// Пути к снимкам в аргументах: разовая проверка без бота
	if images := os.Args[1:]; len(images) > 0 {
		if !inspectFiles(ctx, appContainer, cfg.ModelName, images) {
			_ = appContainer.Close()
			os.Exit(1)
		}
		return
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	log.Println("Bot is running...")
	if err := bot.Run(ctx); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped")
}

type fileReport struct {
	Image  string                 `json:"image"`
	Board  *bool                  `json:"board_detected,omitempty"`
	Result *entity.PipelineResult `json:"result"`
	Error  string                 `json:"error,omitempty"`
}

// inspectFiles печатает JSON-отчёт по каждому снимку; false, если хоть один не обработан.
func inspectFiles(ctx context.Context, c *container.Container, model string, images []string) bool {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	ok := true
	for _, image := range images {
		report := fileReport{Image: image}

		out, err := c.InspectionService.InspectFile(ctx, image, model)
		if out != nil {
			report.Result = out.Result
			if errors.Is(err, entity.ErrNoBoard) || out.Presence.Detected {
				detected := out.Presence.Detected
				report.Board = &detected
			}
		}
		if err != nil {
			report.Error = err.Error()
			if !errors.Is(err, entity.ErrNoBoard) && !errors.Is(err, entity.ErrDegenerateExposure) {
				ok = false
			}
		}

		if err := enc.Encode(report); err != nil {
			log.Printf("Failed to write report: %v", err)
			ok = false
		}
	}
	return ok
}
