package container

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"pcb-vision/config"
	app "pcb-vision/internal/application"
	"pcb-vision/internal/domain/port"
	"pcb-vision/internal/infrastructure/inference"
	"pcb-vision/internal/infrastructure/messaging"
	"pcb-vision/internal/infrastructure/vision"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
	Pipeline          *app.DetectionPipeline

	publisher *messaging.KafkaPublisher
}

func New(ctx context.Context, cfg *config.Config, userRepo port.UserRepository) (*Container, error) {
	detection, err := config.LoadDetectionConfig(cfg.DetectionConfigPath)
	if err != nil {
		return nil, err
	}

	detectors, err := loadDetectors(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ensemble, err := app.NewEnsemble(detectors...)
	if err != nil {
		return nil, err
	}

	frames := vision.NewFrameSource()
	pipeline := app.NewDetectionPipeline(frames, ensemble, vision.NewAnnotator(), detection.Profiles, detection.Colors)

	var gate port.PresenceGate
	if cfg.PresenceGate {
		gate = vision.NewPresenceGate()
	}

	c := &Container{
		UserService: app.NewUserService(userRepo),
		Pipeline:    pipeline,
	}

	var publisher port.ResultPublisher
	if cfg.Kafka.Enabled() {
		kp, err := messaging.NewKafkaPublisher(messaging.KafkaConfig{
			BootstrapServers: cfg.Kafka.BootstrapServers,
			SecurityProtocol: cfg.Kafka.SecurityProtocol,
			SASLMechanism:    cfg.Kafka.SASLMechanism,
			SASLUsername:     cfg.Kafka.SASLUsername,
			SASLPassword:     cfg.Kafka.SASLPassword,
			Topic:            cfg.Kafka.Topic,
			Acks:             cfg.Kafka.Acks,
		})
		if err != nil {
			_ = pipeline.Close()
			return nil, fmt.Errorf("kafka publisher: %w", err)
		}
		c.publisher = kp
		publisher = kp
	}

	c.InspectionService = app.NewInspectionService(frames, gate, pipeline, publisher, app.InspectionConfig{
		IncomingDir:  cfg.IncomingDir,
		AnnotatedDir: cfg.AnnotatedDir,
	})

	log.Printf("Pipeline ready: models=%v gate=%t kafka=%t", pipeline.Models(), cfg.PresenceGate, cfg.Kafka.Enabled())
	return c, nil
}

// loadDetectors подключает удалённый сервис инференса по URL либо ONNX-модели с диска.
func loadDetectors(ctx context.Context, cfg *config.Config) ([]port.Detector, error) {
	if vision.IsRemote(cfg.ModelPath) {
		client := &http.Client{Timeout: 60 * time.Second}
		d, err := inference.NewHTTPDetector(ctx, cfg.ModelPath, client)
		if err != nil {
			return nil, fmt.Errorf("remote detector %s: %w", cfg.ModelPath, err)
		}
		return []port.Detector{d}, nil
	}
	return vision.LoadDetectors(cfg.ModelPath, cfg.ModelInputSize)
}

// Close освобождает модели и дожидается отправки событий.
// Конвейер закрывается первым: Close ждёт текущий запуск.
func (c *Container) Close() error {
	err := c.Pipeline.Close()
	if c.publisher != nil {
		c.publisher.Close()
	}
	return err
}
