package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

// InspectionConfig каталоги для входящих снимков и размеченных изображений
type InspectionConfig struct {
	IncomingDir  string
	AnnotatedDir string
}

// InspectionService проверка наличия платы, детекция дефектов и публикация итога.
type InspectionService struct {
	frames    port.FrameSource
	gate      port.PresenceGate
	pipeline  *DetectionPipeline
	publisher port.ResultPublisher
	cfg       InspectionConfig
	newID     func() string
	now       func() time.Time
}

// InspectionOutput содержит результат проверки платы.
// Result равен nil, если снимок не подлежит оценке.
type InspectionOutput struct {
	ID       string
	Presence entity.PresenceResult
	Result   *entity.PipelineResult
}

// NewInspectionService создаёт сервис проверки. gate и publisher могут быть nil.
func NewInspectionService(frames port.FrameSource, gate port.PresenceGate, pipeline *DetectionPipeline, publisher port.ResultPublisher, cfg InspectionConfig) *InspectionService {
	return &InspectionService{
		frames:    frames,
		gate:      gate,
		pipeline:  pipeline,
		publisher: publisher,
		cfg:       cfg,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// InspectPhoto сохраняет присланный снимок и проверяет его.
func (s *InspectionService) InspectPhoto(ctx context.Context, photo []byte, model string) (*InspectionOutput, error) {
	if len(photo) == 0 {
		return nil, fmt.Errorf("%w: no image data", entity.ErrInvalidFrame)
	}

	if err := os.MkdirAll(s.cfg.IncomingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create incoming dir: %w", err)
	}

	id := s.newID()
	path := filepath.Join(s.cfg.IncomingDir, id+".jpg")
	if err := os.WriteFile(path, photo, 0o644); err != nil {
		return nil, fmt.Errorf("save photo: %w", err)
	}

	return s.inspect(ctx, id, path, model)
}

// InspectFile проверяет уже сохранённый снимок.
func (s *InspectionService) InspectFile(ctx context.Context, imagePath, model string) (*InspectionOutput, error) {
	return s.inspect(ctx, s.newID(), imagePath, model)
}

func (s *InspectionService) inspect(ctx context.Context, id, imagePath, model string) (*InspectionOutput, error) {
	if s.pipeline == nil {
		return nil, errors.New("detection pipeline is not configured")
	}
	if model == "" {
		model = entity.DefaultProfile
	}

	out := &InspectionOutput{ID: id}

	frame, err := s.frames.Load(imagePath)
	if err != nil {
		return out, fmt.Errorf("load %s: %w: %w", imagePath, entity.ErrInvalidFrame, err)
	}
	defer frame.Close()

	if s.gate != nil {
		out.Presence = s.gate.Detect(frame)
		if !out.Presence.Detected {
			return out, entity.ErrNoBoard
		}
	}

	result, err := s.pipeline.RunFrame(ctx, frame, imagePath, filepath.Join(s.cfg.AnnotatedDir, model), model)
	if err != nil {
		return out, err
	}
	out.Result = result

	s.publish(ctx, &entity.InspectionEvent{
		ID:                 id,
		Model:              model,
		Image:              filepath.Base(imagePath),
		DefectSummary:      result.DefectSummary,
		Detections:         result.FinalDetections,
		AnnotatedImagePath: result.AnnotatedImagePath,
		CreatedAt:          s.now().UTC(),
	})

	return out, nil
}

func (s *InspectionService) publish(ctx context.Context, event *entity.InspectionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Failed to publish inspection %s: %v", event.ID, err)
	}
}
