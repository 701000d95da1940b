package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/fusion"
	"pcb-vision/internal/domain/port"
)

// Допустимый диапазон средней яркости кадра
const (
	MinMeanIntensity = 2.0
	MaxMeanIntensity = 250.0
)

// DetectionPipeline загрузка кадра -> ансамбль -> фильтр -> подавление дублей -> разметка.
// Run сериализован: модели ансамбля общие для всех вызовов.
type DetectionPipeline struct {
	mu        sync.Mutex
	frames    port.FrameSource
	ensemble  *Ensemble
	annotator port.Annotator
	profiles  entity.DetectionProfiles
	colors    entity.ColorTable
}

// NewDetectionPipeline создаёт конвейер над уже загруженным ансамблем.
func NewDetectionPipeline(frames port.FrameSource, ensemble *Ensemble, annotator port.Annotator, profiles entity.DetectionProfiles, colors entity.ColorTable) *DetectionPipeline {
	return &DetectionPipeline{
		frames:    frames,
		ensemble:  ensemble,
		annotator: annotator,
		profiles:  profiles,
		colors:    colors,
	}
}

// Run проверяет изображение imagePath и пишет размеченную копию в annotatedDir
// под тем же именем файла. Параметры детекции выбираются по modelName.
//
// Nil-результат означает «снимок не оценивать», а не «дефектов нет»;
// ошибка объясняет причину (entity.ErrInvalidFrame, entity.ErrDegenerateExposure,
// entity.ErrInferenceFailed, ошибка записи).
func (p *DetectionPipeline) Run(ctx context.Context, imagePath, annotatedDir, modelName string) (*entity.PipelineResult, error) {
	frame, err := p.frames.Load(imagePath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", imagePath, entity.ErrInvalidFrame, err)
	}
	defer frame.Close()

	return p.RunFrame(ctx, frame, imagePath, annotatedDir, modelName)
}

// RunFrame как Run, но над уже загруженным кадром. Кадр закрывает вызывающий.
func (p *DetectionPipeline) RunFrame(ctx context.Context, frame port.Frame, imagePath, annotatedDir, modelName string) (*entity.PipelineResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame == nil || frame.Width() <= 0 || frame.Height() <= 0 {
		return nil, fmt.Errorf("load %s: %w: empty image", imagePath, entity.ErrInvalidFrame)
	}

	mean := frame.MeanIntensity()
	if mean < MinMeanIntensity || mean > MaxMeanIntensity {
		log.Printf("Skipping %s: mean intensity %.2f", imagePath, mean)
		return nil, fmt.Errorf("%s: %w (mean=%.2f)", imagePath, entity.ErrDegenerateExposure, mean)
	}

	if err := os.MkdirAll(annotatedDir, 0o755); err != nil {
		return nil, fmt.Errorf("create annotated dir: %w", err)
	}

	params := p.profiles.For(modelName)
	raw, perModel, err := p.ensemble.DetectAll(ctx, frame, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imagePath, err)
	}
	final := fusion.SuppressPerLabel(raw, params.SuppressionIoU())

	outPath := filepath.Join(annotatedDir, filepath.Base(imagePath))
	if err := p.annotator.Annotate(frame, final, p.colors, outPath); err != nil {
		return nil, fmt.Errorf("write annotated image: %w", err)
	}

	return &entity.PipelineResult{
		DefectSummary:      entity.Tally(final),
		FinalDetections:    final,
		DefectsPerModel:    perModel,
		AnnotatedImagePath: outPath,
	}, nil
}

// Models имена моделей ансамбля
func (p *DetectionPipeline) Models() []string {
	return p.ensemble.Members()
}

// HasProfile сообщает, настроены ли параметры детекции с таким именем
func (p *DetectionPipeline) HasProfile(name string) bool {
	return p.profiles.Has(name)
}

// Profiles имена настроенных наборов параметров, по алфавиту
func (p *DetectionPipeline) Profiles() []string {
	names := p.profiles.Names()
	sort.Strings(names)
	return names
}

// Close освобождает модели ансамбля
func (p *DetectionPipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensemble.Close()
}
