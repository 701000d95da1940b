package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"

	"pcb-vision/internal/domain/entity"
)

// DetectionConfig параметры детекции по моделям и цвета рамок
type DetectionConfig struct {
	Profiles entity.DetectionProfiles
	Colors   entity.ColorTable
}

type profileFile struct {
	Conf   *float64 `json:"conf"`
	IoU    *float64 `json:"iou"`
	MaxDet *int     `json:"max_det"`
	NMSIoU *float64 `json:"nms_iou"`
}

type detectionFile struct {
	ModelDetectionConfigs map[string]profileFile `json:"MODEL_DETECTION_CONFIGS"`
	CustomDefectColors    map[string][3]int      `json:"CUSTOM_DEFECT_COLORS"`
}

// LoadDetectionConfig читает JSON-файл параметров. Отсутствующий файл даёт значения по умолчанию.
func LoadDetectionConfig(path string) (*DetectionConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultDetectionConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read detection config: %w", err)
	}
	return ParseDetectionConfig(data)
}

// DefaultDetectionConfig параметры без файла конфигурации
func DefaultDetectionConfig() *DetectionConfig {
	return &DetectionConfig{
		Profiles: entity.NewDetectionProfiles(nil, entity.DefaultDetectionParams()),
		Colors:   entity.DefaultColorTable(),
	}
}

// ParseDetectionConfig разбирает содержимое файла параметров.
// Пропущенные поля профиля берутся из значений по умолчанию.
func ParseDetectionConfig(data []byte) (*DetectionConfig, error) {
	var file detectionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse detection config: %w", err)
	}

	profiles := make(map[string]entity.DetectionParams, len(file.ModelDetectionConfigs))
	for name, p := range file.ModelDetectionConfigs {
		params, err := p.params()
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		profiles[name] = params
	}

	fallback := entity.DefaultDetectionParams()
	if p, ok := profiles[entity.DefaultProfile]; ok {
		fallback = p
	}

	colors := entity.DefaultColorTable()
	if len(file.CustomDefectColors) > 0 {
		custom := make(map[string]color.RGBA, len(file.CustomDefectColors))
		for label, c := range file.CustomDefectColors {
			for _, v := range c {
				if v < 0 || v > 255 {
					return nil, fmt.Errorf("color for %q out of range: %v", label, c)
				}
			}
			custom[label] = color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255}
		}
		colors = entity.NewColorTable(custom, entity.DefaultFallbackColor())
	}

	return &DetectionConfig{
		Profiles: entity.NewDetectionProfiles(profiles, fallback),
		Colors:   colors,
	}, nil
}

func (p profileFile) params() (entity.DetectionParams, error) {
	params := entity.DefaultDetectionParams()
	if p.Conf != nil {
		params.Conf = *p.Conf
	}
	if p.IoU != nil {
		params.IoU = *p.IoU
	}
	if p.MaxDet != nil {
		params.MaxDet = *p.MaxDet
	}
	params.NMSIoU = p.NMSIoU

	switch {
	case params.Conf < 0 || params.Conf > 1:
		return params, fmt.Errorf("conf out of range: %v", params.Conf)
	case params.IoU < 0 || params.IoU > 1:
		return params, fmt.Errorf("iou out of range: %v", params.IoU)
	case params.MaxDet <= 0:
		return params, fmt.Errorf("max_det must be positive: %d", params.MaxDet)
	case params.NMSIoU != nil && (*params.NMSIoU < 0 || *params.NMSIoU > 1):
		return params, fmt.Errorf("nms_iou out of range: %v", *params.NMSIoU)
	}
	return params, nil
}
