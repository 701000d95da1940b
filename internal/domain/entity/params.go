package entity

// DefaultNMSIoU порог подавления дублей внутри метки по умолчанию
const DefaultNMSIoU = 0.3

// DetectionParams параметры инференса для одного запуска
type DetectionParams struct {
	Conf   float64  `json:"conf"`
	IoU    float64  `json:"iou"`
	MaxDet int      `json:"max_det"`
	NMSIoU *float64 `json:"nms_iou,omitempty"`
}

// DefaultDetectionParams возвращает параметры по умолчанию.
func DefaultDetectionParams() DetectionParams {
	return DetectionParams{
		Conf:   0.25,
		IoU:    0.7,
		MaxDet: 300,
	}
}

// SuppressionIoU возвращает порог межмодельного подавления (0.3, если не задан).
func (p DetectionParams) SuppressionIoU() float64 {
	if p.NMSIoU == nil {
		return DefaultNMSIoU
	}
	return *p.NMSIoU
}

// DefaultProfile имя набора параметров, используемого при пустом имени модели
const DefaultProfile = "default"

// DetectionProfiles наборы параметров детекции по имени модели
type DetectionProfiles struct {
	byModel  map[string]DetectionParams
	fallback DetectionParams
}

// NewDetectionProfiles создаёт наборы с явными параметрами по умолчанию.
func NewDetectionProfiles(byModel map[string]DetectionParams, fallback DetectionParams) DetectionProfiles {
	m := make(map[string]DetectionParams, len(byModel))
	for name, p := range byModel {
		m[name] = p
	}
	return DetectionProfiles{byModel: m, fallback: fallback}
}

// For возвращает параметры модели или параметры по умолчанию.
func (p DetectionProfiles) For(model string) DetectionParams {
	if params, ok := p.byModel[model]; ok {
		return params
	}
	return p.fallback
}

// Has сообщает, настроен ли набор с таким именем
func (p DetectionProfiles) Has(model string) bool {
	_, ok := p.byModel[model]
	return ok
}

// Names имена настроенных наборов
func (p DetectionProfiles) Names() []string {
	names := make([]string, 0, len(p.byModel))
	for name := range p.byModel {
		names = append(names, name)
	}
	return names
}
