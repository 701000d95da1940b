//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"

	"gocv.io/x/gocv"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

// DefaultInputSize сторона квадратного входа сети
const DefaultInputSize = 640

// ONNXDetector YOLOv8-модель, экспортированная в ONNX, через модуль dnn OpenCV.
// Один экземпляр нельзя вызывать конкурентно.
type ONNXDetector struct {
	name      string
	net       gocv.Net
	labels    entity.LabelSet
	inputSize int
}

// NewONNXDetector загружает модель и названия её классов из <model>.yaml.
func NewONNXDetector(path string, inputSize int) (*ONNXDetector, error) {
	if inputSize <= 0 {
		inputSize = DefaultInputSize
	}

	labels, err := LoadLabels(path)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("failed to load model %s", path)
	}

	return &ONNXDetector{
		name:      filepath.Base(path),
		net:       net,
		labels:    labels,
		inputSize: inputSize,
	}, nil
}

func (d *ONNXDetector) Name() string {
	return d.name
}

func (d *ONNXDetector) Labels() entity.LabelSet {
	return d.labels
}

// Detect прогоняет кадр через сеть и декодирует выход.
func (d *ONNXDetector) Detect(ctx context.Context, frame port.Frame, params entity.DetectionParams) ([]entity.RawBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := asMat(frame)
	if err != nil {
		return nil, err
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(d.inputSize, d.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 || dims[0] != 1 {
		return nil, fmt.Errorf("model %s: unexpected output shape %v", d.name, dims)
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("model %s: read output: %w", d.name, err)
	}

	// [1, 4+C, N] у YOLOv8; некоторые экспорты отдают [1, N, 4+C]
	output := YOLOOutput{Data: data, Channels: dims[1], Anchors: dims[2]}
	if dims[1] > dims[2] {
		output = YOLOOutput{Data: data, Channels: dims[2], Anchors: dims[1], Transposed: true}
	}

	scaleX := float64(mat.Cols()) / float64(d.inputSize)
	scaleY := float64(mat.Rows()) / float64(d.inputSize)

	return output.Decode(scaleX, scaleY, params), nil
}

func (d *ONNXDetector) Close() error {
	return d.net.Close()
}

// LoadDetectors загружает все модели по ссылке (файл или каталог).
// Модель, которая не загрузилась, пропускается; ошибка возвращается, только если не загрузилась ни одна.
func LoadDetectors(ref string, inputSize int) ([]port.Detector, error) {
	paths, err := ResolveModelPaths(ref)
	if err != nil {
		return nil, err
	}

	detectors := make([]port.Detector, 0, len(paths))
	for _, p := range paths {
		det, err := NewONNXDetector(p, inputSize)
		if err != nil {
			log.Printf("Skipping model %s: %v", p, err)
			continue
		}
		log.Printf("Loaded model %s (%d classes)", det.Name(), len(det.Labels()))
		detectors = append(detectors, det)
	}

	if len(detectors) == 0 {
		return nil, fmt.Errorf("%s: %w", ref, entity.ErrNoModels)
	}

	return detectors, nil
}

var _ port.Detector = (*ONNXDetector)(nil)
