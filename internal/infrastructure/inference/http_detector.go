package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

// HTTPDetector член ансамбля, инференс которого выполняет внешний сервис
type HTTPDetector struct {
	predictURL string
	client     *http.Client
	labels     entity.LabelSet
}

type remoteBox struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	ClassID    int     `json:"class_id"`
	Confidence float64 `json:"confidence"`
}

// NewHTTPDetector создаёт адаптер и запрашивает словарь классов модели (GET <url>/names).
func NewHTTPDetector(ctx context.Context, predictURL string, client *http.Client) (*HTTPDetector, error) {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	d := &HTTPDetector{
		predictURL: strings.TrimRight(predictURL, "/"),
		client:     client,
	}

	labels, err := d.fetchLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("load labels from %s: %w", predictURL, err)
	}
	d.labels = labels

	return d, nil
}

func (d *HTTPDetector) Name() string {
	return d.predictURL
}

func (d *HTTPDetector) Labels() entity.LabelSet {
	return d.labels
}

func (d *HTTPDetector) Close() error {
	d.client.CloseIdleConnections()
	return nil
}

// Detect отправляет кадр в сервис multipart-запросом
func (d *HTTPDetector) Detect(ctx context.Context, frame port.Frame, params entity.DetectionParams) ([]entity.RawBox, error) {
	imageData, err := frame.EncodeJPEG()
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}

	fields := map[string]string{
		"conf":    strconv.FormatFloat(params.Conf, 'f', -1, 64),
		"iou":     strconv.FormatFloat(params.IoU, 'f', -1, 64),
		"max_det": strconv.Itoa(params.MaxDet),
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.predictURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Detections []remoteBox `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	boxes := make([]entity.RawBox, 0, len(result.Detections))
	for _, b := range result.Detections {
		boxes = append(boxes, entity.RawBox{
			X1:         b.X1,
			Y1:         b.Y1,
			X2:         b.X2,
			Y2:         b.Y2,
			ClassID:    b.ClassID,
			Confidence: b.Confidence,
		})
	}

	return boxes, nil
}

// fetchLabels читает {"0": "short", ...} так же, как model.names у модели
func (d *HTTPDetector) fetchLabels(ctx context.Context) (entity.LabelSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.predictURL+"/names", nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("names request failed with status: %d", resp.StatusCode)
	}

	var names map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("decode names: %w", err)
	}

	labels := make(entity.LabelSet, len(names))
	for k, v := range names {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid class id %q", k)
		}
		labels[id] = v
	}

	return labels, nil
}

var _ port.Detector = (*HTTPDetector)(nil)
