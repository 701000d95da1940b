package app

import (
	"context"
	"errors"
	"sync"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

type fakeFrame struct {
	w, h   int
	mean   float64
	closed bool
}

func (f *fakeFrame) Width() int                  { return f.w }
func (f *fakeFrame) Height() int                 { return f.h }
func (f *fakeFrame) MeanIntensity() float64      { return f.mean }
func (f *fakeFrame) EncodeJPEG() ([]byte, error) { return []byte("jpeg"), nil }
func (f *fakeFrame) Close() error {
	f.closed = true
	return nil
}

// fakeSource отдаёт копию шаблонного кадра для любого пути
type fakeSource struct {
	template fakeFrame
	err      error
	loaded   []*fakeFrame
}

func (s *fakeSource) Load(path string) (port.Frame, error) {
	if s.err != nil {
		return nil, s.err
	}
	f := s.template
	s.loaded = append(s.loaded, &f)
	return &f, nil
}

type fakeDetector struct {
	name   string
	labels entity.LabelSet
	boxes  []entity.RawBox
	err    error
	calls  int
}

func (d *fakeDetector) Name() string            { return d.name }
func (d *fakeDetector) Labels() entity.LabelSet { return d.labels }
func (d *fakeDetector) Close() error            { return nil }

func (d *fakeDetector) Detect(ctx context.Context, frame port.Frame, params entity.DetectionParams) ([]entity.RawBox, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.boxes, nil
}

type annotateCall struct {
	detections []entity.FinalDetection
	outPath    string
}

type fakeAnnotator struct {
	err   error
	calls []annotateCall
}

func (a *fakeAnnotator) Annotate(frame port.Frame, detections []entity.FinalDetection, colors entity.ColorTable, outPath string) error {
	a.calls = append(a.calls, annotateCall{detections: detections, outPath: outPath})
	return a.err
}

type fakeGate struct {
	result entity.PresenceResult
	frames []port.Frame
}

func (g *fakeGate) Detect(frame port.Frame) entity.PresenceResult {
	g.frames = append(g.frames, frame)
	return g.result
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []*entity.InspectionEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event *entity.InspectionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

var errInference = errors.New("inference failed")

func raw(classID int, conf float64, x1, y1, x2, y2 float64) entity.RawBox {
	return entity.RawBox{X1: x1, Y1: y1, X2: x2, Y2: y2, ClassID: classID, Confidence: conf}
}

var pcbLabels = entity.LabelSet{0: "short", 1: "open", 2: "spur"}
