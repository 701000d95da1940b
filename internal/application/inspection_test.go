package app

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/port"
)

func newTestInspection(t *testing.T, gate port.PresenceGate, publisher port.ResultPublisher) (*InspectionService, *fakeAnnotator, InspectionConfig) {
	t.Helper()

	source := &fakeSource{template: fakeFrame{w: 640, h: 480, mean: 110}}
	annotator := &fakeAnnotator{}
	det := &fakeDetector{name: "a.onnx", labels: pcbLabels, boxes: []entity.RawBox{raw(1, 0.8, 100, 100, 150, 140)}}
	pipeline := newTestPipeline(t, source, annotator, det)

	root := t.TempDir()
	cfg := InspectionConfig{
		IncomingDir:  filepath.Join(root, "captures"),
		AnnotatedDir: filepath.Join(root, "annotated"),
	}

	svc := NewInspectionService(source, gate, pipeline, publisher, cfg)
	svc.newID = func() string { return "insp-1" }
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	return svc, annotator, cfg
}

func TestInspectionService_InspectPhoto(t *testing.T) {
	gate := &fakeGate{result: entity.PresenceResult{Detected: true, BBox: image.Rect(10, 10, 600, 400), AreaRatio: 0.7}}
	publisher := &fakePublisher{}
	svc, _, cfg := newTestInspection(t, gate, publisher)

	out, err := svc.InspectPhoto(context.Background(), []byte("jpeg-bytes"), "")
	require.NoError(t, err)
	require.Equal(t, "insp-1", out.ID)
	require.True(t, out.Presence.Detected)
	require.NotNil(t, out.Result)
	require.Equal(t, entity.DefectSummary{"open": 1}, out.Result.DefectSummary)
	require.Equal(t, filepath.Join(cfg.AnnotatedDir, entity.DefaultProfile, "insp-1.jpg"), out.Result.AnnotatedImagePath)

	saved, err := os.ReadFile(filepath.Join(cfg.IncomingDir, "insp-1.jpg"))
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), saved)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	require.Equal(t, "insp-1", event.ID)
	require.Equal(t, entity.DefaultProfile, event.Model)
	require.Equal(t, "insp-1.jpg", event.Image)
	require.Equal(t, out.Result.DefectSummary, event.DefectSummary)
	require.Equal(t, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), event.CreatedAt)
}

func TestInspectionService_NoBoard(t *testing.T) {
	publisher := &fakePublisher{}
	svc, annotator, _ := newTestInspection(t, &fakeGate{result: entity.NotDetected()}, publisher)

	out, err := svc.InspectFile(context.Background(), "/captures/empty_table.jpg", "fine")
	require.ErrorIs(t, err, entity.ErrNoBoard)
	require.NotNil(t, out)
	require.Nil(t, out.Result)
	require.Empty(t, annotator.calls)
	require.Empty(t, publisher.events)
}

func TestInspectionService_GateDisabled(t *testing.T) {
	svc, annotator, cfg := newTestInspection(t, nil, nil)

	out, err := svc.InspectFile(context.Background(), "/captures/board.png", "fine")
	require.NoError(t, err)
	require.False(t, out.Presence.Detected)
	require.Equal(t, filepath.Join(cfg.AnnotatedDir, "fine", "board.png"), out.Result.AnnotatedImagePath)
	require.Len(t, annotator.calls, 1)
}

func TestInspectionService_PublishFailureIsNotFatal(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc, _, _ := newTestInspection(t, nil, publisher)

	out, err := svc.InspectFile(context.Background(), "board.jpg", "")
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	require.Len(t, publisher.events, 1)
}

func TestInspectionService_EmptyPhoto(t *testing.T) {
	svc, _, _ := newTestInspection(t, nil, nil)

	out, err := svc.InspectPhoto(context.Background(), nil, "")
	require.Nil(t, out)
	require.ErrorIs(t, err, entity.ErrInvalidFrame)
}

func TestInspectionService_GateAndPipelineShareFrame(t *testing.T) {
	source := &fakeSource{template: fakeFrame{w: 640, h: 480, mean: 110}}
	det := &fakeDetector{name: "a.onnx", labels: pcbLabels, boxes: []entity.RawBox{raw(0, 0.8, 100, 100, 150, 140)}}
	pipeline := newTestPipeline(t, source, &fakeAnnotator{}, det)
	gate := &fakeGate{result: entity.PresenceResult{Detected: true, BBox: image.Rect(0, 0, 500, 400), AreaRatio: 0.6}}

	svc := NewInspectionService(source, gate, pipeline, nil, InspectionConfig{AnnotatedDir: t.TempDir()})

	out, err := svc.InspectFile(context.Background(), "board.jpg", "")
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	require.Len(t, source.loaded, 1)
	require.True(t, source.loaded[0].closed)
	require.Len(t, gate.frames, 1)
	require.Same(t, port.Frame(source.loaded[0]), gate.frames[0])
}

func TestInspectionService_InferenceFailureIsNotPublished(t *testing.T) {
	source := &fakeSource{template: fakeFrame{w: 640, h: 480, mean: 110}}
	pipeline := newTestPipeline(t, source, &fakeAnnotator{}, &fakeDetector{name: "a.onnx", err: errInference})
	publisher := &fakePublisher{}

	svc := NewInspectionService(source, nil, pipeline, publisher, InspectionConfig{AnnotatedDir: t.TempDir()})

	out, err := svc.InspectFile(context.Background(), "board.jpg", "")
	require.ErrorIs(t, err, entity.ErrInferenceFailed)
	require.Nil(t, out.Result)
	require.Empty(t, publisher.events)
}
