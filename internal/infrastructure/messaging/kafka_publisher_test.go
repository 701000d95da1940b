package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pcb-vision/internal/domain/entity"
)

func TestBuildMessage(t *testing.T) {
	event := &entity.InspectionEvent{
		ID:            "insp-1",
		Model:         "default",
		Image:         "board.jpg",
		DefectSummary: entity.DefectSummary{"short": 2, "open": 1},
		Detections: []entity.FinalDetection{
			{Box: entity.Box{X1: 1, Y1: 2, X2: 30, Y2: 40}, Label: "short", Confidence: 0.9, Model: "a.onnx"},
		},
		AnnotatedImagePath: "annotated/default/board.jpg",
		CreatedAt:          time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}

	msg, err := buildMessage("pcb-inspections", event)
	require.NoError(t, err)
	require.Equal(t, "pcb-inspections", *msg.TopicPartition.Topic)
	require.Equal(t, []byte("insp-1"), msg.Key)
	require.Len(t, msg.Headers, 2)
	require.Equal(t, "3", string(msg.Headers[1].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, "board.jpg", decoded["image"])
	require.Equal(t, map[string]any{"short": 2.0, "open": 1.0}, decoded["defect_summary"])

	detections := decoded["detections"].([]any)
	first := detections[0].(map[string]any)
	require.Equal(t, map[string]any{"x1": 1.0, "y1": 2.0, "x2": 30.0, "y2": 40.0}, first["bbox"])
}

func TestProducerConfig(t *testing.T) {
	cm := producerConfig(KafkaConfig{BootstrapServers: "localhost:9092", Acks: "all"})
	require.Equal(t, "localhost:9092", (*cm)["bootstrap.servers"])
	_, hasSASL := (*cm)["sasl.username"]
	require.False(t, hasSASL)

	cm = producerConfig(KafkaConfig{
		BootstrapServers: "broker:9092",
		SecurityProtocol: "SASL_SSL",
		SASLMechanism:    "PLAIN",
		SASLUsername:     "user",
		SASLPassword:     "secret",
		Acks:             "all",
	})
	require.Equal(t, "SASL_SSL", (*cm)["security.protocol"])
	require.Equal(t, "user", (*cm)["sasl.username"])
}

func TestNewKafkaPublisher_RequiresTopic(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{BootstrapServers: "localhost:9092"})
	require.Error(t, err)
}
