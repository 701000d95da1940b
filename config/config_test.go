package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-vision/internal/domain/entity"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"MODEL_PATH", "MODEL_INPUT_SIZE", "PRESENCE_GATE", "KAFKA_BOOTSTRAP_SERVERS", "KAFKA_TOPIC"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./models", cfg.ModelPath)
	assert.Equal(t, 640, cfg.ModelInputSize)
	assert.True(t, cfg.PresenceGate)
	assert.Equal(t, "pcb-inspections", cfg.Kafka.Topic)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MODEL_PATH", "http://localhost:8000/predict")
	t.Setenv("MODEL_INPUT_SIZE", "1024")
	t.Setenv("PRESENCE_GATE", "false")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "broker:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/predict", cfg.ModelPath)
	assert.Equal(t, 1024, cfg.ModelInputSize)
	assert.False(t, cfg.PresenceGate)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MODEL_INPUT_SIZE", "big")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.ModelInputSize)
}

func TestLoadDetectionConfig_MissingFile(t *testing.T) {
	cfg, err := LoadDetectionConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultDetectionParams(), cfg.Profiles.For("anything"))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, cfg.Colors.Lookup("short"))
}

func TestLoadDetectionConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grading_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"MODEL_DETECTION_CONFIGS": {
			"default": {"conf": 0.3, "iou": 0.6, "max_det": 100},
			"strict":  {"conf": 0.5, "nms_iou": 0.2}
		},
		"CUSTOM_DEFECT_COLORS": {"short": [0, 128, 0]}
	}`), 0o644))

	cfg, err := LoadDetectionConfig(path)
	require.NoError(t, err)

	def := cfg.Profiles.For("default")
	assert.Equal(t, 0.3, def.Conf)
	assert.Equal(t, 100, def.MaxDet)
	assert.Equal(t, entity.DefaultNMSIoU, def.SuppressionIoU())

	strict := cfg.Profiles.For("strict")
	assert.Equal(t, 0.5, strict.Conf)
	assert.Equal(t, 0.7, strict.IoU)
	assert.Equal(t, 300, strict.MaxDet)
	assert.Equal(t, 0.2, strict.SuppressionIoU())

	assert.Equal(t, def, cfg.Profiles.For("unknown-model"))

	assert.Equal(t, color.RGBA{G: 128, A: 255}, cfg.Colors.Lookup("short"))
	assert.Equal(t, entity.DefaultFallbackColor(), cfg.Colors.Lookup("open"))
}

func TestParseDetectionConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{`},
		{"conf above one", `{"MODEL_DETECTION_CONFIGS": {"m": {"conf": 1.5}}}`},
		{"zero max_det", `{"MODEL_DETECTION_CONFIGS": {"m": {"max_det": 0}}}`},
		{"color out of range", `{"CUSTOM_DEFECT_COLORS": {"short": [300, 0, 0]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDetectionConfig([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
