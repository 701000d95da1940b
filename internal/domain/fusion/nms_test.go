package fusion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pcb-vision/internal/domain/entity"
)

func det(label string, conf float64, model string, x1, y1, x2, y2 int) entity.RawDetection {
	return entity.RawDetection{
		Box:        entity.Box{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Label:      label,
		Confidence: conf,
		Model:      model,
	}
}

func TestSuppressPerLabel_CollapsesDuplicates(t *testing.T) {
	// IoU = 200 / (300 + 300 - 200) = 0.5
	a := det("short", 0.6, "a.onnx", 0, 0, 30, 10)
	b := det("short", 0.9, "b.onnx", 10, 0, 40, 10)
	require.InDelta(t, 0.5, a.Box.IoU(b.Box), 1e-9)

	final := SuppressPerLabel([]entity.RawDetection{a, b}, 0.3)
	require.Len(t, final, 1)
	require.Equal(t, b.Box, final[0].Box)
	require.Equal(t, "b.onnx", final[0].Model)
	require.Equal(t, 0.9, final[0].Confidence)
}

func TestSuppressPerLabel_KeepsDifferentLabels(t *testing.T) {
	a := det("short", 0.9, "a.onnx", 0, 0, 100, 100)
	b := det("open", 0.8, "b.onnx", 0, 0, 100, 90)
	require.InDelta(t, 0.9, a.Box.IoU(b.Box), 1e-9)

	final := SuppressPerLabel([]entity.RawDetection{a, b}, 0.3)
	require.Len(t, final, 2)
	require.Equal(t, "short", final[0].Label)
	require.Equal(t, "open", final[1].Label)
}

func TestSuppressPerLabel_ThresholdIsExclusive(t *testing.T) {
	a := det("short", 0.9, "a", 0, 0, 30, 10)
	b := det("short", 0.8, "b", 10, 0, 40, 10)

	// IoU 0.5 не превышает порог 0.5, обе рамки остаются
	require.Len(t, SuppressPerLabel([]entity.RawDetection{a, b}, 0.5), 2)
}

func TestSuppressPerLabel_DistantBoxesSurvive(t *testing.T) {
	in := []entity.RawDetection{
		det("open", 0.5, "a", 0, 0, 10, 10),
		det("open", 0.7, "a", 50, 50, 60, 60),
		det("open", 0.6, "b", 52, 50, 62, 60),
	}

	final := SuppressPerLabel(in, 0.3)
	require.Len(t, final, 2)
	require.Equal(t, 0.7, final[0].Confidence)
	require.Equal(t, 0.5, final[1].Confidence)
}

func TestSuppressPerLabel_Deterministic(t *testing.T) {
	in := []entity.RawDetection{
		det("short", 0.8, "a", 0, 0, 20, 20),
		det("short", 0.8, "b", 2, 2, 22, 22),
		det("open", 0.4, "a", 30, 30, 50, 50),
		det("short", 0.8, "c", 100, 100, 120, 120),
	}

	first := SuppressPerLabel(in, 0.3)
	second := SuppressPerLabel(in, 0.3)
	require.Equal(t, first, second)
	// при равной уверенности выигрывает рамка, пришедшая первой
	require.Equal(t, "a", first[0].Model)
	require.Equal(t, entity.DefectSummary{"short": 2, "open": 1}, entity.Tally(first))
}

func TestSuppressPerLabel_Empty(t *testing.T) {
	require.Empty(t, SuppressPerLabel(nil, 0.3))
	require.Nil(t, GreedyNMS(nil, nil, 0.3))
}
