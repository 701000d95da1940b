package entity

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorTableLookup(t *testing.T) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	table := NewColorTable(map[string]color.RGBA{"short": {R: 255, A: 255}}, gray)

	require.Equal(t, color.RGBA{R: 255, A: 255}, table.Lookup("short"))
	require.Equal(t, gray, table.Lookup("spur"))
}

func TestDefaultColorTable(t *testing.T) {
	table := DefaultColorTable()
	require.Equal(t, 8, table.Len())
	require.Equal(t, color.RGBA{B: 255, A: 255}, table.Lookup("open"))
	require.Equal(t, DefaultFallbackColor(), table.Lookup("missing"))
}

func TestLabelSetResolve(t *testing.T) {
	labels := LabelSet{0: "short", 1: "open", 2: ""}
	require.Equal(t, "open", labels.Resolve(1))
	require.Equal(t, UnknownLabel, labels.Resolve(2))
	require.Equal(t, UnknownLabel, labels.Resolve(7))
	require.Equal(t, UnknownLabel, LabelSet(nil).Resolve(0))
}

func TestDefaultFallbackColorIsNotShared(t *testing.T) {
	c := DefaultFallbackColor()
	c.R = 0

	require.Equal(t, uint8(255), DefaultFallbackColor().R)
	require.Equal(t, DefaultFallbackColor(), DefaultColorTable().Lookup("spur"))
}
