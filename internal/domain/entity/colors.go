package entity

import "image/color"

// DefaultFallbackColor нейтральный цвет для меток без настроенного цвета
func DefaultFallbackColor() color.RGBA {
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// ColorTable таблица цветов рамок по меткам дефектов (RGB).
type ColorTable struct {
	colors   map[string]color.RGBA
	fallback color.RGBA
}

// NewColorTable создаёт таблицу с заданным цветом по умолчанию.
func NewColorTable(colors map[string]color.RGBA, fallback color.RGBA) ColorTable {
	c := make(map[string]color.RGBA, len(colors))
	for label, rgb := range colors {
		c[label] = rgb
	}
	return ColorTable{colors: c, fallback: fallback}
}

// DefaultColorTable палитра дефектов печатной платы по умолчанию.
func DefaultColorTable() ColorTable {
	return NewColorTable(map[string]color.RGBA{
		"short":     rgb(255, 0, 0),
		"open":      rgb(0, 0, 255),
		"90":        rgb(255, 255, 255),
		"ps":        rgb(0, 255, 255),
		"sb":        rgb(255, 0, 255),
		"mc":        rgb(255, 255, 0),
		"resistor":  rgb(255, 255, 255),
		"capacitor": rgb(255, 0, 0),
	}, DefaultFallbackColor())
}

// Lookup возвращает цвет метки либо цвет по умолчанию.
func (t ColorTable) Lookup(label string) color.RGBA {
	if c, ok := t.colors[label]; ok {
		return c
	}
	return t.fallback
}

// Len количество настроенных меток
func (t ColorTable) Len() int {
	return len(t.colors)
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
