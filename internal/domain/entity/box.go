package entity

import "image"

// Box прямоугольник в пиксельных координатах кадра (x1,y1 включительно, x2,y2 исключительно)
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width возвращает ширину прямоугольника
func (b Box) Width() int {
	return b.X2 - b.X1
}

// Height возвращает высоту прямоугольника
func (b Box) Height() int {
	return b.Y2 - b.Y1
}

// Area возвращает площадь; для вырожденных прямоугольников 0
func (b Box) Area() int {
	if b.Width() <= 0 || b.Height() <= 0 {
		return 0
	}
	return b.Width() * b.Height()
}

// Clip обрезает прямоугольник границами кадра [0,w]x[0,h]
func (b Box) Clip(w, h int) Box {
	return Box{
		X1: clamp(b.X1, 0, w),
		Y1: clamp(b.Y1, 0, h),
		X2: clamp(b.X2, 0, w),
		Y2: clamp(b.Y2, 0, h),
	}
}

// Rect переводит прямоугольник в image.Rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// IoU считает отношение площади пересечения к площади объединения.
func (b Box) IoU(o Box) float64 {
	w := minInt(b.X2, o.X2) - maxInt(b.X1, o.X1)
	h := minInt(b.Y2, o.Y2) - maxInt(b.Y1, o.Y1)
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	inter := w * h
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
