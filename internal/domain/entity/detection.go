package entity

// RawBox сырой ответ модели до обрезки и фильтрации
type RawBox struct {
	X1, Y1, X2, Y2 float64
	ClassID        int
	Confidence     float64
}

// Truncate переводит координаты в целые пиксели отбрасыванием дробной части.
func (r RawBox) Truncate() Box {
	return Box{X1: int(r.X1), Y1: int(r.Y1), X2: int(r.X2), Y2: int(r.Y2)}
}

// RawDetection детекция одного члена ансамбля, прошедшая фильтр.
// Box всегда обрезан границами кадра.
type RawDetection struct {
	Box        Box
	Label      string
	Confidence float64
	Model      string
}

// FinalDetection детекция после межмодельного подавления дублей
type FinalDetection struct {
	Box        Box     `json:"bbox"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
}
