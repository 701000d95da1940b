package port

// Frame декодированный кадр (H x W x 3). Владелец кадра обязан вызвать Close.
type Frame interface {
	// Width ширина кадра в пикселях
	Width() int
	// Height высота кадра в пикселях
	Height() int
	// MeanIntensity средняя яркость в оттенках серого (0..255)
	MeanIntensity() float64
	// EncodeJPEG кодирует кадр в JPEG
	EncodeJPEG() ([]byte, error)
	Close() error
}

// FrameSource загружает кадр по пути к файлу
type FrameSource interface {
	// Load возвращает ошибку, если файл не читается или изображение пустое
	Load(path string) (Frame, error)
}
