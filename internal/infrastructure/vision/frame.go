//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"pcb-vision/internal/domain/port"
)

// MatFrame кадр поверх gocv.Mat в порядке каналов BGR
type MatFrame struct {
	mat gocv.Mat
}

// NewMatFrame оборачивает Mat; кадр становится владельцем Mat.
func NewMatFrame(mat gocv.Mat) *MatFrame {
	return &MatFrame{mat: mat}
}

// Mat возвращает исходную матрицу кадра
func (f *MatFrame) Mat() gocv.Mat {
	return f.mat
}

func (f *MatFrame) Width() int {
	return f.mat.Cols()
}

func (f *MatFrame) Height() int {
	return f.mat.Rows()
}

// MeanIntensity средняя яркость кадра в оттенках серого.
func (f *MatFrame) MeanIntensity() float64 {
	if f.mat.Empty() {
		return 0
	}
	if f.mat.Channels() == 1 {
		return f.mat.Mean().Val1
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(f.mat, &gray, gocv.ColorBGRToGray)

	return gray.Mean().Val1
}

func (f *MatFrame) EncodeJPEG() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, f.mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

func (f *MatFrame) Close() error {
	return f.mat.Close()
}

// FrameSource читает кадры с диска через OpenCV.
type FrameSource struct{}

// NewFrameSource создаёт источник кадров.
func NewFrameSource() *FrameSource {
	return &FrameSource{}
}

// Load декодирует файл в трёхканальный кадр.
func (s *FrameSource) Load(path string) (port.Frame, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to read image %s", path)
	}
	return NewMatFrame(mat), nil
}

// asMat достаёт Mat из кадра, созданного этим пакетом.
func asMat(frame port.Frame) (gocv.Mat, error) {
	mf, ok := frame.(*MatFrame)
	if !ok || mf == nil {
		return gocv.Mat{}, errors.New("frame is not backed by gocv.Mat")
	}
	if mf.mat.Empty() {
		return gocv.Mat{}, errors.New("empty frame")
	}
	return mf.mat, nil
}

var (
	_ port.Frame       = (*MatFrame)(nil)
	_ port.FrameSource = (*FrameSource)(nil)
)
