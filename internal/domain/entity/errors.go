package entity

import "errors"

var (
	// ErrInvalidFrame кадр отсутствует, пуст или не читается
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrDegenerateExposure кадр почти чёрный или пересвеченный
	ErrDegenerateExposure = errors.New("degenerate frame exposure")
	// ErrNoBoard в кадре не найдена плата
	ErrNoBoard = errors.New("pcb not detected")
	// ErrNoModels ни одна модель ансамбля не загрузилась
	ErrNoModels = errors.New("no detection models loaded")
	// ErrInferenceFailed ни одна модель ансамбля не отработала на кадре
	ErrInferenceFailed = errors.New("all detection models failed")
)
