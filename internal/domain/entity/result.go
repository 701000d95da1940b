package entity

import "time"

// DefectSummary количество дефектов по меткам
type DefectSummary map[string]int

// Total общее число дефектов
func (s DefectSummary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Tally подсчитывает дефекты по итоговому списку детекций.
func Tally(detections []FinalDetection) DefectSummary {
	summary := make(DefectSummary, len(detections))
	for _, d := range detections {
		summary[d.Label]++
	}
	return summary
}

// PipelineResult итог одного запуска конвейера детекции.
type PipelineResult struct {
	DefectSummary      DefectSummary            `json:"defect_summary"`
	FinalDetections    []FinalDetection         `json:"final_detections"`
	DefectsPerModel    map[string]DefectSummary `json:"defects_per_model"`
	AnnotatedImagePath string                   `json:"annotated_image_path"`
}

// InspectionEvent событие о завершённой проверке для внешних потребителей.
type InspectionEvent struct {
	ID                 string           `json:"id"`
	Model              string           `json:"model"`
	Image              string           `json:"image"`
	DefectSummary      DefectSummary    `json:"defect_summary"`
	Detections         []FinalDetection `json:"detections"`
	AnnotatedImagePath string           `json:"annotated_image_path"`
	CreatedAt          time.Time        `json:"created_at"`
}
