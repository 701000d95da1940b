package fusion

import (
	"sort"

	"pcb-vision/internal/domain/entity"
)

// GreedyNMS возвращает индексы оставленных рамок в порядке убывания уверенности.
// Рамка удаляется, если её IoU с уже оставленной строго больше threshold.
// При равной уверенности сохраняется исходный порядок.
func GreedyNMS(boxes []entity.Box, scores []float64, threshold float64) []int {
	if len(boxes) == 0 {
		return nil
	}

	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	keep := make([]int, 0, len(order))
	suppressed := make([]bool, len(boxes))
	for pos, i := range order {
		if suppressed[i] {
			continue
		}
		keep = append(keep, i)
		for _, j := range order[pos+1:] {
			if suppressed[j] {
				continue
			}
			if boxes[i].IoU(boxes[j]) > threshold {
				suppressed[j] = true
			}
		}
	}

	return keep
}

// SuppressPerLabel сливает детекции всех моделей и убирает дубли внутри каждой метки.
// Метки обрабатываются в порядке первого появления, между разными метками подавления нет.
func SuppressPerLabel(detections []entity.RawDetection, threshold float64) []entity.FinalDetection {
	var labels []string
	groups := make(map[string][]entity.RawDetection)
	for _, d := range detections {
		if _, ok := groups[d.Label]; !ok {
			labels = append(labels, d.Label)
		}
		groups[d.Label] = append(groups[d.Label], d)
	}

	final := make([]entity.FinalDetection, 0, len(detections))
	for _, label := range labels {
		group := groups[label]
		boxes := make([]entity.Box, len(group))
		scores := make([]float64, len(group))
		for i, d := range group {
			boxes[i] = d.Box
			scores[i] = d.Confidence
		}

		for _, i := range GreedyNMS(boxes, scores, threshold) {
			final = append(final, entity.FinalDetection{
				Box:        group[i].Box,
				Label:      label,
				Confidence: group[i].Confidence,
				Model:      group[i].Model,
			})
		}
	}

	return final
}
