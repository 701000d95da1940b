package vision

import (
	"sort"

	"pcb-vision/internal/domain/entity"
	"pcb-vision/internal/domain/fusion"
)

// YOLOOutput плоский выход головы YOLOv8: 4 координаты (cx, cy, w, h) и оценки классов
// для каждого якоря. По умолчанию раскладка [каналы][якоря], при Transposed [якоря][каналы].
type YOLOOutput struct {
	Data       []float32
	Channels   int
	Anchors    int
	Transposed bool
}

func (o YOLOOutput) at(channel, anchor int) float64 {
	if o.Transposed {
		return float64(o.Data[anchor*o.Channels+channel])
	}
	return float64(o.Data[channel*o.Anchors+anchor])
}

// Decode переводит выход сети в рамки кадра: порог conf, NMS по классам с порогом iou,
// не больше max_det рамок с наибольшей уверенностью.
// scaleX, scaleY переводят координаты входа сети в пиксели кадра.
func (o YOLOOutput) Decode(scaleX, scaleY float64, params entity.DetectionParams) []entity.RawBox {
	classes := o.Channels - 4
	if classes <= 0 || o.Anchors <= 0 || len(o.Data) < o.Channels*o.Anchors {
		return nil
	}

	byClass := make(map[int][]entity.RawBox)
	for i := 0; i < o.Anchors; i++ {
		bestClass, bestScore := -1, 0.0
		for c := 0; c < classes; c++ {
			if s := o.at(4+c, i); s > bestScore {
				bestClass, bestScore = c, s
			}
		}
		if bestClass < 0 || bestScore < params.Conf {
			continue
		}

		cx, cy := o.at(0, i), o.at(1, i)
		w, h := o.at(2, i), o.at(3, i)
		byClass[bestClass] = append(byClass[bestClass], entity.RawBox{
			X1:         (cx - w/2) * scaleX,
			Y1:         (cy - h/2) * scaleY,
			X2:         (cx + w/2) * scaleX,
			Y2:         (cy + h/2) * scaleY,
			ClassID:    bestClass,
			Confidence: bestScore,
		})
	}

	classIDs := make([]int, 0, len(byClass))
	for id := range byClass {
		classIDs = append(classIDs, id)
	}
	sort.Ints(classIDs)

	var kept []entity.RawBox
	for _, id := range classIDs {
		candidates := byClass[id]
		boxes := make([]entity.Box, len(candidates))
		scores := make([]float64, len(candidates))
		for i, c := range candidates {
			boxes[i] = c.Truncate()
			scores[i] = c.Confidence
		}
		for _, i := range fusion.GreedyNMS(boxes, scores, params.IoU) {
			kept = append(kept, candidates[i])
		}
	}

	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].Confidence > kept[b].Confidence
	})
	if params.MaxDet > 0 && len(kept) > params.MaxDet {
		kept = kept[:params.MaxDet]
	}

	return kept
}
