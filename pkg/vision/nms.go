package vision

import "sort"

//IoU returns the intersection over union of a and b, 0 when the union is empty
func IoU(a, b BoundingBox) float64 {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	inter := 0.0
	if x2 > x1 && y2 > y1 {
		inter = (x2 - x1) * (y2 - y1)
	}

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}

	return inter / union
}

//Suppress performs greedy non-maximum suppression. Candidates with a confidence not strictly above
//scoreThreshold are dropped, the rest are visited by descending confidence (ties keep input order)
//and a candidate is kept only when its IoU with every kept box is at most overlapThreshold.
//The kept detections are returned in visiting order
func Suppress(detections []Detection, scoreThreshold, overlapThreshold float32) []Detection {
	order := make([]int, 0, len(detections))
	for i, d := range detections {
		if d.Confidence > scoreThreshold {
			order = append(order, i)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return detections[order[i]].Confidence > detections[order[j]].Confidence
	})

	var kept []Detection
	for _, idx := range order {
		candidate := detections[idx]

		keep := true
		for _, k := range kept {
			if IoU(candidate.Box, k.Box) > float64(overlapThreshold) {
				keep = false
				break
			}
		}

		if keep {
			kept = append(kept, candidate)
		}
	}

	return kept
}

//Boxes returns the boxes of detections in order
func Boxes(detections []Detection) []BoundingBox {
	boxes := make([]BoundingBox, len(detections))
	for i, d := range detections {
		boxes[i] = d.Box
	}
	return boxes
}
