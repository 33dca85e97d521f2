package mesh

// PatchColor maps a patch index onto a red-green-blue ramp, matching the
// coloring the viewer uses for hard patch assignments. Returned components
// are in [0, 1].
func PatchColor(index, total int) [3]float64 {
	if total <= 1 {
		return [3]float64{1, 0, 0}
	}
	value := 2.0 / float64(total-1) * float64(index)
	if value > 2 {
		value = 2
	}
	var r, g, b float64
	if value <= 1 {
		r = 1 - value
		g = value
	} else {
		g = 2 - value
		b = value - 1
	}
	return [3]float64{r, g, b}
}

// FaceColors expands per-vertex patch assignments into a flat per-corner
// RGB array in face order, three corners per face.
func FaceColors(faces [][3]int, vertexToPatch []int, patchCount int) []float64 {
	colors := make([]float64, 0, len(faces)*9)
	for _, f := range faces {
		for _, v := range f {
			c := PatchColor(vertexToPatch[v], patchCount)
			colors = append(colors, c[0], c[1], c[2])
		}
	}
	return colors
}
