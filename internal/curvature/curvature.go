package curvature

// Extrema initializers; a vertex with no incident edges keeps the huge
// sentinel product, ranks first and becomes a singleton seed.
const (
	initMax = -2e9
	initMin = 2e9
)

// VertexCurvatures computes the Gaussian-curvature proxy per vertex:
// kappa = k_max * k_min over the curvatures of all incident edge records.
// The proxy is an approximation (the principal-curvature planes are
// assumed orthogonal); its formula is preserved exactly because seed
// ordering depends on it.
func VertexCurvatures(adj *Adjacency) []float64 {
	kappa := make([]float64, adj.VertexCount())
	for v := range kappa {
		maxCurv, minCurv := float64(initMax), float64(initMin)
		for _, e := range adj.Neighbors(v) {
			if e.Curvature > maxCurv {
				maxCurv = e.Curvature
			}
			if e.Curvature < minCurv {
				minCurv = e.Curvature
			}
		}
		kappa[v] = maxCurv * minCurv
	}
	return kappa
}
