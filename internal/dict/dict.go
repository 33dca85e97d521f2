// Package dict factors the stacked patch height grids into a shared
// dictionary and per-patch codes via truncated thin SVD.
package dict

import (
	"gonum.org/v1/gonum/mat"

	apperrors "github.com/mesh-codec/pkg/errors"
	"github.com/mesh-codec/pkg/utils"
)

// rankTol is the relative singular-value cutoff for the usable rank.
const rankTol = 1e-12

// Coder encodes height matrices. It is content-independent of patch
// semantics; it only sees the feature matrix.
type Coder struct {
	logger utils.Logger
}

// NewCoder creates a Coder. A nil logger discards the rank-collapse note.
func NewCoder(logger utils.Logger) *Coder {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Coder{logger: logger}
}

// Encode computes feature ~= dictionary * code with at most atoms columns
// in the dictionary. Atoms are ordered by descending singular value. When
// the requested atom count exceeds the usable rank, the count is reduced
// and logged; the reduction is recoverable, never an error.
func (c *Coder) Encode(feature *mat.Dense, atoms int) (dictionary, code *mat.Dense, actual int, err error) {
	_, cols := feature.Dims()
	if atoms <= 0 {
		atoms = cols
	}

	var svd mat.SVD
	if ok := svd.Factorize(feature, mat.SVDThin); !ok {
		return nil, nil, 0, apperrors.New(apperrors.CodeRankCollapse, "svd factorization failed to converge")
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	_, thin := u.Dims()
	actual = atoms
	if actual > thin {
		actual = thin
	}
	if rank := usableRank(values); actual > rank {
		actual = rank
	}
	if actual != atoms {
		c.logger.Info("atom count adjusted to %d (requested %d)", actual, atoms)
	}

	dictionary = mat.DenseCopyOf(u.Slice(0, rowCount(&u), 0, actual))

	// code = diag(sigma) * V^T, truncated; gonum's V is pre-transpose,
	// matching Eigen rather than numpy.
	code = mat.NewDense(actual, cols, nil)
	for i := 0; i < actual; i++ {
		for j := 0; j < cols; j++ {
			code.Set(i, j, values[i]*v.At(j, i))
		}
	}

	return dictionary, code, actual, nil
}

// Decode recomputes the height matrix from dictionary and code.
func Decode(dictionary, code *mat.Dense) *mat.Dense {
	var h mat.Dense
	h.Mul(dictionary, code)
	return &h
}

// usableRank counts singular values above the relative cutoff, flooring at
// one so an all-zero feature matrix still yields a (zero) atom the wire
// format can carry.
func usableRank(values []float64) int {
	if len(values) == 0 {
		return 1
	}
	cutoff := values[0] * rankTol
	rank := 0
	for _, s := range values {
		if s > cutoff && s > 0 {
			rank++
		}
	}
	if rank < 1 {
		rank = 1
	}
	return rank
}

func rowCount(m *mat.Dense) int {
	r, _ := m.Dims()
	return r
}
