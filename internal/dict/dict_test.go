package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/mesh-codec/pkg/utils"
)

func assertMatApprox(t *testing.T, want, got mat.Matrix, tol float64) {
	t.Helper()
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	require.Equal(t, wr, gr)
	require.Equal(t, wc, gc)
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			assert.InDelta(t, want.At(i, j), got.At(i, j), tol, "at (%d,%d)", i, j)
		}
	}
}

func TestEncode_FullRankRoundTrip(t *testing.T) {
	h := mat.NewDense(4, 3, []float64{
		1, 0, 2,
		0, 1, 1,
		3, -1, 0,
		0.5, 2, -2,
	})
	coder := NewCoder(&utils.NullLogger{})

	d, c, actual, err := coder.Encode(h, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, actual)

	assertMatApprox(t, h, Decode(d, c), 1e-10)
}

func TestEncode_TruncationKeepsLargestSingularValues(t *testing.T) {
	// Rank-1 matrix plus small noise: one atom captures nearly everything.
	h := mat.NewDense(4, 4, []float64{
		2, 4, 6, 8,
		1, 2, 3, 4,
		3, 6, 9, 12,
		1, 2, 3, 4.001,
	})
	coder := NewCoder(&utils.NullLogger{})

	d, c, actual, err := coder.Encode(h, 1)
	require.NoError(t, err)
	require.Equal(t, 1, actual)

	assertMatApprox(t, h, Decode(d, c), 0.01)
}

func TestEncode_RankCollapseReducesAtoms(t *testing.T) {
	// Rank 1 exactly: requesting 4 atoms collapses to 1, with a log line.
	h := mat.NewDense(3, 4, []float64{
		1, 2, 3, 4,
		2, 4, 6, 8,
		-1, -2, -3, -4,
	})

	var buf logBuffer
	coder := NewCoder(&buf)

	d, c, actual, err := coder.Encode(h, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, actual)
	assert.Contains(t, buf.lines, "atom count adjusted")

	_, dc := d.Dims()
	cr, _ := c.Dims()
	assert.Equal(t, 1, dc)
	assert.Equal(t, 1, cr)
	assertMatApprox(t, h, Decode(d, c), 1e-10)
}

func TestEncode_ZeroMatrixKeepsOneAtom(t *testing.T) {
	h := mat.NewDense(4, 2, nil)
	coder := NewCoder(&utils.NullLogger{})

	d, c, actual, err := coder.Encode(h, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, actual)
	assertMatApprox(t, h, Decode(d, c), 1e-12)
}

func TestEncode_AtomsCappedByThinWidth(t *testing.T) {
	// Thin SVD of a (9, 2) matrix has at most 2 columns in U.
	h := mat.NewDense(9, 2, []float64{
		1, 0, 0, 1, 2, 3, -1, 4, 0,
		0, 5, 1, 1, 0, -2, 2, 2, 1,
	})
	coder := NewCoder(&utils.NullLogger{})

	_, _, actual, err := coder.Encode(h, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, actual)
}

func TestEncode_DefaultAtoms(t *testing.T) {
	h := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	coder := NewCoder(&utils.NullLogger{})
	_, _, actual, err := coder.Encode(h, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, actual)
}

// logBuffer captures Info lines for assertions.
type logBuffer struct {
	utils.NullLogger
	lines string
}

func (b *logBuffer) Info(msg string, args ...interface{}) {
	b.lines += msg + "\n"
}
