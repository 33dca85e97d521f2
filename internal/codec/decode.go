package codec

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/mesh-codec/internal/connectivity"
	"github.com/mesh-codec/internal/geom"
	apperrors "github.com/mesh-codec/pkg/errors"
)

// tokenReader scans whitespace-separated tokens and converts them with
// explicit fallible returns; a truncated or malformed stream surfaces as
// an IO failure, never a panic.
type tokenReader struct {
	s *bufio.Scanner
}

func newTokenReader(r io.Reader) *tokenReader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	return &tokenReader{s: s}
}

func (t *tokenReader) next() (string, error) {
	if !t.s.Scan() {
		if err := t.s.Err(); err != nil {
			return "", apperrors.Wrap(apperrors.CodeIOFailure, "failed to read artifact", err)
		}
		return "", apperrors.New(apperrors.CodeIOFailure, "unexpected end of artifact")
	}
	return t.s.Text(), nil
}

func (t *tokenReader) readInt() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, apperrors.Newf(apperrors.CodeIOFailure, "malformed integer %q", tok)
	}
	return v, nil
}

func (t *tokenReader) readFloat() (float64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, apperrors.Newf(apperrors.CodeIOFailure, "malformed float %q", tok)
	}
	return v, nil
}

// readPatchGrid parses a "patch/grid" token.
func (t *tokenReader) readPatchGrid() (connectivity.PatchGrid, error) {
	tok, err := t.next()
	if err != nil {
		return connectivity.PatchGrid{}, err
	}
	left, right, ok := strings.Cut(tok, "/")
	if !ok {
		return connectivity.PatchGrid{}, apperrors.Newf(apperrors.CodeIOFailure, "malformed patch/grid token %q", tok)
	}
	patch, err1 := strconv.Atoi(left)
	grid, err2 := strconv.Atoi(right)
	if err1 != nil || err2 != nil {
		return connectivity.PatchGrid{}, apperrors.Newf(apperrors.CodeIOFailure, "malformed patch/grid token %q", tok)
	}
	return connectivity.PatchGrid{Patch: patch, Grid: grid}, nil
}

func (t *tokenReader) readVec3() (geom.Vec3, error) {
	x, err := t.readFloat()
	if err != nil {
		return geom.Vec3{}, err
	}
	y, err := t.readFloat()
	if err != nil {
		return geom.Vec3{}, err
	}
	z, err := t.readFloat()
	if err != nil {
		return geom.Vec3{}, err
	}
	return geom.V3(x, y, z), nil
}

// Read deserializes an artifact from the stream.
func Read(r io.Reader) (*Encoded, error) {
	t := newTokenReader(r)

	nBins, err := t.readInt()
	if err != nil {
		return nil, err
	}
	patchCount, err := t.readInt()
	if err != nil {
		return nil, err
	}
	if nBins <= 0 || patchCount < 0 {
		return nil, apperrors.Newf(apperrors.CodeIOFailure, "invalid header: n_bins=%d patches=%d", nBins, patchCount)
	}
	cells := nBins * nBins

	features, err := t.readInt()
	if err != nil {
		return nil, err
	}
	if features != 1 {
		return nil, apperrors.Newf(apperrors.CodeIOFailure, "unsupported feature count %d, want 1", features)
	}

	atoms, err := t.readInt()
	if err != nil {
		return nil, err
	}
	if atoms <= 0 {
		return nil, apperrors.Newf(apperrors.CodeIOFailure, "invalid atom count %d", atoms)
	}

	dictionary, err := readMatrix(t, cells, atoms)
	if err != nil {
		return nil, err
	}
	code, err := readMatrix(t, atoms, patchCount)
	if err != nil {
		return nil, err
	}

	triCount, err := t.readInt()
	if err != nil {
		return nil, err
	}
	if triCount < 0 {
		return nil, apperrors.Newf(apperrors.CodeIOFailure, "negative tri-crack count %d", triCount)
	}
	triCracks := make([]connectivity.TriCrack, triCount)
	for i := range triCracks {
		for k := 0; k < 3; k++ {
			pg, err := t.readPatchGrid()
			if err != nil {
				return nil, err
			}
			triCracks[i][k] = pg
		}
	}

	patches := make([]EncodedPatch, patchCount)
	for p := range patches {
		if err := readPatchBlock(t, &patches[p], cells); err != nil {
			return nil, err
		}
	}

	return &Encoded{
		NBins:      nBins,
		PatchCount: patchCount,
		Atoms:      atoms,
		Dictionary: dictionary,
		Code:       code,
		TriCracks:  triCracks,
		Patches:    patches,
	}, nil
}

func readMatrix(t *tokenReader, rows, cols int) (*mat.Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, apperrors.Newf(apperrors.CodeIOFailure, "invalid matrix shape %dx%d", rows, cols)
	}
	data := make([]float64, rows*cols)
	for i := range data {
		v, err := t.readFloat()
		if err != nil {
			return nil, err
		}
		data[i] = v
	}
	return mat.NewDense(rows, cols, data), nil
}

func readPatchBlock(t *tokenReader, p *EncodedPatch, cells int) error {
	var err error
	if p.SeedPos, err = t.readVec3(); err != nil {
		return err
	}
	if p.SeedNormal, err = t.readVec3(); err != nil {
		return err
	}
	if p.Span, err = t.readFloat(); err != nil {
		return err
	}
	if p.Bias.X, err = t.readFloat(); err != nil {
		return err
	}
	if p.Bias.Y, err = t.readFloat(); err != nil {
		return err
	}

	maskSize, err := t.readInt()
	if err != nil {
		return err
	}
	if maskSize < 0 || maskSize > cells {
		return apperrors.Newf(apperrors.CodeIOFailure, "invalid mask size %d", maskSize)
	}
	p.Mask = make([]int, maskSize)
	prev := -1
	for i := range p.Mask {
		g, err := t.readInt()
		if err != nil {
			return err
		}
		if g < 0 || g >= cells || g <= prev {
			return apperrors.Newf(apperrors.CodeIOFailure, "invalid mask cell %d", g)
		}
		p.Mask[i] = g
		prev = g
	}

	faceCount, err := t.readInt()
	if err != nil {
		return err
	}
	if faceCount < 0 {
		return apperrors.Newf(apperrors.CodeIOFailure, "negative face count %d", faceCount)
	}
	p.Faces = make([][3]int, faceCount)
	for i := range p.Faces {
		for k := 0; k < 3; k++ {
			if p.Faces[i][k], err = t.readInt(); err != nil {
				return err
			}
		}
	}

	biCount, err := t.readInt()
	if err != nil {
		return err
	}
	if biCount < 0 {
		return apperrors.Newf(apperrors.CodeIOFailure, "negative bi-crack count %d", biCount)
	}
	p.BiCracks = make([]connectivity.BiCrack, biCount)
	for i := range p.BiCracks {
		if p.BiCracks[i].G0, err = t.readInt(); err != nil {
			return err
		}
		if p.BiCracks[i].G1, err = t.readInt(); err != nil {
			return err
		}
		if p.BiCracks[i].Other, err = t.readPatchGrid(); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile deserializes an artifact from disk.
func ReadFile(path string) (*Encoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIOFailure, "failed to open artifact", err)
	}
	defer f.Close()
	return Read(f)
}
