package codec

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"

	apperrors "github.com/mesh-codec/pkg/errors"
)

// sectionWriter emits the line-oriented wire format with fixed-point
// floats at the configured precision.
type sectionWriter struct {
	w         *bufio.Writer
	precision int
	err       error
}

func (s *sectionWriter) str(v string) {
	if s.err != nil {
		return
	}
	_, s.err = s.w.WriteString(v)
}

func (s *sectionWriter) int(v int) {
	s.str(strconv.Itoa(v))
}

func (s *sectionWriter) float(v float64) {
	s.str(strconv.FormatFloat(v, 'f', s.precision, 64))
}

func (s *sectionWriter) floats(vs ...float64) {
	for i, v := range vs {
		if i > 0 {
			s.str(" ")
		}
		s.float(v)
	}
	s.str("\n")
}

func (s *sectionWriter) ints(vs ...int) {
	for i, v := range vs {
		if i > 0 {
			s.str(" ")
		}
		s.int(v)
	}
	s.str("\n")
}

func (s *sectionWriter) blank() {
	s.str("\n")
}

// Write serializes the artifact. Section order: header, feature block,
// tri-crack list, then one block per patch.
func Write(w io.Writer, enc *Encoded, precision int) error {
	s := &sectionWriter{w: bufio.NewWriter(w), precision: precision}

	// Header: grid dimension and patch count.
	s.ints(enc.NBins, enc.PatchCount)
	s.blank()

	// Feature list. Exactly one feature matrix is emitted; the section
	// has no per-feature separators, so other counts are rejected on read.
	s.int(1)
	s.str("\n")
	s.int(enc.Atoms)
	s.str("\n")
	writeMatrixRows(s, enc.Dictionary)
	writeMatrixRows(s, enc.Code)
	s.blank()

	// Faces spanning three patches.
	s.int(len(enc.TriCracks))
	s.str("\n")
	for _, tc := range enc.TriCracks {
		for i, pg := range tc {
			if i > 0 {
				s.str(" ")
			}
			s.int(pg.Patch)
			s.str("/")
			s.int(pg.Grid)
		}
		s.str("\n")
	}
	s.blank()

	// Per-patch blocks in patch-id order.
	for _, p := range enc.Patches {
		s.floats(p.SeedPos.X, p.SeedPos.Y, p.SeedPos.Z)
		s.floats(p.SeedNormal.X, p.SeedNormal.Y, p.SeedNormal.Z)
		s.floats(p.Span, p.Bias.X, p.Bias.Y)

		s.int(len(p.Mask))
		s.str("\n")
		if len(p.Mask) > 0 {
			s.ints(p.Mask...)
		}

		s.int(len(p.Faces))
		s.str("\n")
		for _, f := range p.Faces {
			s.ints(f[0], f[1], f[2])
		}

		s.int(len(p.BiCracks))
		s.str("\n")
		for _, bc := range p.BiCracks {
			s.int(bc.G0)
			s.str(" ")
			s.int(bc.G1)
			s.str(" ")
			s.int(bc.Other.Patch)
			s.str("/")
			s.int(bc.Other.Grid)
			s.str("\n")
		}
		s.blank()
	}

	if s.err == nil {
		s.err = s.w.Flush()
	}
	if s.err != nil {
		return apperrors.Wrap(apperrors.CodeIOFailure, "failed to write artifact", s.err)
	}
	return nil
}

func writeMatrixRows(s *sectionWriter, m interface {
	Dims() (int, int)
	At(int, int) float64
}) {
	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				s.str(" ")
			}
			s.float(m.At(r, c))
		}
		s.str("\n")
	}
}

// WriteFile serializes the artifact to disk. The stream is committed
// atomically via a temp file and rename, so a failed write never leaves a
// half-written artifact behind.
func WriteFile(path string, enc *Encoded, precision int) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIOFailure, "failed to create temp artifact", err)
	}
	tmpName := tmp.Name()

	if err := Write(tmp, enc, precision); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.CodeIOFailure, "failed to close temp artifact", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.CodeIOFailure, "failed to commit artifact", err)
	}
	return nil
}
