// Package objfile loads and writes Wavefront OBJ meshes for the codec
// driver. Only the geometry subset matters here: v, vn and f records;
// polygons are fan-triangulated and per-vertex normals are accumulated
// from the file's normal references, falling back to face-plane normals
// when the file carries none.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mesh-codec/internal/geom"
	"github.com/mesh-codec/internal/mesh"
	apperrors "github.com/mesh-codec/pkg/errors"
)

// Load parses an OBJ stream into a mesh.
func Load(r io.Reader) (*mesh.Mesh, error) {
	var (
		positions []geom.Vec3
		normals   []geom.Vec3
		faces     [][3]int
		// normalAccum sums, per vertex, the normals its face corners
		// reference, accumulated as each face is parsed.
		normalAccum []geom.Vec3
		sawNormal   bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, lineErr(lineNum, err)
			}
			positions = append(positions, p)
			normalAccum = append(normalAccum, geom.Vec3{})

		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, lineErr(lineNum, err)
			}
			normals = append(normals, n)

		case "f":
			if len(fields) < 4 {
				return nil, lineErr(lineNum, fmt.Errorf("face with %d vertices", len(fields)-1))
			}
			corners := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				vi, ni, err := parseFaceRef(ref, len(positions), len(normals))
				if err != nil {
					return nil, lineErr(lineNum, err)
				}
				corners = append(corners, vi)
				if ni >= 0 {
					normalAccum[vi] = normalAccum[vi].Add(normals[ni])
					sawNormal = true
				}
			}
			// Fan triangulation for polygons.
			for i := 1; i+1 < len(corners); i++ {
				faces = append(faces, [3]int{corners[0], corners[i], corners[i+1]})
			}

		default:
			// vt, o, g, s, mtllib, usemtl: irrelevant to the codec.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIOFailure, "failed to read obj", err)
	}
	if len(positions) == 0 {
		return nil, apperrors.New(apperrors.CodeInputIllFormed, "obj has no vertices")
	}

	if !sawNormal {
		accumulateFaceNormals(positions, faces, normalAccum)
	}
	for i := range normalAccum {
		n := normalAccum[i].Normalized()
		if n.Norm() == 0 {
			return nil, apperrors.Newf(apperrors.CodeInputIllFormed,
				"vertex %d has no derivable normal", i)
		}
		normalAccum[i] = n
	}

	return &mesh.Mesh{
		Positions: positions,
		Normals:   normalAccum,
		Faces:     faces,
	}, nil
}

// LoadFile parses an OBJ file into a mesh.
func LoadFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIOFailure, "failed to open obj", err)
	}
	defer f.Close()
	return Load(f)
}

// Write emits the mesh as OBJ: positions, normals when present, and
// 1-based faces.
func Write(w io.Writer, m *mesh.Mesh, precision int) error {
	bw := bufio.NewWriter(w)
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	for _, p := range m.Positions {
		if _, err := fmt.Fprintf(bw, "v %s %s %s\n", format(p.X), format(p.Y), format(p.Z)); err != nil {
			return apperrors.Wrap(apperrors.CodeIOFailure, "failed to write obj", err)
		}
	}
	for _, n := range m.Normals {
		if _, err := fmt.Fprintf(bw, "vn %s %s %s\n", format(n.X), format(n.Y), format(n.Z)); err != nil {
			return apperrors.Wrap(apperrors.CodeIOFailure, "failed to write obj", err)
		}
	}
	for _, f := range m.Faces {
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1); err != nil {
			return apperrors.Wrap(apperrors.CodeIOFailure, "failed to write obj", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return apperrors.Wrap(apperrors.CodeIOFailure, "failed to write obj", err)
	}
	return nil
}

// WriteFile emits the mesh as an OBJ file.
func WriteFile(path string, m *mesh.Mesh, precision int) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIOFailure, "failed to create obj", err)
	}
	defer f.Close()
	return Write(f, m, precision)
}

func parseVec3(fields []string) (geom.Vec3, error) {
	if len(fields) < 3 {
		return geom.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var out [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geom.Vec3{}, fmt.Errorf("malformed component %q", fields[i])
		}
		out[i] = v
	}
	return geom.V3(out[0], out[1], out[2]), nil
}

// parseFaceRef parses one face corner: "v", "v/vt", "v//vn" or "v/vt/vn".
// Indices are 1-based; negative indices count from the end. The returned
// normal index is -1 when the corner has none.
func parseFaceRef(ref string, vertexCount, normalCount int) (int, int, error) {
	parts := strings.Split(ref, "/")

	vi, err := parseIndex(parts[0], vertexCount)
	if err != nil {
		return 0, 0, fmt.Errorf("face ref %q: %w", ref, err)
	}

	ni := -1
	if len(parts) == 3 && parts[2] != "" {
		ni, err = parseIndex(parts[2], normalCount)
		if err != nil {
			return 0, 0, fmt.Errorf("face ref %q: %w", ref, err)
		}
	}
	return vi, ni, nil
}

func parseIndex(s string, count int) (int, error) {
	raw, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("malformed index %q", s)
	}
	idx := raw
	if raw < 0 {
		idx = count + raw + 1
	}
	if idx < 1 || idx > count {
		return 0, fmt.Errorf("index %d out of range [1, %d]", raw, count)
	}
	return idx - 1, nil
}

// accumulateFaceNormals sums face-plane normals onto each corner vertex.
func accumulateFaceNormals(positions []geom.Vec3, faces [][3]int, accum []geom.Vec3) {
	for _, f := range faces {
		a := positions[f[1]].Sub(positions[f[0]])
		b := positions[f[2]].Sub(positions[f[0]])
		n := a.Cross(b)
		for _, v := range f {
			accum[v] = accum[v].Add(n)
		}
	}
}

func lineErr(line int, err error) error {
	return apperrors.Wrap(apperrors.CodeInputIllFormed, fmt.Sprintf("obj line %d", line), err)
}
