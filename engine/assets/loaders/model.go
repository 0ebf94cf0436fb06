package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/math"
	"github.com/spaghettifunk/ose/engine/resources"
)

// ModelLoader reads Wavefront OBJ files. Polygons are triangulated as fans and
// identical position/texcoord/normal triples share one vertex.
type ModelLoader struct{}

func (ml *ModelLoader) LoadMesh(path string, target *resources.Mesh) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var (
		positions []math.Vec3
		texcoords []math.Vec2
		normals   []math.Vec3
		lookup    = make(map[[3]int]uint32)
	)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			positions = append(positions, math.NewVec3(v[0], v[1], v[2]))
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			texcoords = append(texcoords, math.NewVec2(v[0], v[1]))
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			normals = append(normals, math.NewVec3(v[0], v[1], v[2]))
		case "f":
			if len(fields) < 4 {
				return fmt.Errorf("%s:%d: face needs at least 3 vertices", path, lineNo)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				key, err := parseFaceRef(ref, len(positions), len(texcoords), len(normals))
				if err != nil {
					return fmt.Errorf("%s:%d: %w", path, lineNo, err)
				}
				idx, ok := lookup[key]
				if !ok {
					vert := resources.Vertex3D{Position: positions[key[0]]}
					if key[1] >= 0 {
						vert.Texcoord = texcoords[key[1]]
					}
					if key[2] >= 0 {
						vert.Normal = normals[key[2]]
					}
					idx = uint32(len(target.Vertices))
					target.Vertices = append(target.Vertices, vert)
					lookup[key] = idx
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				target.Indices = append(target.Indices, face[0], face[i], face[i+1])
			}
		case "o", "g", "s", "usemtl", "mtllib":
			// Grouping and material statements carry nothing a Mesh stores.
		default:
			core.LogDebug("%s:%d: unknown statement '%s' skipped", path, lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(target.Indices) == 0 {
		return fmt.Errorf("%s: no faces", path)
	}
	return nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s'", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceRef turns `v`, `v/vt`, `v//vn` or `v/vt/vn` into zero based indices,
// -1 for an absent element. Negative OBJ indices count back from the end.
func parseFaceRef(ref string, nPos, nTex, nNorm int) ([3]int, error) {
	key := [3]int{-1, -1, -1}
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return key, fmt.Errorf("invalid face reference '%s'", ref)
	}
	limits := [3]int{nPos, nTex, nNorm}
	for i, p := range parts {
		if p == "" {
			if i == 0 {
				return key, fmt.Errorf("face reference '%s' has no position", ref)
			}
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n == 0 {
			return key, fmt.Errorf("invalid face reference '%s'", ref)
		}
		if n < 0 {
			n = limits[i] + n
		} else {
			n--
		}
		if n < 0 || n >= limits[i] {
			return key, fmt.Errorf("face reference '%s' out of range", ref)
		}
		key[i] = n
	}
	return key, nil
}
