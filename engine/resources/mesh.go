package resources

import "github.com/spaghettifunk/ose/engine/math"

/**
 * @brief Represents a single vertex in 3D space.
 */
type Vertex3D struct {
	Position math.Vec3
	Normal   math.Vec3
	Texcoord math.Vec2
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Name     string
	Path     string
	Vertices []Vertex3D
	Indices  []uint32
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Tilemap is a grid of tile indices into a tileset texture. Index -1 marks an
// empty cell.
type Tilemap struct {
	Name       string
	Path       string
	Width      int
	Height     int
	TileWidth  int
	TileHeight int
	// Tileset is the texture path, relative to Resources.
	Tileset string
	Tiles   []int32
}

// Tile returns the tile at column x, row y, or -1 outside the map.
func (t *Tilemap) Tile(x, y int) int32 {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return -1
	}
	return t.Tiles[y*t.Width+x]
}
