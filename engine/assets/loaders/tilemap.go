package loaders

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/ose/engine/resources"
)

// tilemapFile is the on-disk YAML layout. Each entry of rows is one row of
// whitespace separated tile indices, top row first; -1 marks an empty cell.
type tilemapFile struct {
	TileWidth  int      `yaml:"tile_width"`
	TileHeight int      `yaml:"tile_height"`
	Tileset    string   `yaml:"tileset"`
	Rows       []string `yaml:"rows"`
}

type TilemapLoader struct{}

func (tl *TilemapLoader) LoadTilemap(path string, target *resources.Tilemap) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f tilemapFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if f.TileWidth <= 0 || f.TileHeight <= 0 {
		return fmt.Errorf("%s: tile_width and tile_height must be > 0", path)
	}
	if len(f.Rows) == 0 {
		return fmt.Errorf("%s: no rows", path)
	}

	width := -1
	tiles := make([]int32, 0, len(f.Rows)*len(strings.Fields(f.Rows[0])))
	for y, row := range f.Rows {
		cells := strings.Fields(row)
		if width < 0 {
			width = len(cells)
		}
		if len(cells) != width {
			return fmt.Errorf("%s: row %d has %d tiles, want %d", path, y, len(cells), width)
		}
		for _, c := range cells {
			v, err := strconv.ParseInt(c, 10, 32)
			if err != nil || v < -1 {
				return fmt.Errorf("%s: row %d: invalid tile '%s'", path, y, c)
			}
			tiles = append(tiles, int32(v))
		}
	}

	target.Width = width
	target.Height = len(f.Rows)
	target.TileWidth = f.TileWidth
	target.TileHeight = f.TileHeight
	target.Tileset = f.Tileset
	target.Tiles = tiles
	return nil
}
