package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

const DefaultTileSize = 32

// Level is a tile grid course. Each layer is a row-major Width*Height
// array where non-zero cells are solid when the layer has physics.
type Level struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  int         `json:"tile_size,omitempty"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Physics bool `json:"physics"`
}

// Entity places a prefab-backed object, in tile coordinates.
type Entity struct {
	Type  string         `json:"type"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Props map[string]any `json:"props,omitempty"`
}

// Rect is a solid area in pixels, anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

func LoadLevelFromFS(name string) (*Level, error) {
	if path.Ext(name) == "" {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, strings.TrimPrefix(name, "levels/"))
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return ParseLevel(data)
}

func ParseLevel(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if lvl.Width <= 0 || lvl.Height <= 0 {
		return nil, fmt.Errorf("invalid level dimensions: %dx%d", lvl.Width, lvl.Height)
	}
	if lvl.TileSize <= 0 {
		lvl.TileSize = DefaultTileSize
	}
	for i, layer := range lvl.Layers {
		if len(layer) != lvl.Width*lvl.Height {
			return nil, fmt.Errorf("layer %d has %d cells, want %d", i, len(layer), lvl.Width*lvl.Height)
		}
	}
	return &lvl, nil
}

// PixelSize is the course extent in pixels.
func (l *Level) PixelSize() (float64, float64) {
	ts := float64(l.TileSize)
	return float64(l.Width) * ts, float64(l.Height) * ts
}

// SolidRects merges each row's runs of solid tiles on physics layers into
// rectangles, so a floor becomes one body instead of one per tile.
func (l *Level) SolidRects() []Rect {
	ts := float64(l.TileSize)
	var out []Rect
	for i, layer := range l.Layers {
		if i < len(l.LayerMeta) && !l.LayerMeta[i].Physics {
			continue
		}
		for y := 0; y < l.Height; y++ {
			start := -1
			for x := 0; x <= l.Width; x++ {
				solid := x < l.Width && layer[y*l.Width+x] != 0
				if solid && start < 0 {
					start = x
					continue
				}
				if !solid && start >= 0 {
					out = append(out, Rect{X: float64(start) * ts, Y: float64(y) * ts, W: float64(x-start) * ts, H: ts})
					start = -1
				}
			}
		}
	}
	return out
}

// TileCenter converts tile coordinates to the pixel centre of that tile.
func (l *Level) TileCenter(x, y int) (float64, float64) {
	ts := float64(l.TileSize)
	return (float64(x) + 0.5) * ts, (float64(y) + 0.5) * ts
}
