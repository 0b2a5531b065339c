// Package stance maps hand positions onto a coarse zone grid and classifies
// zone pairs into boxer stances.
package stance

import "fmt"

// Logical grid dimensions consumed by the classifier. Finer display grids
// collapse to this space before classification.
const (
	LogicalRows = 3
	LogicalCols = 2
)

// Zone is the discrete row/column bucket a hand occupies in the current
// frame. Row 0 is the top of the image, column 0 the left. Zones are
// recomputed every frame and never persisted.
type Zone struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid buckets normalized positions into zones. Mirror flips the column
// index so a front-facing webcam's mirrored image maps screen-left to the
// player's left; which physical hand counts as "left" is a camera-mounting
// decision, so it lives here in configuration rather than in the
// classifier.
type Grid struct {
	Rows   int
	Cols   int
	Mirror bool
}

// DefaultGrid returns the 3x2 logical grid with mirroring enabled, the
// convention for a front-facing webcam.
func DefaultGrid() Grid {
	return Grid{Rows: LogicalRows, Cols: LogicalCols, Mirror: true}
}

// Validate reports grid dimensions the bucketing cannot work with.
func (g Grid) Validate() error {
	if g.Rows < LogicalRows {
		return fmt.Errorf("grid rows must be at least %d, got %d", LogicalRows, g.Rows)
	}
	if g.Cols < LogicalCols {
		return fmt.Errorf("grid cols must be at least %d, got %d", LogicalCols, g.Cols)
	}
	return nil
}

// Locate buckets a normalized (x, y) position into a grid zone. Positions
// outside [0,1] clamp to the edge cells.
func (g Grid) Locate(x, y float64) Zone {
	col := int(x * float64(g.Cols))
	row := int(y * float64(g.Rows))

	col = clamp(col, 0, g.Cols-1)
	row = clamp(row, 0, g.Rows-1)

	if g.Mirror {
		col = g.Cols - 1 - col
	}
	return Zone{Row: row, Col: col}
}

// Collapse reduces a zone from this grid's resolution to the 3x2 logical
// space by integer-dividing the indices. A grid already at logical
// resolution passes zones through unchanged.
func (g Grid) Collapse(z Zone) Zone {
	rowFactor := g.Rows / LogicalRows
	colFactor := g.Cols / LogicalCols
	if rowFactor < 1 {
		rowFactor = 1
	}
	if colFactor < 1 {
		colFactor = 1
	}

	return Zone{
		Row: clamp(z.Row/rowFactor, 0, LogicalRows-1),
		Col: clamp(z.Col/colFactor, 0, LogicalCols-1),
	}
}

// LocateLogical buckets a position and collapses it to the logical space in
// one step.
func (g Grid) LocateLogical(x, y float64) Zone {
	return g.Collapse(g.Locate(x, y))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
