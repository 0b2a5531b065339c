package stance

import "testing"

func TestGrid_Locate(t *testing.T) {
	g := Grid{Rows: 3, Cols: 2}

	tests := []struct {
		name string
		x, y float64
		want Zone
	}{
		{"top left", 0.1, 0.1, Zone{Row: 0, Col: 0}},
		{"top right", 0.9, 0.1, Zone{Row: 0, Col: 1}},
		{"middle left", 0.25, 0.5, Zone{Row: 1, Col: 0}},
		{"middle right", 0.75, 0.5, Zone{Row: 1, Col: 1}},
		{"bottom left", 0.0, 0.99, Zone{Row: 2, Col: 0}},
		{"bottom right", 0.99, 0.99, Zone{Row: 2, Col: 1}},
		{"column boundary", 0.5, 0.1, Zone{Row: 0, Col: 1}},
		{"just past row boundary", 0.1, 0.34, Zone{Row: 1, Col: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Locate(tt.x, tt.y); got != tt.want {
				t.Errorf("Locate(%g, %g) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestGrid_LocateClampsOutOfRange(t *testing.T) {
	g := Grid{Rows: 3, Cols: 2}

	if got := g.Locate(-0.5, -0.5); got != (Zone{Row: 0, Col: 0}) {
		t.Errorf("Locate(-0.5, -0.5) = %+v, want top-left", got)
	}
	if got := g.Locate(1.5, 1.5); got != (Zone{Row: 2, Col: 1}) {
		t.Errorf("Locate(1.5, 1.5) = %+v, want bottom-right", got)
	}
}

func TestGrid_Mirror(t *testing.T) {
	plain := Grid{Rows: 3, Cols: 2}
	mirrored := Grid{Rows: 3, Cols: 2, Mirror: true}

	// A hand on the left of the image lands in the right logical column
	// once mirroring is applied.
	if got := plain.Locate(0.2, 0.5); got.Col != 0 {
		t.Errorf("plain grid: col = %d, want 0", got.Col)
	}
	if got := mirrored.Locate(0.2, 0.5); got.Col != 1 {
		t.Errorf("mirrored grid: col = %d, want 1", got.Col)
	}

	// Rows are unaffected by mirroring.
	if plain.Locate(0.2, 0.5).Row != mirrored.Locate(0.2, 0.5).Row {
		t.Error("mirroring changed the row index")
	}
}

func TestGrid_CollapseFinerGrid(t *testing.T) {
	fine := Grid{Rows: 6, Cols: 6}

	tests := []struct {
		in   Zone
		want Zone
	}{
		{Zone{Row: 0, Col: 0}, Zone{Row: 0, Col: 0}},
		{Zone{Row: 1, Col: 2}, Zone{Row: 0, Col: 0}},
		{Zone{Row: 2, Col: 3}, Zone{Row: 1, Col: 1}},
		{Zone{Row: 3, Col: 5}, Zone{Row: 1, Col: 1}},
		{Zone{Row: 4, Col: 0}, Zone{Row: 2, Col: 0}},
		{Zone{Row: 5, Col: 5}, Zone{Row: 2, Col: 1}},
	}

	for _, tt := range tests {
		if got := fine.Collapse(tt.in); got != tt.want {
			t.Errorf("Collapse(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestGrid_CollapseLogicalIsIdentity(t *testing.T) {
	g := DefaultGrid()
	for r := 0; r < LogicalRows; r++ {
		for c := 0; c < LogicalCols; c++ {
			in := Zone{Row: r, Col: c}
			if got := g.Collapse(in); got != in {
				t.Errorf("Collapse(%+v) = %+v, want identity", in, got)
			}
		}
	}
}

func TestGrid_CollapseClampsNonDivisible(t *testing.T) {
	// A 4-row grid does not divide evenly into 3; the extra row clamps to
	// the bottom of the logical space instead of overflowing it.
	g := Grid{Rows: 4, Cols: 2}
	got := g.Collapse(Zone{Row: 3, Col: 1})
	if got.Row < 0 || got.Row >= LogicalRows {
		t.Errorf("Collapse overflowed logical rows: %+v", got)
	}
}

func TestGrid_Validate(t *testing.T) {
	if err := DefaultGrid().Validate(); err != nil {
		t.Errorf("DefaultGrid().Validate() error = %v", err)
	}
	if err := (Grid{Rows: 1, Cols: 2}).Validate(); err == nil {
		t.Error("expected error for too few rows")
	}
	if err := (Grid{Rows: 3, Cols: 1}).Validate(); err == nil {
		t.Error("expected error for too few cols")
	}
}

func TestGrid_LocateLogical(t *testing.T) {
	fine := Grid{Rows: 6, Cols: 6}
	coarse := Grid{Rows: 3, Cols: 2}

	// A finer display grid must land positions in the same logical zones as
	// the coarse grid.
	positions := []struct{ x, y float64 }{
		{0.1, 0.1}, {0.4, 0.2}, {0.6, 0.5}, {0.9, 0.9}, {0.2, 0.7},
	}
	for _, p := range positions {
		if got, want := fine.LocateLogical(p.x, p.y), coarse.Locate(p.x, p.y); got != want {
			t.Errorf("LocateLogical(%g, %g) = %+v, coarse grid gives %+v", p.x, p.y, got, want)
		}
	}
}
