package stage

import (
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/ribbon/internal/settings"
)

var orange = colorful.Color{R: 1, G: 0.55, B: 0}

type drawable struct{ name string }

func (*drawable) Visible() bool { return true }

func square(x0, y0, x1, y1 float64) []settings.Point {
	return []settings.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestFillPolygonLightsCoveredCells(t *testing.T) {
	s := New(settings.Dimensions{Width: 100, Height: 100}, 10, 10)
	s.FillPolygon(square(0, 0, 50, 50), orange)

	if got := s.Lit(0, 0); got != 0xFF {
		t.Fatalf("top-left cell bits = %#x, want full cell", got)
	}
	if got := s.Lit(4, 4); got != 0xFF {
		t.Fatalf("cell (4,4) bits = %#x, want full cell", got)
	}
	if got := s.Lit(5, 5); got != 0 {
		t.Fatalf("cell (5,5) bits = %#x, want empty", got)
	}
}

func TestFillPolygonClipsToGrid(t *testing.T) {
	s := New(settings.Dimensions{Width: 100, Height: 100}, 4, 2)
	s.FillPolygon(square(-500, -500, 500, 500), orange)
	for row := range 2 {
		for col := range 4 {
			if s.Lit(col, row) != 0xFF {
				t.Fatalf("cell (%d,%d) not filled", col, row)
			}
		}
	}
}

func TestRenderPlainBraille(t *testing.T) {
	s := New(settings.Dimensions{Width: 40, Height: 40}, 4, 2)
	s.FillPolygon(square(0, 0, 20, 20), orange)

	lines := strings.Split(s.Render(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "⣿⣿") {
		t.Fatalf("expected two full braille cells in %q", lines[0])
	}
	if strings.ContainsRune(lines[1], '⣿') {
		t.Fatalf("expected empty second row, got %q", lines[1])
	}
}

func TestClearKeepsChildren(t *testing.T) {
	s := New(settings.Dimensions{Width: 10, Height: 10}, 2, 2)
	a, b := &drawable{"a"}, &drawable{"b"}
	s.AddChild(a)
	s.AddChild(b)
	s.FillPolygon(square(0, 0, 10, 10), orange)
	s.Clear()

	if s.Lit(0, 0) != 0 {
		t.Fatal("expected cleared grid")
	}
	if s.Children() != 2 {
		t.Fatalf("Children() = %d, want 2", s.Children())
	}
	s.RemoveChild(a)
	s.RemoveChild(a)
	if s.Children() != 1 {
		t.Fatalf("Children() = %d, want 1", s.Children())
	}
}

func TestResizeClampsToOneCell(t *testing.T) {
	s := New(settings.Dimensions{Width: 10, Height: 10}, 0, -3)
	if cols, rows := s.Size(); cols != 1 || rows != 1 {
		t.Fatalf("Size() = %d,%d, want 1,1", cols, rows)
	}
}
