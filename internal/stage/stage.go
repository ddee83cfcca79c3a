// Package stage rasterizes ribbon polygons onto a grid of Braille cells.
package stage

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/ribbon/internal/settings"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Stage is a draw surface mapping the viewport onto cols x rows cells,
// each holding a 2x4 dot grid. A cell takes the colour of the last polygon
// drawn into it.
type Stage struct {
	world    settings.Dimensions
	cols     int
	rows     int
	dots     []uint8
	colors   []colorful.Color
	children []settings.Drawable
}

// New creates a Stage for the given viewport and cell grid.
func New(world settings.Dimensions, cols, rows int) *Stage {
	s := &Stage{world: world}
	s.Resize(cols, rows)
	return s
}

// Resize changes the cell grid and clears it.
func (s *Stage) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	s.cols, s.rows = cols, rows
	s.dots = make([]uint8, cols*rows)
	s.colors = make([]colorful.Color, cols*rows)
}

// Size returns the cell grid size.
func (s *Stage) Size() (cols, rows int) { return s.cols, s.rows }

// Clear wipes every cell. Children are kept.
func (s *Stage) Clear() {
	clear(s.dots)
}

// AddChild registers a drawable.
func (s *Stage) AddChild(d settings.Drawable) {
	s.children = append(s.children, d)
}

// RemoveChild unregisters a drawable. Unknown drawables are ignored.
func (s *Stage) RemoveChild(d settings.Drawable) {
	for i := len(s.children) - 1; i >= 0; i-- {
		if s.children[i] == d {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Children returns the number of registered drawables.
func (s *Stage) Children() int { return len(s.children) }

// FillPolygon scan-converts points at dot resolution.
func (s *Stage) FillPolygon(points []settings.Point, c colorful.Color) {
	if len(points) < 3 || s.world.Width <= 0 || s.world.Height <= 0 {
		return
	}
	dotCols := s.cols * 2
	dotRows := s.rows * 4
	sx := float64(dotCols) / s.world.Width
	sy := float64(dotRows) / s.world.Height

	minY, maxY := math.Inf(1), math.Inf(-1)
	pts := make([]settings.Point, len(points))
	for i, p := range points {
		pts[i] = settings.Point{X: p.X * sx, Y: p.Y * sy}
		minY = math.Min(minY, pts[i].Y)
		maxY = math.Max(maxY, pts[i].Y)
	}

	first := max(0, int(math.Floor(minY)))
	last := min(dotRows-1, int(math.Ceil(maxY)))
	var xs []float64
	for dy := first; dy <= last; dy++ {
		y := float64(dy) + 0.5
		xs = xs[:0]
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if (a.Y <= y) == (b.Y <= y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)/(b.Y-a.Y)*(b.X-a.X))
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			from := max(0, int(math.Ceil(xs[k]-0.5)))
			to := min(dotCols-1, int(math.Floor(xs[k+1]-0.5)))
			for dx := from; dx <= to; dx++ {
				s.plot(dx, dy, c)
			}
		}
	}
}

func (s *Stage) plot(dx, dy int, c colorful.Color) {
	cell := (dy/4)*s.cols + dx/2
	s.dots[cell] |= 1 << brailleBits[dx%2][dy%4]
	s.colors[cell] = c
}

// Render returns the grid as rows of Braille runes, colouring runs of
// cells that share a colour.
func (s *Stage) Render() string {
	var out strings.Builder
	for row := range s.rows {
		if row > 0 {
			out.WriteByte('\n')
		}
		var run strings.Builder
		var runColor colorful.Color
		runLit := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runLit {
				out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor.Hex())).Render(run.String()))
			} else {
				out.WriteString(run.String())
			}
			run.Reset()
		}
		for col := range s.cols {
			i := row*s.cols + col
			bits := s.dots[i]
			lit := bits != 0
			if lit != runLit || (lit && s.colors[i] != runColor) {
				flush()
				runLit = lit
				runColor = s.colors[i]
			}
			if lit {
				run.WriteRune(rune(0x2800 + int(bits)))
			} else {
				run.WriteByte(' ')
			}
		}
		flush()
	}
	return out.String()
}

// Lit returns the Braille bits of the cell at col, row.
func (s *Stage) Lit(col, row int) uint8 {
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return 0
	}
	return s.dots[row*s.cols+col]
}
