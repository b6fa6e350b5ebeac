// Package pie computes wedge geometry for pie and donut charts from
// percentage shares. Slice 0 starts at 12 o'clock and wedges advance
// clockwise.
package pie

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/dashcore/pkg/models"
)

// degreesPerPercent maps a 100% share onto a full 360° turn.
const degreesPerPercent = 3.6

// Point is a cartesian coordinate in SVG user space (y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wedge describes one slice's arc. Angles are in degrees measured clockwise
// from 12 o'clock, before the -90° offset applied for the endpoints.
type Wedge struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	Sweep      float64 `json:"sweep"`
	Center     Point   `json:"center"`
	Radius     float64 `json:"radius"`
	Start      Point   `json:"start"`
	End        Point   `json:"end"`
	LargeArc   int     `json:"large_arc"`
	SweepFlag  int     `json:"sweep_flag"`
}

// Arcs threads a running angle cursor through the slices and returns one
// wedge per slice, in order. Zero-value slices become degenerate wedges
// (start == end) so indices stay aligned with caller palettes; slices that
// do not sum to 100 are drawn as given.
func Arcs(slices []models.PieSlice, cx, cy, r float64) []Wedge {
	wedges := make([]Wedge, 0, len(slices))
	cursor := 0.0
	for _, s := range slices {
		sweep := s.Value * degreesPerPercent
		w := Wedge{
			Name:       s.Name,
			Value:      s.Value,
			StartAngle: cursor,
			EndAngle:   cursor + sweep,
			Sweep:      sweep,
			Center:     Point{X: cx, Y: cy},
			Radius:     r,
			SweepFlag:  1,
		}
		w.Start = PointOnCircle(cx, cy, r, w.StartAngle)
		w.End = PointOnCircle(cx, cy, r, w.EndAngle)
		if sweep > 180 {
			w.LargeArc = 1
		}
		cursor = w.EndAngle
		wedges = append(wedges, w)
	}
	return wedges
}

// PointOnCircle converts an angle measured clockwise from 12 o'clock into
// a point on the circle of radius r centered at (cx, cy).
func PointOnCircle(cx, cy, r, degrees float64) Point {
	rad := (degrees - 90) * math.Pi / 180
	return Point{
		X: cx + r*math.Cos(rad),
		Y: cy + r*math.Sin(rad),
	}
}

// Total returns the sum of slice values. A normalized pie totals 100.
func Total(slices []models.PieSlice) float64 {
	sum := 0.0
	for _, s := range slices {
		sum += s.Value
	}
	return sum
}

// Empty reports whether the wedge covers no area.
func (w Wedge) Empty() bool {
	return w.Sweep <= 0
}

// Full reports whether the wedge covers the whole circle.
func (w Wedge) Full() bool {
	return w.Sweep >= 360
}

// Path returns the SVG path data for a filled wedge: move to the center,
// line to the start point, arc to the end point, close.
//
// A full-circle wedge has coincident endpoints, which an SVG arc renders as
// nothing, so it is drawn as two half arcs through the opposite point.
func (w Wedge) Path() string {
	var sb strings.Builder
	if w.Full() {
		mid := PointOnCircle(w.Center.X, w.Center.Y, w.Radius, w.StartAngle+180)
		fmt.Fprintf(&sb, "M %s %s ", num(w.Start.X), num(w.Start.Y))
		fmt.Fprintf(&sb, "A %s %s 0 1 1 %s %s ", num(w.Radius), num(w.Radius), num(mid.X), num(mid.Y))
		fmt.Fprintf(&sb, "A %s %s 0 1 1 %s %s Z", num(w.Radius), num(w.Radius), num(w.Start.X), num(w.Start.Y))
		return sb.String()
	}
	fmt.Fprintf(&sb, "M %s %s ", num(w.Center.X), num(w.Center.Y))
	fmt.Fprintf(&sb, "L %s %s ", num(w.Start.X), num(w.Start.Y))
	fmt.Fprintf(&sb, "A %s %s 0 %d %d %s %s Z",
		num(w.Radius), num(w.Radius), w.LargeArc, w.SweepFlag, num(w.End.X), num(w.End.Y))
	return sb.String()
}

// num prints a coordinate with at most three decimals and no trailing zeros.
func num(v float64) string {
	if math.Abs(v) < 5e-4 {
		v = 0
	}
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
