package importer

import (
	"fmt"
	"math"
	"slices"

	"github.com/piwi3910/guillocut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// Shapes below this size on either axis are reported and skipped.
const minShapeSize = 0.01

// chainTolerance is how far apart two LINE/ARC endpoints may be and still
// count as connected.
const chainTolerance = 0.01

type point struct{ X, Y float64 }

// shape is a closed outline read from the drawing. Only its bounding box is
// used; items are always rectangles.
type shape []point

func (s shape) bounds() (w, h float64) {
	if len(s) == 0 {
		return 0, 0
	}
	minX, minY := s[0].X, s[0].Y
	maxX, maxY := minX, minY
	for _, p := range s[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return maxX - minX, maxY - minY
}

// area is the absolute shoelace area, used to order chained outlines.
func (s shape) area() float64 {
	var a float64
	for i := range s {
		j := (i + 1) % len(s)
		a += s[i].X*s[j].Y - s[j].X*s[i].Y
	}
	return math.Abs(a) / 2
}

type segment struct{ a, b point }

// ImportDXF reads closed shapes from a DXF drawing. Every LWPOLYLINE, CIRCLE
// and closed chain of LINE/ARC entities becomes one item sized by its
// bounding box.
func ImportDXF(path string) ImportResult {
	var result ImportResult

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}
	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes []shape
	var loose []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			s := polylineShape(e)
			if len(s) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			shapes = append(shapes, s)
		case *entity.Circle:
			c := point{e.Center[0], e.Center[1]}
			shapes = append(shapes, shape{
				{c.X - e.Radius, c.Y - e.Radius},
				{c.X + e.Radius, c.Y + e.Radius},
			})
		case *entity.Arc:
			pts := arcPoints(e, 32)
			for i := 1; i < len(pts); i++ {
				loose = append(loose, segment{pts[i-1], pts[i]})
			}
		case *entity.Line:
			loose = append(loose, segment{
				point{e.Start[0], e.Start[1]},
				point{e.End[0], e.End[1]},
			})
		}
	}
	shapes = append(shapes, chain(loose)...)

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for i, s := range shapes {
		w, h := s.bounds()
		if w < minShapeSize || h < minShapeSize {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", w, h))
			continue
		}
		result.Items = append(result.Items, model.NewItem(fmt.Sprintf("DXF Part %d", i+1), w, h))
	}
	if len(result.Items) == 0 {
		result.Errors = append(result.Errors, "No usable shapes found in DXF file")
	}
	return result
}

// polylineShape flattens a LWPOLYLINE. Vertices with a bulge are expanded
// into arc points so the bounding box includes the arc's extent.
func polylineShape(lw *entity.LwPolyline) shape {
	var s shape
	n := len(lw.Vertices)
	for i, v := range lw.Vertices {
		cur := point{v[0], v[1]}
		var bulge float64
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			s = append(s, cur)
			continue
		}
		nv := lw.Vertices[(i+1)%n]
		arc := bulgePoints(cur, point{nv[0], nv[1]}, bulge, 32)
		s = append(s, arc[:len(arc)-1]...)
	}
	return s
}

// bulgePoints samples the arc between p1 and p2 described by a DXF bulge, the
// tangent of a quarter of the included angle. Positive bulges run
// counter-clockwise.
func bulgePoints(p1, p2 point, bulge float64, steps int) []point {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []point{p1, p2}
	}

	theta := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Sin(math.Abs(theta)/2))
	// Signed distance from the chord midpoint to the centre along the chord's
	// left normal. It turns negative for clockwise arcs and for arcs sweeping
	// more than half a circle.
	d := radius * math.Cos(theta/2)
	if bulge < 0 {
		d = -d
	}
	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	cx, cy := mx-dy/chord*d, my+dx/chord*d

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	pts := make([]point, steps+1)
	for i := range pts {
		a := start + theta*float64(i)/float64(steps)
		pts[i] = point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)}
	}
	pts[steps] = p2
	return pts
}

// arcPoints samples an ARC entity counter-clockwise from its start angle to
// its end angle, both in degrees.
func arcPoints(a *entity.Arc, steps int) []point {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	pts := make([]point, steps+1)
	for i := range pts {
		ang := start + (end-start)*float64(i)/float64(steps)
		pts[i] = point{cx + r*math.Cos(ang), cy + r*math.Sin(ang)}
	}
	return pts
}

func near(a, b point) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= chainTolerance
}

// chain joins loose segments end to end and returns every chain that closes
// on itself, largest area first. Open chains are dropped.
func chain(segs []segment) []shape {
	used := make([]bool, len(segs))
	var out []shape

	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		path := shape{segs[first].a, segs[first].b}

		for extended := true; extended; {
			extended = false
			tail := path[len(path)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case near(tail, s.a):
					path = append(path, s.b)
				case near(tail, s.b):
					path = append(path, s.a)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(path) >= 4 && near(path[0], path[len(path)-1]) {
			out = append(out, path[:len(path)-1])
		}
	}

	slices.SortStableFunc(out, func(a, b shape) int {
		switch {
		case a.area() > b.area():
			return -1
		case a.area() < b.area():
			return 1
		}
		return 0
	})
	return out
}
