package board

import "github.com/go-gl/mathgl/mgl64"

// BorderThickness is the border's thickness as a fraction of the board's
// side length.
const BorderThickness = 0.05

// Rect is an axis-aligned rectangle in the board's local plane, X across
// the width and Y across the depth, centered on the board origin.
type Rect struct {
	Center mgl64.Vec2
	Size   mgl64.Vec2
}

// Decor is the board's visual decomposition: four edge strips, four corner
// squares, and a translucent fill. It is derived geometry, recomputed from
// the footprint whenever scale or aspect ratio changes; it carries no state
// of its own.
type Decor struct {
	Segments [8]Rect
	Fill     Rect
}

// DecorFor lays out border and fill for a board of the given footprint.
func DecorFor(width, depth float64) Decor {
	t := BorderThickness
	edge := 0.5 - t/2
	span := 1 - 2*t

	// Normalized unit-square layout, scaled to the footprint below.
	layout := [8]Rect{
		{Center: mgl64.Vec2{0, edge}, Size: mgl64.Vec2{span, t}},  // far edge
		{Center: mgl64.Vec2{0, -edge}, Size: mgl64.Vec2{span, t}}, // near edge
		{Center: mgl64.Vec2{edge, 0}, Size: mgl64.Vec2{t, span}},  // right edge
		{Center: mgl64.Vec2{-edge, 0}, Size: mgl64.Vec2{t, span}}, // left edge
		{Center: mgl64.Vec2{edge, edge}, Size: mgl64.Vec2{t, t}},  // corners
		{Center: mgl64.Vec2{-edge, edge}, Size: mgl64.Vec2{t, t}},
		{Center: mgl64.Vec2{edge, -edge}, Size: mgl64.Vec2{t, t}},
		{Center: mgl64.Vec2{-edge, -edge}, Size: mgl64.Vec2{t, t}},
	}

	var d Decor
	for i, r := range layout {
		d.Segments[i] = scaleRect(r, width, depth)
	}
	d.Fill = scaleRect(Rect{Size: mgl64.Vec2{span, span}}, width, depth)
	return d
}

// Decor returns the board's current border and fill geometry.
func (b *Board) Decor() Decor {
	width, depth := b.Footprint()
	return DecorFor(width, depth)
}

func scaleRect(r Rect, width, depth float64) Rect {
	return Rect{
		Center: mgl64.Vec2{r.Center.X() * width, r.Center.Y() * depth},
		Size:   mgl64.Vec2{r.Size.X() * width, r.Size.Y() * depth},
	}
}
