package exa

// Box is a rectangle with exclusive lower-right corner.
type Box struct {
	X0, Y0, X1, Y1 int
}

// Empty reports whether b covers no pixels.
func (b Box) Empty() bool {
	return b.X1 <= b.X0 || b.Y1 <= b.Y0
}

// Dx returns the width of b.
func (b Box) Dx() int { return b.X1 - b.X0 }

// Dy returns the height of b.
func (b Box) Dy() int { return b.Y1 - b.Y0 }

// Translate returns b moved by (dx, dy).
func (b Box) Translate(dx, dy int) Box {
	return Box{b.X0 + dx, b.Y0 + dy, b.X1 + dx, b.Y1 + dy}
}

// Intersect returns the largest box contained in both b and o.
// The result may be empty.
func (b Box) Intersect(o Box) Box {
	return Box{
		X0: max(b.X0, o.X0),
		Y0: max(b.Y0, o.Y0),
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
	}
}

// BoundingBox accumulates the minimal dirty rectangle of a batch on one
// surface. The zero Box is the "nothing recorded yet" sentinel.
type BoundingBox struct {
	box     Box
	surface Box
}

// Init resets the accumulator for a width x height surface.
func (bb *BoundingBox) Init(width, height int) {
	bb.box = Box{}
	bb.surface = Box{X1: width, Y1: height}
}

// Bounds returns the accumulated box.
func (bb *BoundingBox) Bounds() Box {
	return bb.box
}

// Surface returns the surface extent.
func (bb *BoundingBox) Surface() Box {
	return bb.surface
}

// Add merges r into the box, clipped to the surface. It reports false and
// leaves the box unchanged when the merged box would be degenerate.
func (bb *BoundingBox) Add(r Box) bool {
	if bb.box == (Box{}) {
		// First rectangle after Init: the box becomes r ∩ surface.
		if r.Empty() {
			return false
		}
		c := bb.clamp(r)
		if c.Empty() {
			return false
		}
		bb.box = c
		return true
	}

	x0 := min(bb.box.X0, r.X0)
	x1 := max(bb.box.X1, r.X1)
	if x1 <= x0 {
		return false
	}

	y0 := min(bb.box.Y0, r.Y0)
	y1 := max(bb.box.Y1, r.Y1)
	if y1 <= y0 {
		return false
	}

	bb.box = bb.clamp(Box{x0, y0, x1, y1})
	return true
}

// Validate widens a degenerate box to the full surface on the degenerate
// axis, so an empty record is treated as "everything dirty".
func (bb *BoundingBox) Validate() {
	if bb.box.X1 <= bb.box.X0 {
		bb.box.X0 = bb.surface.X0
		bb.box.X1 = bb.surface.X1
	}
	if bb.box.Y1 <= bb.box.Y0 {
		bb.box.Y0 = bb.surface.Y0
		bb.box.Y1 = bb.surface.Y1
	}
}

func (bb *BoundingBox) clamp(r Box) Box {
	return r.Intersect(bb.surface)
}
