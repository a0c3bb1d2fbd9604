package exa

import "fmt"

// opKind names the active batch of a Screen.
type opKind uint8

const (
	opIdle opKind = iota
	opSolid
	opCopy
	opComposite
)

func (k opKind) String() string {
	switch k {
	case opSolid:
		return "solid"
	case opCopy:
		return "copy"
	case opComposite:
		return "composite"
	default:
		return "idle"
	}
}

// Surfaces tracked by a batch.
const (
	surfDst = iota
	surfSrc
	surfMask
	numSurfaces
)

// batch accumulates the rectangles of one operation up to a fixed
// capacity. E is the per-primitive record.
type batch[E any] struct {
	items []E

	// bounds are the per-flush dirty boxes of each involved surface.
	bounds  [numSurfaces]BoundingBox
	extents [numSurfaces]Box
	used    int

	// damage accumulates the destination box over the whole operation.
	damage BoundingBox
}

// init prepares an empty batch of the given capacity for the surfaces,
// destination first.
func (b *batch[E]) init(capacity int, surfaces ...*Pixmap) {
	b.items = make([]E, 0, capacity)
	b.used = len(surfaces)
	for i, p := range surfaces {
		b.extents[i] = p.Box()
	}
	b.resetBounds()
	b.damage.Init(surfaces[0].Width, surfaces[0].Height)
}

func (b *batch[E]) resetBounds() {
	for i := range b.used {
		b.bounds[i].Init(b.extents[i].X1, b.extents[i].Y1)
	}
}

// full reports whether the next add must be preceded by a flush.
func (b *batch[E]) full() bool {
	return len(b.items) == cap(b.items)
}

// add records e with one box per surface, destination first.
func (b *batch[E]) add(e E, boxes ...Box) {
	b.items = append(b.items, e)
	for i, r := range boxes {
		b.bounds[i].Add(r)
	}
	b.damage.Add(boxes[0])
}

// take returns the accumulated items and validated per-surface bounds and
// resets the batch to its post-flush state. The returned slice is only
// valid until the next add.
func (b *batch[E]) take() ([]E, [numSurfaces]Box) {
	var bounds [numSurfaces]Box
	for i := range b.used {
		b.bounds[i].Validate()
		bounds[i] = b.bounds[i].Bounds()
	}
	items := b.items
	b.items = b.items[:0]
	b.resetBounds()
	return items, bounds
}

// len returns the number of pending items.
func (b *batch[E]) len() int {
	return len(b.items)
}

// damaged returns the destination region written by the operation, or the
// full destination when nothing was recorded.
func (b *batch[E]) damaged() Box {
	b.damage.Validate()
	return b.damage.Bounds()
}

// begin makes kind the active batch of the screen.
func (s *Screen) begin(kind opKind) error {
	if s.closed {
		return ErrClosed
	}
	if s.active != opIdle {
		s.violation(fmt.Sprintf("prepare %s while %s batch is active", kind, s.active))
		return fmt.Errorf("%w: %s", ErrBusy, s.active)
	}
	return nil
}

// current checks that a primitive or Done call matches the prepared batch.
func (s *Screen) current(kind opKind, prepared, p *Pixmap, call string) bool {
	if s.active != kind {
		s.violation(fmt.Sprintf("%s without prepared %s batch (active: %s)", call, kind, s.active))
		return false
	}
	if prepared != p {
		s.violation(fmt.Sprintf("%s on a pixmap other than the prepared one", call))
		return false
	}
	return true
}

// violation reports a broken calling contract.
func (s *Screen) violation(msg string) {
	if s.cfg.Assertions {
		panic("exa: " + msg)
	}
	Logger().Warn("exa: contract violation, call ignored", "detail", msg)
}

// submitEach issues one submission per item and stops at the first
// failure. The remaining items of the flush are dropped.
func submitEach[E any](s *Screen, what string, items []E, bounds Box, submit func(E) error) {
	if len(items) == 0 {
		return
	}
	s.stats.flushes++
	Logger().Debug("exa: flush batch", "op", what, "rects", len(items), "bounds", bounds)

	for i, it := range items {
		s.stats.submissions++
		if err := submit(it); err != nil {
			s.submitFailed(what, err, len(items)-i)
			return
		}
	}
}

// submitFailed logs a rejected hardware submission.
func (s *Screen) submitFailed(what string, err error, dropped int) {
	s.stats.submitFailures++
	code := codeOf(err)
	Logger().Error("exa: "+what+" submission failed",
		"code", int(code), "desc", code.String(), "dropped", dropped, "err", err)
}
