// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/exa"
)

// Display is a scanout sink. A manual-update display keeps its own copy
// of the panel contents and only refreshes the damaged region of the
// attached scanout pixmap on FlushScanout.
//
// Display is safe for concurrent use.
type Display struct {
	mu      sync.Mutex
	manual  bool
	scanout *exa.Pixmap
	format  exa.Format
	panel   *image.RGBA
	flushes []exa.Box
}

// NewDisplay returns a display. manual selects a panel that is refreshed
// only on FlushScanout.
func NewDisplay(manual bool) *Display {
	return &Display{manual: manual}
}

// Attach sets the pixmap shown by the panel and resizes the panel to it.
func (d *Display) Attach(p *exa.Pixmap, format exa.Format) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scanout = p
	d.format = format
	d.panel = image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
}

// ManualUpdate reports whether the panel needs explicit flushes.
func (d *Display) ManualUpdate() bool {
	return d.manual
}

// FlushScanout copies the damaged region of the attached pixmap to the
// panel.
func (d *Display) FlushScanout(damage exa.Box) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushes = append(d.flushes, damage)
	if d.scanout == nil {
		return nil
	}
	img, err := Image(d.scanout, d.format)
	if err != nil {
		return err
	}
	r := image.Rect(damage.X0, damage.Y0, damage.X1, damage.Y1).Intersect(d.panel.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(d.panel.Pix[d.panel.PixOffset(r.Min.X, y):d.panel.PixOffset(r.Max.X, y)],
			img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)])
	}
	return nil
}

// Flushes returns the damage boxes of every FlushScanout call so far.
func (d *Display) Flushes() []exa.Box {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]exa.Box(nil), d.flushes...)
}

// Panel returns what the panel shows. For an automatically refreshed
// display this is the attached pixmap itself.
func (d *Display) Panel() (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scanout == nil {
		return nil, fmt.Errorf("softdev: no scanout attached")
	}
	if !d.manual {
		return Image(d.scanout, d.format)
	}
	out := image.NewRGBA(d.panel.Rect)
	copy(out.Pix, d.panel.Pix)
	return out, nil
}

// Image converts the pixels of p, interpreted as format, to a
// premultiplied RGBA image. The caller brackets the read with
// Screen.PrepareAccess and Screen.FinishAccess.
func Image(p *exa.Pixmap, format exa.Format) (*image.RGBA, error) {
	buf := p.Pixels()
	if buf == nil {
		return nil, exa.ErrNoBacking
	}
	v, err := newView(exa.Surface{Format: format, Stride: p.Pitch, Width: p.Width, Height: p.Height}, buf)
	if err != nil {
		return nil, fmt.Errorf("softdev: image of %dx%d %s pixmap: %w", p.Width, p.Height, format, err)
	}
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := range p.Height {
		for x := range p.Width {
			img.SetRGBA(x, y, argbColor(v.toARGB(v.get(x, y))))
		}
	}
	return img, nil
}
