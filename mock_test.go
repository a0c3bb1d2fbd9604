package exa

import (
	"fmt"
	"log/slog"
	"testing"
)

// mockBo is a heap allocation.
type mockBo struct {
	id  int
	buf []byte
}

func (b *mockBo) Size() int     { return len(b.buf) }
func (b *mockBo) Bytes() []byte { return b.buf }

// mockAllocator records allocations.
type mockAllocator struct {
	next   int
	allocs int
	frees  []int
	err    error
}

func (a *mockAllocator) Alloc(size int) (Bo, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.next++
	a.allocs++
	return &mockBo{id: a.next, buf: make([]byte, size)}, nil
}

func (a *mockAllocator) Free(bo Bo) error {
	a.frees = append(a.frees, bo.(*mockBo).id)
	return nil
}

// mockDevice records every call of the blit service.
type mockDevice struct {
	nextHandle uintptr
	mapped     map[uintptr]Bo

	maps   int
	unmaps []uintptr
	waits  []uintptr
	events []string

	blts      []BltInfo
	blt3ds    []Blt3DInfo
	transfers []Transfer

	programs map[UseHandle]UseProgram
	loads    []UseProgram
	freed    []UseHandle

	mapErr      error
	bltErr      func(call int) error
	transferErr func(t *Transfer) error
	loadErr     error

	logger *slog.Logger
	closed int
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		mapped:   make(map[uintptr]Bo),
		programs: make(map[UseHandle]UseProgram),
	}
}

func (d *mockDevice) SetLogger(l *slog.Logger) { d.logger = l }

func (d *mockDevice) MapBo(bo Bo) (MemInfo, error) {
	if d.mapErr != nil {
		return MemInfo{}, d.mapErr
	}
	d.nextHandle++
	d.maps++
	d.mapped[d.nextHandle] = bo
	d.events = append(d.events, fmt.Sprintf("map:%d", d.nextHandle))
	return MemInfo{Handle: d.nextHandle, DevVAddr: uint32(d.nextHandle) << 20, Size: bo.Size()}, nil
}

func (d *mockDevice) UnmapBo(mem MemInfo) error {
	if _, ok := d.mapped[mem.Handle]; !ok {
		return &DeviceError{Op: "unmap", Code: CodeInvalidParameter}
	}
	delete(d.mapped, mem.Handle)
	d.unmaps = append(d.unmaps, mem.Handle)
	d.events = append(d.events, fmt.Sprintf("unmap:%d", mem.Handle))
	return nil
}

func (d *mockDevice) Blt(info *BltInfo) error {
	d.blts = append(d.blts, *info)
	if d.bltErr != nil {
		return d.bltErr(len(d.blts))
	}
	return nil
}

func (d *mockDevice) Blt3D(info *Blt3DInfo) error {
	d.blt3ds = append(d.blt3ds, *info)
	if d.bltErr != nil {
		return d.bltErr(len(d.blt3ds))
	}
	return nil
}

func (d *mockDevice) QueryBlitsComplete(mem MemInfo, wait bool) error {
	d.waits = append(d.waits, mem.Handle)
	d.events = append(d.events, fmt.Sprintf("wait:%d", mem.Handle))
	return nil
}

func (d *mockDevice) QueueTransfer(t *Transfer) error {
	c := *t
	c.Sources = append([]Surface(nil), t.Sources...)
	c.SrcRects = append([]Box(nil), t.SrcRects...)
	c.DestRects = append([]Box(nil), t.DestRects...)
	c.MaskRects = append([]Box(nil), t.MaskRects...)
	d.transfers = append(d.transfers, c)
	if d.transferErr != nil {
		return d.transferErr(t)
	}
	return nil
}

func (d *mockDevice) LoadUseCode(prog UseProgram) (UseHandle, error) {
	if d.loadErr != nil {
		return 0, d.loadErr
	}
	d.nextHandle++
	h := UseHandle(d.nextHandle)
	d.programs[h] = prog
	d.loads = append(d.loads, prog)
	return h, nil
}

func (d *mockDevice) FreeUseCode(h UseHandle) error {
	delete(d.programs, h)
	d.freed = append(d.freed, h)
	return nil
}

func (d *mockDevice) Close() error {
	d.closed++
	return nil
}

// mockDisplay records scanout flushes.
type mockDisplay struct {
	manual  bool
	flushes []Box
}

func (d *mockDisplay) ManualUpdate() bool { return d.manual }

func (d *mockDisplay) FlushScanout(damage Box) error {
	d.flushes = append(d.flushes, damage)
	return nil
}

// testScreen bundles a Screen with its recording collaborators.
type testScreen struct {
	*Screen
	dev   *mockDevice
	alloc *mockAllocator
}

func newTestScreen(t *testing.T, opts ...ScreenOption) *testScreen {
	t.Helper()
	dev := newMockDevice()
	alloc := &mockAllocator{}
	srv := NewServices(func() (Device, error) { return dev, nil })
	s, err := NewScreen(srv, alloc, opts...)
	if err != nil {
		t.Fatalf("NewScreen() = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return &testScreen{Screen: s, dev: dev, alloc: alloc}
}

// hostPixmap wraps a host allocation of the exact pixmap size.
func hostPixmap(width, height, bpp int) *Pixmap {
	pitch := pitchFor(width, bpp, DefaultPitchAlign)
	return NewPixmap(width, height, bpp, bpp, pitch, &mockBo{buf: make([]byte, pitch*height)})
}

func withConfig(f func(*Config)) ScreenOption {
	cfg := DefaultConfig()
	f(&cfg)
	return WithConfig(cfg)
}
