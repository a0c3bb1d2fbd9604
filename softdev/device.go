// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gogpu/exa"
)

// ErrClosed is returned by calls on a closed device.
var ErrClosed = errors.New("softdev: device closed")

// devVAddrBase is the first device virtual address handed out.
const devVAddrBase = 0x8000_0000

// Stats counts device calls.
type Stats struct {
	Maps      int
	Unmaps    int
	Mapped    int
	Blits     int
	Blits3D   int
	Transfers int
	Queries   int
	Programs  int
}

// Device is a software exa.Device. Every submission completes before it
// returns.
//
// Device is safe for concurrent use.
type Device struct {
	mu  sync.Mutex
	log *slog.Logger

	nextHandle uintptr
	nextAddr   uint32
	maps       map[uintptr]exa.Bo
	programs   map[exa.UseHandle]exa.UseProgram
	faults     map[exa.TransferKind]exa.ErrorCode

	stats  Stats
	closed bool
}

// New returns an open device.
func New() *Device {
	return &Device{
		log:      exa.Logger(),
		nextAddr: devVAddrBase,
		maps:     make(map[uintptr]exa.Bo),
		programs: make(map[exa.UseHandle]exa.UseProgram),
		faults:   make(map[exa.TransferKind]exa.ErrorCode),
	}
}

// Connect opens a device; it is an exa.Connector.
func Connect() (exa.Device, error) {
	return New(), nil
}

// SetLogger sets the device logger. exa.SetLogger calls it for connected
// devices.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = l
}

// FailTransfers makes every transfer of the given kind fail with code.
// CodeOK clears the fault. It models transfer-queue paths the hardware
// rejects at submission time.
func (d *Device) FailTransfers(kind exa.TransferKind, code exa.ErrorCode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code == exa.CodeOK {
		delete(d.faults, kind)
		return
	}
	d.faults[kind] = code
}

// Stats returns a snapshot of the call counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.stats
	st.Mapped = len(d.maps)
	return st
}

func deviceError(op string, code exa.ErrorCode) error {
	return &exa.DeviceError{Op: op, Code: code}
}

// MapBo maps bo into the device address space.
func (d *Device) MapBo(bo exa.Bo) (exa.MemInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return exa.MemInfo{}, ErrClosed
	}
	if bo == nil || bo.Size() == 0 {
		return exa.MemInfo{}, deviceError("map", exa.CodeMappingFailed)
	}

	d.nextHandle++
	d.maps[d.nextHandle] = bo
	mem := exa.MemInfo{Handle: d.nextHandle, DevVAddr: d.nextAddr, Size: bo.Size()}
	d.nextAddr += uint32(bo.Size()+0xfff) &^ 0xfff
	d.stats.Maps++
	d.log.Debug("softdev: map", "handle", mem.Handle, "addr", mem.DevVAddr, "size", mem.Size)
	return mem, nil
}

// UnmapBo releases a mapping.
func (d *Device) UnmapBo(mem exa.MemInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.maps[mem.Handle]; !ok {
		return deviceError("unmap", exa.CodeInvalidParameter)
	}
	delete(d.maps, mem.Handle)
	d.stats.Unmaps++
	return nil
}

// QueryBlitsComplete reports completion of the blits touching mem. Blits
// complete on submission, so it never waits.
func (d *Device) QueryBlitsComplete(mem exa.MemInfo, wait bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.maps[mem.Handle]; !ok {
		return deviceError("query blits complete", exa.CodeInvalidParameter)
	}
	d.stats.Queries++
	return nil
}

// LoadUseCode registers a USE program.
func (d *Device) LoadUseCode(prog exa.UseProgram) (exa.UseHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	switch prog.Kind {
	case exa.UseSolid8:
		if prog.Alu > exa.GXset {
			return 0, deviceError("load use code", exa.CodeInvalidParameter)
		}
	case exa.UseComposite:
		if _, ok := exa.BlendStateFor(prog.Op); !ok {
			return 0, deviceError("load use code", exa.CodeHWFeatureNotSupported)
		}
	default:
		return 0, deviceError("load use code", exa.CodeInvalidParameter)
	}

	d.nextHandle++
	h := exa.UseHandle(d.nextHandle)
	d.programs[h] = prog
	d.stats.Programs++
	return h, nil
}

// FreeUseCode releases a USE program.
func (d *Device) FreeUseCode(h exa.UseHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.programs[h]; !ok {
		return deviceError("free use code", exa.CodeInvalidParameter)
	}
	delete(d.programs, h)
	return nil
}

// Close releases the device. Mappings and programs still registered are
// reported and dropped.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	if len(d.maps) > 0 || len(d.programs) > 0 {
		d.log.Warn("softdev: closing with live resources",
			"mappings", len(d.maps), "programs", len(d.programs))
	}
	clear(d.maps)
	clear(d.programs)
	d.closed = true
	return nil
}

// view resolves a surface to its mapped pixels. d.mu must be held.
func (d *Device) view(s exa.Surface) (*view, error) {
	bo, ok := d.maps[s.Mem.Handle]
	if !ok {
		return nil, deviceError("surface lookup", exa.CodeInvalidParameter)
	}
	return newView(s, bo.Bytes())
}
