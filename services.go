package exa

import (
	"fmt"
	"sync"
)

// Connector opens the device context. It is called by the first
// Services.Acquire and must perform the whole service bootstrap
// (connect, enumerate, acquire device data).
type Connector func() (Device, error)

// Services is a refcounted device connection shared by every screen of
// one display server. The first Acquire connects and the last Release
// closes the device.
//
// Services is safe for concurrent use.
type Services struct {
	mu      sync.Mutex
	connect Connector
	dev     Device
	refs    int
}

// NewServices returns an unconnected Services.
func NewServices(connect Connector) *Services {
	return &Services{connect: connect}
}

// Acquire returns the shared device, connecting on first use.
func (s *Services) Acquire() (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs > 0 {
		s.refs++
		return s.dev, nil
	}

	dev, err := s.connect()
	if err != nil {
		return nil, fmt.Errorf("exa: connect services: %w", err)
	}
	if dev == nil {
		return nil, fmt.Errorf("exa: connect services: no device")
	}

	s.dev = dev
	s.refs = 1
	trackDevice(dev, true)
	propagateLogger(dev, Logger())
	Logger().Info("exa: services connected")
	return dev, nil
}

// Release drops one reference and closes the device when none remain.
// Releasing an unconnected Services is a no-op.
func (s *Services) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return nil
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}

	dev := s.dev
	s.dev = nil
	trackDevice(dev, false)
	if err := dev.Close(); err != nil {
		return fmt.Errorf("exa: close services: %w", err)
	}
	Logger().Info("exa: services disconnected")
	return nil
}

// Refs returns the number of outstanding references.
func (s *Services) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

var (
	devicesMu sync.Mutex
	devices   = map[Device]struct{}{}
)

func trackDevice(d Device, live bool) {
	devicesMu.Lock()
	defer devicesMu.Unlock()
	if live {
		devices[d] = struct{}{}
	} else {
		delete(devices, d)
	}
}

func connectedDevices() []Device {
	devicesMu.Lock()
	defer devicesMu.Unlock()
	out := make([]Device, 0, len(devices))
	for d := range devices {
		out = append(out, d)
	}
	return out
}
