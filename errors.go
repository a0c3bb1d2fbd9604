package exa

import (
	"errors"
	"fmt"
)

// Errors returned by the acceleration core. Every Prepare/Check error means
// the host must fall back to its software implementation.
var (
	// ErrUnsupported indicates the request cannot be accelerated
	// (pixel depth, plane mask, picture format, transform or repeat).
	ErrUnsupported = errors.New("exa: unsupported request")

	// ErrNotImplemented indicates an accelerated path that exists in the
	// hardware model but is not implemented.
	ErrNotImplemented = fmt.Errorf("%w: not implemented", ErrUnsupported)

	// ErrMappingFailed is returned when a pixmap cannot be mapped into the
	// GPU address space.
	ErrMappingFailed = errors.New("exa: mapping failed")

	// ErrAllocFailed is returned when no backing allocation can be obtained.
	ErrAllocFailed = errors.New("exa: allocation failed")

	// ErrBusy is returned when a batch is prepared while another one is active.
	ErrBusy = errors.New("exa: another batch is active")

	// ErrNoBacking is returned for pixmaps without a backing allocation.
	ErrNoBacking = errors.New("exa: pixmap has no backing allocation")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("exa: invalid config")

	// ErrClosed is returned when operating on a closed screen.
	ErrClosed = errors.New("exa: screen closed")
)

// ErrorCode is a device status code as reported by the blit service.
type ErrorCode int

// Device status codes.
const (
	CodeOK                    ErrorCode = 0
	CodeGenericError          ErrorCode = -1
	CodeInvalidContext        ErrorCode = -2
	CodeInvalidParameter      ErrorCode = -3
	CodeDeviceUnavailable     ErrorCode = -4
	CodeDeviceNotPresent      ErrorCode = -5
	CodeMemoryUnavailable     ErrorCode = -6
	CodeIoctlError            ErrorCode = -7
	CodeBltNotComplete        ErrorCode = -8
	CodeHWFeatureNotSupported ErrorCode = -9
	CodeNotYetImplemented     ErrorCode = -10
	CodeMappingFailed         ErrorCode = -11
)

// String returns the human-readable description of the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeMappingFailed:
		return "Mapping failed"
	case CodeNotYetImplemented:
		return "Not yet implemented"
	case CodeHWFeatureNotSupported:
		return "Hardware feature not supported"
	case CodeBltNotComplete:
		return "Blit not complete"
	case CodeGenericError:
		return "Generic error"
	case CodeIoctlError:
		return "IOCTL error"
	case CodeDeviceNotPresent:
		return "Device not present"
	case CodeMemoryUnavailable:
		return "Memory unavailable"
	case CodeInvalidContext:
		return "Invalid context"
	case CodeDeviceUnavailable:
		return "Device unavailable"
	case CodeInvalidParameter:
		return "Invalid parameter"
	case CodeOK:
		return "Ok"
	default:
		return "Unknown error"
	}
}

// DeviceError is a failed device call.
type DeviceError struct {
	Op   string
	Code ErrorCode
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("exa: %s failed with error code: %d (%s)", e.Op, int(e.Code), e.Code)
}

// codeOf extracts the device status code from err.
func codeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var de *DeviceError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeGenericError
}
