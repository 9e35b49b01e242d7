// Package errkind classifies the error kinds the bridge can raise, per the
// error-handling design: WireFormat, IO, Backpressure, Plugin, Configuration
// and Safety. Callers match kinds with errors.Is against the sentinel for
// each kind rather than string-matching messages.
package errkind

import (
	"errors"
	"fmt"
)

// Kind tags an error with one of the recognized error categories.
type Kind int

const (
	WireFormat Kind = iota
	IO
	Backpressure
	Plugin
	Configuration
	Safety
)

func (k Kind) String() string {
	switch k {
	case WireFormat:
		return "wire_format"
	case IO:
		return "io"
	case Backpressure:
		return "backpressure"
	case Plugin:
		return "plugin"
	case Configuration:
		return "configuration"
	case Safety:
		return "safety"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrWireFormat    = errors.New("wire_format")
	ErrIO            = errors.New("io")
	ErrBackpressure  = errors.New("backpressure")
	ErrPlugin        = errors.New("plugin")
	ErrConfiguration = errors.New("configuration")
	ErrSafety        = errors.New("safety")
)

func sentinel(k Kind) error {
	switch k {
	case WireFormat:
		return ErrWireFormat
	case IO:
		return ErrIO
	case Backpressure:
		return ErrBackpressure
	case Plugin:
		return ErrPlugin
	case Configuration:
		return ErrConfiguration
	case Safety:
		return ErrSafety
	default:
		return errors.New("unknown")
	}
}

// Wrap annotates err with kind's sentinel so errors.Is(wrapped, sentinel)
// succeeds, while preserving the original message and chain.
func Wrap(k Kind, format string, args ...any) error {
	base := sentinel(k)
	if format == "" {
		return base
	}
	return &kindError{kind: k, msg: fmt.Sprintf(format, args...), sentinel: base}
}

type kindError struct {
	kind     Kind
	msg      string
	sentinel error
}

func (e *kindError) Error() string { return e.kind.String() + ": " + e.msg }
func (e *kindError) Unwrap() error { return e.sentinel }
