package scanner

import (
	"errors"
	"fmt"
)

// ErrReadTimeout is returned by a Handle when no frame arrived within its
// read timeout. It is not a failure: the receiver uses it to poll for
// cancellation.
var ErrReadTimeout = errors.New("read timeout")

// ConfigError is returned when a scan configuration is invalid. It is always
// detected before any frame is sent.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func configErrorf(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InterfaceReason classifies an InterfaceError
type InterfaceReason string

const (
	ReasonNotFound   InterfaceReason = "not found"
	ReasonDown       InterfaceReason = "interface is down"
	ReasonNoNetwork  InterfaceReason = "no usable IPv4 network"
	ReasonNoMAC      InterfaceReason = "no hardware address"
	ReasonPermission InterfaceReason = "insufficient privilege"
	ReasonOpen       InterfaceReason = "could not open interface"
)

// InterfaceError is returned when the selected interface cannot be used.
type InterfaceError struct {
	Interface string
	Reason    InterfaceReason
	Err       error
}

func (e *InterfaceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("interface %s: %s: %v", e.Interface, e.Reason, e.Err)
	}
	return fmt.Sprintf("interface %s: %s", e.Interface, e.Reason)
}

func (e *InterfaceError) Unwrap() error {
	return e.Err
}

// TransportError is returned when sending or receiving on the interface
// fails mid-scan. It aborts the scan and is never retried.
type TransportError struct {
	Op  string // "send" or "receive"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
