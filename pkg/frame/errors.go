package frame

import "fmt"

// FrameError is returned when a frame cannot be encoded or decoded.
// A decode failure means the frame is malformed or truncated and should be
// treated as non-matching traffic, not as a fatal condition.
type FrameError struct {
	Layer  string
	Reason string
	Err    error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Layer, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Layer, e.Reason)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func newFrameError(layer, format string, args ...interface{}) *FrameError {
	return &FrameError{Layer: layer, Reason: fmt.Sprintf(format, args...)}
}
