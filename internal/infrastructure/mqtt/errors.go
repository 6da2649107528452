package mqtt

import "errors"

var (
	// ErrConnectionFailed indicates the initial broker connection failed.
	ErrConnectionFailed = errors.New("mqtt connection failed")

	// ErrNotConnected indicates an operation on a disconnected client.
	ErrNotConnected = errors.New("mqtt client not connected")

	// ErrPublishTimeout indicates a publish was not acknowledged in time.
	ErrPublishTimeout = errors.New("mqtt publish timed out")
)
