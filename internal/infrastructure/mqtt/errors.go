package mqtt

import "errors"

// Domain-specific errors for MQTT operations. Check with errors.Is().
var (
	// ErrNotConnected is returned when publishing on a disconnected client.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish operation fails or times out.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
