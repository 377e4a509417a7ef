package mqtt

import (
	"encoding/json"
	"fmt"
)

// maxPayloadSize caps outgoing messages at 1MB, matching typical broker limits.
const maxPayloadSize = 1 << 20

// Publish sends a raw payload to a topic.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes",
			ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishPunch publishes one live punch for a device as JSON.
func (c *Client) PublishPunch(deviceIP string, punch any) error {
	payload, err := json.Marshal(punch)
	if err != nil {
		return fmt.Errorf("%w: encoding punch: %w", ErrPublishFailed, err)
	}
	return c.Publish(Topics{}.Punch(deviceIP), payload, byte(c.cfg.QoS), false)
}

// PublishReport publishes a fleet run report as retained JSON, so late
// subscribers see the most recent run of each kind.
func (c *Client) PublishReport(kind string, report any) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("%w: encoding report: %w", ErrPublishFailed, err)
	}
	return c.Publish(Topics{}.Report(kind), payload, byte(c.cfg.QoS), true)
}
