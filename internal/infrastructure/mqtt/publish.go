package mqtt

import "fmt"

// maxPayloadSize caps a single publish at 1MB. Discovery announcements
// and readings are a few hundred bytes; anything near this limit is a
// caller bug, not sensor data.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic and waits for broker acknowledgment
// (bounded by defaultPublishTimeout). Retained publishes are the norm
// here: discovery metadata and sensor state must be visible to
// subscribers that attach between scans.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	switch {
	case topic == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return ErrInvalidQoS
	case len(payload) > maxPayloadSize:
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	case !c.IsConnected():
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishString publishes a string payload. The poller uses this for
// bare numeric readings like "21.5".
func (c *Client) PublishString(topic, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes retained at the configured default QoS. The
// announcer uses this for discovery metadata.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
