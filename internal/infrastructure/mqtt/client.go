package mqtt

import (
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/zkfleet/zkfleet-core/internal/infrastructure/config"
)

// Connection constants.
const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	keepAlive         = 60 * time.Second
	tlsMinVersion     = tls.VersionTLS12
)

// Client is a write-only MQTT publisher for fleet events.
//
// All methods are safe for concurrent use. The paho layer reconnects on its
// own; publishes during an outage fail fast with ErrNotConnected rather than
// queueing stale punches.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTT

	connected bool
	connMu    sync.RWMutex
}

// Connect establishes a connection to the broker, registers a Last Will on
// the status topic and publishes a retained online status.
func Connect(cfg config.MQTT) (*Client, error) {
	opts := buildClientOptions(cfg)

	c := &Client{cfg: cfg}
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.setConnected(true)
		c.publishStatus("online", "")
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, _ error) {
		c.setConnected(false)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously and may not have fired yet.
	c.setConnected(true)
	return c, nil
}

// Close publishes a graceful offline status and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.IsConnected() {
		c.publishStatus("offline", "graceful_shutdown")
	}
	c.client.Disconnect(disconnectQuiesce)
	c.setConnected(false)
	return nil
}

// IsConnected reports the last known connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

// publishStatus writes the retained service status.
func (c *Client) publishStatus(status, reason string) {
	payload := statusPayload(c.cfg.Broker.ClientID, status, reason)
	c.client.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true, payload)
}

func buildClientOptions(cfg config.MQTT) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	opts.SetWill(Topics{}.SystemStatus(),
		statusPayload(cfg.Broker.ClientID, "offline", "unexpected_disconnect"), 1, true)
	return opts
}

// statusPayload renders the service status JSON.
func statusPayload(clientID, status, reason string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	if reason == "" {
		return fmt.Sprintf(`{"status":%q,"client_id":%q,"timestamp":%q}`, status, clientID, ts)
	}
	return fmt.Sprintf(`{"status":%q,"client_id":%q,"reason":%q,"timestamp":%q}`, status, clientID, reason, ts)
}
