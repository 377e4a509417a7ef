// Package mqtt publishes fleet events to an MQTT broker.
//
// The publisher is write-only: live punches, fleet run reports and the
// service's own online/offline status go out; nothing is consumed. Downstream
// systems (door controllers, dashboards, payroll feeds) subscribe to the
// zkfleet/ topic tree.
//
// Connection management wraps paho.mqtt.golang: auto-reconnect with
// exponential backoff, a Last Will so subscribers see unexpected death, and
// a retained status topic for graceful transitions.
package mqtt
