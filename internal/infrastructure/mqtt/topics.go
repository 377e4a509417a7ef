package mqtt

import "strings"

// Topic tree:
//
//	zkfleet/punch/<device ip>     live punches, one message per punch
//	zkfleet/report/<kind>         fleet run reports (users | attendance)
//	zkfleet/system/status         retained service status + LWT
//
// Device IPs appear with dots replaced by dashes so they never collide with
// topic separators.
const topicRoot = "zkfleet"

// Topics builds topic strings for the zkfleet tree.
type Topics struct{}

// Punch is the live punch topic for one device.
func (Topics) Punch(deviceIP string) string {
	return topicRoot + "/punch/" + sanitize(deviceIP)
}

// Report is the fleet run report topic for one run kind.
func (Topics) Report(kind string) string {
	return topicRoot + "/report/" + sanitize(kind)
}

// SystemStatus is the retained service status topic, also used for the LWT.
func (Topics) SystemStatus() string {
	return topicRoot + "/system/status"
}

// sanitize makes a value safe as a single topic level.
func sanitize(v string) string {
	v = strings.ReplaceAll(v, ".", "-")
	v = strings.ReplaceAll(v, "/", "-")
	v = strings.ReplaceAll(v, "+", "-")
	v = strings.ReplaceAll(v, "#", "-")
	return v
}
