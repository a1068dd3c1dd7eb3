package mqtt

import (
	"fmt"
	"strings"
)

// Topic layout:
//   automation/raw/ambient/{location}     raw sensor payloads (input)
//   automation/sensor/ambient/{location}  canonical readings (collector output)
//   automation/command/lamp/{location}    drive commands for the hardware tier
//   automation/context/lamp/{location}    cycle context for other agents
//   automation/hold/lamp/{location}       manual hold requests
//   automation/status/{service}           retained agent availability
const (
	TopicRawAmbient    = "automation/raw/ambient/+"
	TopicSensorAmbient = "automation/sensor/ambient/+"
	TopicLampCommand   = "automation/command/lamp/+"
	TopicLampContext   = "automation/context/lamp/+"
	TopicLampHold      = "automation/hold/lamp/+"
)

// RawAmbientTopic constructs the raw ambient sensor topic for a location
func RawAmbientTopic(location string) string {
	return fmt.Sprintf("automation/raw/ambient/%s", location)
}

// SensorAmbientTopic constructs the canonical ambient reading topic for a
// location. The collector republishes here after deriving the channel split.
func SensorAmbientTopic(location string) string {
	return fmt.Sprintf("automation/sensor/ambient/%s", location)
}

// LampCommandTopic constructs the drive command topic for a location
func LampCommandTopic(location string) string {
	return fmt.Sprintf("automation/command/lamp/%s", location)
}

// LampContextTopic constructs the cycle context topic for a location
func LampContextTopic(location string) string {
	return fmt.Sprintf("automation/context/lamp/%s", location)
}

// LampHoldTopic constructs the manual hold topic for a location
func LampHoldTopic(location string) string {
	return fmt.Sprintf("automation/hold/lamp/%s", location)
}

// ServiceStatusTopic constructs the retained availability topic for an agent
func ServiceStatusTopic(service string) string {
	return fmt.Sprintf("automation/status/%s", service)
}

// LocationFromTopic extracts the location segment from a duolux topic. All
// duolux topics end in the location, so the last segment is enough.
func LocationFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 {
		return ""
	}
	return parts[len(parts)-1]
}
