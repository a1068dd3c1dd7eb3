package redis

import "fmt"

// Key construction helpers

// AmbientSensorKey returns the key for ambient reading history (sorted set
// scored by collection time in milliseconds)
// Pattern: sensor:ambient:{location}
func AmbientSensorKey(location string) string {
	return fmt.Sprintf("sensor:ambient:%s", location)
}

// AmbientMetaKey returns the key for ambient sensor metadata (hash)
// Pattern: meta:ambient:{location}
func AmbientMetaKey(location string) string {
	return fmt.Sprintf("meta:ambient:%s", location)
}

// LampCycleKey returns the key for control cycle telemetry (sorted set
// scored by cycle time in milliseconds)
// Pattern: lamp:cycle:{location}
func LampCycleKey(location string) string {
	return fmt.Sprintf("lamp:cycle:%s", location)
}

// LampStateKey returns the key for the last published command
// Pattern: lamp:state:{location}
func LampStateKey(location string) string {
	return fmt.Sprintf("lamp:state:%s", location)
}
