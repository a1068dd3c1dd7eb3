package lamp

import (
	"sync"
	"time"
)

// HoldManager manages manual holds. While a hold is active for a location
// the control loop leaves its outputs exactly where the user put them.
type HoldManager struct {
	mu    sync.RWMutex
	holds map[string]time.Time
}

// NewHoldManager creates a new hold manager
func NewHoldManager() *HoldManager {
	return &HoldManager{
		holds: make(map[string]time.Time),
	}
}

// SetHold sets a manual hold for a location
func (hm *HoldManager) SetHold(location string, durationMinutes int) time.Time {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	expiresAt := time.Now().Add(time.Duration(durationMinutes) * time.Minute)
	hm.holds[location] = expiresAt

	return expiresAt
}

// CheckHold reports whether a manual hold is active for a location. An
// expired hold is removed on the way out.
func (hm *HoldManager) CheckHold(location string) bool {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	expiresAt, exists := hm.holds[location]
	if !exists {
		return false
	}

	if time.Now().After(expiresAt) {
		delete(hm.holds, location)
		return false
	}

	return true
}

// ClearHold removes a manual hold for a location
func (hm *HoldManager) ClearHold(location string) bool {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	_, exists := hm.holds[location]
	if exists {
		delete(hm.holds, location)
		return true
	}

	return false
}

// ActiveHolds returns all locations with an active hold
func (hm *HoldManager) ActiveHolds() []string {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	locations := make([]string, 0, len(hm.holds))
	now := time.Now()

	for location, expiresAt := range hm.holds {
		if now.Before(expiresAt) {
			locations = append(locations, location)
		}
	}

	return locations
}

// CleanupExpiredHolds removes all expired holds
func (hm *HoldManager) CleanupExpiredHolds() int {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	now := time.Now()
	cleaned := 0

	for location, expiresAt := range hm.holds {
		if now.After(expiresAt) {
			delete(hm.holds, location)
			cleaned++
		}
	}

	return cleaned
}
