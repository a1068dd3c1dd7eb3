package lamp

import (
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between control cycles per location
type RateLimiter struct {
	mu           sync.RWMutex
	lastCycleMap map[string]time.Time
}

// NewRateLimiter returns a limiter with no recorded cycles
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		lastCycleMap: make(map[string]time.Time),
	}
}

// ShouldRunCycle checks whether enough time has passed since the last cycle
// for this location. Records the cycle time when it allows one through.
func (rl *RateLimiter) ShouldRunCycle(location string, minIntervalMs int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lastCycle, exists := rl.lastCycleMap[location]
	now := time.Now()

	if !exists {
		// First cycle for this location
		rl.lastCycleMap[location] = now
		return true
	}

	elapsed := now.Sub(lastCycle)
	minInterval := time.Duration(minIntervalMs) * time.Millisecond

	if elapsed < minInterval {
		return false
	}

	rl.lastCycleMap[location] = now
	return true
}

// RecordCycle records that a cycle ran for a location
func (rl *RateLimiter) RecordCycle(location string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lastCycleMap[location] = time.Now()
}

// GetLastCycleTime returns the time of the last cycle for a location
func (rl *RateLimiter) GetLastCycleTime(location string) (time.Time, bool) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	lastCycle, exists := rl.lastCycleMap[location]
	return lastCycle, exists
}
