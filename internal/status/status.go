// Package status tracks the process-wide unit status reported after a
// configuration change.
package status

import (
	"fmt"
	"net/http"
	"sync"
)

// State is the coarse-grained unit state.
type State string

const (
	// Unknown is the state before the first configuration check.
	Unknown State = "unknown"
	// Active means the operator is configured and can serve actions.
	Active State = "active"
	// Blocked means required configuration is missing.
	Blocked State = "blocked"
)

// Unit holds the current status. It is safe for concurrent use.
type Unit struct {
	mu      sync.RWMutex
	state   State
	message string
}

// NewUnit returns a Unit in the Unknown state.
func NewUnit() *Unit {
	return &Unit{state: Unknown}
}

// SetActive marks the unit as active.
func (u *Unit) SetActive(message string) {
	u.set(Active, message)
}

// SetBlocked marks the unit as blocked with a human-readable reason.
func (u *Unit) SetBlocked(message string) {
	u.set(Blocked, message)
}

func (u *Unit) set(state State, message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state = state
	u.message = message
}

// Get returns the current state and message.
func (u *Unit) Get() (State, string) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state, u.message
}

// Checker is a readiness check: it fails unless the unit is active.
// It matches controller-runtime's healthz.Checker signature.
func (u *Unit) Checker(_ *http.Request) error {
	state, message := u.Get()
	if state == Active {
		return nil
	}
	if message == "" {
		return fmt.Errorf("unit is %s", state)
	}
	return fmt.Errorf("unit is %s: %s", state, message)
}
