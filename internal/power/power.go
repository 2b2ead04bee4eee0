// Package power routes suspend requests to a session-manager backend,
// suppressing lid-close suspends while the machine sits in an engaged dock.
package power

import (
	"context"
	"fmt"
	"log/slog"
)

// Reason identifies what triggered a suspend request.
type Reason int

const (
	// ReasonButton is a power/sleep button press.
	ReasonButton Reason = iota
	// ReasonLid is a lid-close event.
	ReasonLid
)

func (r Reason) String() string {
	switch r {
	case ReasonButton:
		return "button"
	case ReasonLid:
		return "lid"
	}
	return "unknown"
}

// Backend is the single capability a session-manager protocol must provide.
// One implementation exists per protocol; the daemon picks one at startup
// and injects it.
type Backend interface {
	Suspend(ctx context.Context) error
}

// DockSensor reports dock presence and engagement.
type DockSensor interface {
	Probe() bool
	Docked() bool
}

// Manager decides whether a suspend request should reach the backend.
type Manager struct {
	backend Backend
	dock    DockSensor
	log     *slog.Logger
}

// NewManager wires a suspend backend with a dock sensor.
func NewManager(backend Backend, dock DockSensor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: backend, dock: dock, log: logger}
}

// RequestSuspend routes a suspend request. Button presses suspend
// unconditionally. Lid closes are gated on the dock: without a recognized
// dock present the request is dropped and logged, and with the dock engaged
// the lid event is ignored so the laptop keeps driving external monitors.
//
// The returned bool reports whether a suspend was actually issued.
func (m *Manager) RequestSuspend(ctx context.Context, reason Reason) (bool, error) {
	switch reason {
	case ReasonButton:
		if err := m.backend.Suspend(ctx); err != nil {
			return false, err
		}
		return true, nil

	case ReasonLid:
		if !m.dock.Probe() {
			m.log.Error("dock is not sane/present, dropping lid suspend")
			return false, nil
		}
		if m.dock.Docked() {
			m.log.Info("ignoring lid event while docked")
			return false, nil
		}
		if err := m.backend.Suspend(ctx); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, fmt.Errorf("invalid suspend reason %d", reason)
	}
}
