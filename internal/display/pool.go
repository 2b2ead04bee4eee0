package display

import (
	"fmt"
	"log/slog"
)

// Pool owns one generation of video resources: the snapshot taken at
// construction time and the subset of controllers currently available to
// lease. It also owns the Monitor arena derived from the snapshot.
//
// A Pool is built once per session generation and discarded wholesale; it is
// never re-diffed against later hardware state. It has no internal locking
// and is safe only under a single-threaded, single-writer assumption.
type Pool struct {
	srv Server
	log *slog.Logger

	controllers []Controller
	available   []Controller
	outputs     []Output
	modes       []ModeInfo

	monitors []*Monitor
}

// NewPool snapshots the server's current resources. A failed enumeration is
// logged and leaves the pool with empty collections rather than failing
// construction.
func NewPool(srv Server, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{srv: srv, log: logger}

	snap, err := srv.Snapshot()
	if err != nil {
		p.log.Error("failed to enumerate screen resources", "error", err)
		return p
	}

	p.controllers = append(p.controllers, snap.Controllers...)
	p.available = append(p.available, snap.Controllers...)
	p.outputs = append(p.outputs, snap.Outputs...)
	p.modes = append(p.modes, snap.Modes...)

	return p
}

// Server returns the handle this pool commits through.
func (p *Pool) Server() Server { return p.srv }

// Controllers returns every controller enumerated at snapshot time,
// regardless of lease state.
func (p *Pool) Controllers() []Controller { return p.controllers }

// Outputs returns every output enumerated at snapshot time.
func (p *Pool) Outputs() []Output { return p.outputs }

// Modes returns the snapshot's mode catalog.
func (p *Pool) Modes() []ModeInfo { return p.modes }

// Lease removes and returns the first available controller. It returns
// ErrNoController when the pool is exhausted; the caller decides the
// fallback (typically leaving an output disabled).
func (p *Pool) Lease() (Controller, error) {
	if len(p.available) == 0 {
		return NoController, fmt.Errorf("%w: pool exhausted", ErrNoController)
	}
	c := p.available[0]
	p.available = p.available[1:]
	return c, nil
}

// Release returns a controller to the availability set. Releasing the same
// lease twice corrupts the pool; no duplicate detection is performed.
func (p *Pool) Release(c Controller) {
	p.available = append(p.available, c)
}

// MarkBusy removes a specific controller from the availability set without
// handing it to any Monitor. Used when discovery finds a controller already
// driving an output outside the pool's bookkeeping.
func (p *Pool) MarkBusy(c Controller) {
	for i, candidate := range p.available {
		if candidate == c {
			p.available = append(p.available[:i], p.available[i+1:]...)
			return
		}
	}
}

// AvailableControllers returns the current availability set, in lease order.
func (p *Pool) AvailableControllers() []Controller { return p.available }

// Monitors derives one Monitor per enumerated output. The collection is
// built on first call and memoized for the pool's lifetime: hardware changes
// after the first call are not observed. A changed topology needs a fresh
// pool generation.
func (p *Pool) Monitors() []*Monitor {
	if p.monitors != nil {
		return p.monitors
	}

	p.monitors = make([]*Monitor, 0, len(p.outputs))
	for i, out := range p.outputs {
		p.monitors = append(p.monitors, newMonitor(p, MonitorID(i), out))
	}

	return p.monitors
}

// MonitorByName returns the monitor whose output interface matches name,
// or nil if no such output was enumerated.
func (p *Pool) MonitorByName(name string) *Monitor {
	for _, m := range p.Monitors() {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// modeInfo resolves a mode id against the snapshot catalog.
func (p *Pool) modeInfo(id Mode) *ModeInfo {
	for i := range p.modes {
		if p.modes[i].ID == id {
			return &p.modes[i]
		}
	}
	return nil
}

// monitorName resolves an arena id to its output name for log messages.
func (p *Pool) monitorName(id MonitorID) string {
	if m := p.monitor(id); m != nil {
		return m.Name()
	}
	return "?"
}

// monitor resolves an arena id; NoMonitor and out-of-range ids yield nil.
func (p *Pool) monitor(id MonitorID) *Monitor {
	if id < 0 || int(id) >= len(p.monitors) {
		return nil
	}
	return p.monitors[id]
}
