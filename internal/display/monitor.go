package display

import (
	"fmt"
	"log/slog"
)

// MonitorID is a stable arena index into the pool's monitor collection.
// Neighbor links are stored as ids rather than pointers so a link can never
// dangle across pool generations.
type MonitorID int

// NoMonitor marks an unset neighbor link.
const NoMonitor MonitorID = -1

// Point is a pixel coordinate on the virtual canvas.
type Point struct {
	X, Y int
}

// direction selects one of the four neighbor chains.
type direction int

const (
	dirLeft direction = iota
	dirRight
	dirTop
	dirBottom
)

func (d direction) String() string {
	switch d {
	case dirLeft:
		return "left"
	case dirRight:
		return "right"
	case dirTop:
		return "top"
	case dirBottom:
		return "bottom"
	}
	return "unknown"
}

// Monitor wraps one output of the pool's snapshot. It moves through four
// states: unbound (no controller), bound-inactive (controller held, no
// active mode), bound-active (controller and mode), and configured once a
// position and topology have been applied.
//
// Neighbor links are caller-assigned and define the topology used by the
// layout computation; no symmetry between opposite links is enforced.
type Monitor struct {
	id   MonitorID
	pool *Pool
	log  *slog.Logger

	output Output
	info   *OutputInfo

	controller Controller
	ctrlInfo   *ControllerInfo
	mode       *ModeInfo

	primary bool

	left, right, top, bottom MonitorID

	limitsDone bool
	canvas     Canvas
}

// newMonitor derives a Monitor from the snapshot. An output already driven
// by a controller adopts it: the controller is marked busy in the pool and
// its current configuration is queried. Query failures are logged and leave
// the corresponding fields as sentinels; later operations treat a sentinel
// as "inactive".
func newMonitor(p *Pool, id MonitorID, output Output) *Monitor {
	m := &Monitor{
		id:     id,
		pool:   p,
		log:    p.log,
		output: output,
		left:   NoMonitor,
		right:  NoMonitor,
		top:    NoMonitor,
		bottom: NoMonitor,
	}

	info, err := p.srv.OutputInfo(output)
	if err != nil {
		m.log.Error("failed to fetch output info", "output", output, "error", err)
		return m
	}
	m.info = info

	if info.Controller == NoController {
		return m
	}

	m.controller = info.Controller
	p.MarkBusy(m.controller)

	ctrlInfo, err := p.srv.ControllerInfo(m.controller)
	if err != nil {
		m.log.Error("failed to fetch controller info", "controller", m.controller, "error", err)
		return m
	}
	m.ctrlInfo = ctrlInfo

	if ctrlInfo.Mode == NoMode {
		return m
	}

	m.mode = p.modeInfo(ctrlInfo.Mode)
	if m.mode == nil {
		m.log.Error("active mode missing from catalog", "output", output, "mode", ctrlInfo.Mode)
	}

	return m
}

// ID returns the monitor's arena id.
func (m *Monitor) ID() MonitorID { return m.id }

// Name returns the output's interface name, e.g. "LVDS1".
func (m *Monitor) Name() string {
	if m.info == nil {
		return ""
	}
	return m.info.Name
}

// Output returns the wrapped output id.
func (m *Monitor) Output() Output { return m.output }

// Controller returns the currently held controller, NoController if unbound.
func (m *Monitor) Controller() Controller { return m.controller }

// IsConnected reports whether the output has a display attached.
func (m *Monitor) IsConnected() bool {
	return m.info != nil && m.info.Connected
}

// IsOff reports whether the monitor drives no mode, either because it holds
// no controller or because the controller's target mode is cleared.
func (m *Monitor) IsOff() bool {
	if m.controller == NoController || m.ctrlInfo == nil {
		return true
	}
	return m.ctrlInfo.Mode == NoMode
}

// TurnOff clears the target mode while keeping the controller leased. The
// next Apply commits a disable for this monitor.
func (m *Monitor) TurnOff() {
	if m.ctrlInfo == nil {
		return
	}
	m.ctrlInfo.Mode = NoMode
	m.mode = nil
}

// Release returns any held controller to the pool and resets the monitor to
// the unbound state. Safe to call from any state, but only once per lease:
// a double release duplicates the controller in the pool.
func (m *Monitor) Release() {
	if m.controller != NoController {
		m.pool.Release(m.controller)
	}
	m.controller = NoController
	m.ctrlInfo = nil
	m.mode = nil
}

// Reconfigure leases a fresh controller from the pool and queries its
// current configuration. It fails with ErrNoController when the pool is
// exhausted, leaving the monitor unchanged.
func (m *Monitor) Reconfigure() error {
	c, err := m.pool.Lease()
	if err != nil {
		m.log.Error("cannot reconfigure output: no available controllers", "output", m.Name())
		return err
	}
	m.SetController(c)
	return nil
}

// SetController binds the monitor to a specific controller and re-queries
// its hardware state. A failed query is logged and leaves the controller
// info as a sentinel, so the monitor reads as inactive.
func (m *Monitor) SetController(c Controller) {
	m.controller = c

	info, err := m.pool.srv.ControllerInfo(c)
	if err != nil {
		m.log.Error("failed to query new controller", "controller", c, "error", err)
		m.ctrlInfo = nil
		return
	}
	m.ctrlInfo = info
}

// SetOutputMode points the held controller at a new mode. The mode must come
// from the pool's snapshot catalog; an unknown mode is rejected with
// ErrInconsistentTopology.
func (m *Monitor) SetOutputMode(mode Mode) error {
	if m.ctrlInfo == nil {
		m.log.Error("requested mode change on unbound monitor", "output", m.Name())
		return fmt.Errorf("%w: no controller bound to %q", ErrInconsistentTopology, m.Name())
	}

	info := m.pool.modeInfo(mode)
	if info == nil {
		m.log.Error("mode missing from catalog", "mode", mode)
		return fmt.Errorf("%w: mode %d not in snapshot catalog", ErrInconsistentTopology, mode)
	}

	m.mode = info
	m.ctrlInfo.Mode = mode
	m.ctrlInfo.Height = info.Height
	// TODO: verify whether width should come from the new mode instead of
	// carrying over the controller's current width.

	return nil
}

// IsOutputModeSupported reports whether mode appears in the output's
// advertised mode list.
func (m *Monitor) IsOutputModeSupported(mode Mode) bool {
	if m.info == nil {
		return false
	}
	for _, candidate := range m.info.Modes {
		if candidate == mode {
			return true
		}
	}
	return false
}

// PreferredOutputMode returns the last mode of the output's preferred
// subset, or NoMode when the output advertises none.
func (m *Monitor) PreferredOutputMode() Mode {
	if m.info == nil || m.info.NumPreferred < 1 || m.info.NumPreferred > len(m.info.Modes) {
		return NoMode
	}
	// TODO: check the preferred-mode convention; this indexes the full
	// mode list at NumPreferred-1 rather than a preferred-only sublist.
	return m.info.Modes[m.info.NumPreferred-1]
}

// Position returns the monitor's pixel position on the canvas. An unbound
// monitor logs and reports the (-1, -1) sentinel.
func (m *Monitor) Position() Point {
	if m.ctrlInfo == nil {
		m.log.Error("requested position of inactive monitor", "output", m.Name())
		return Point{X: -1, Y: -1}
	}
	return Point{X: int(m.ctrlInfo.X), Y: int(m.ctrlInfo.Y)}
}

// SetPosition moves the monitor's canvas position. On an unbound monitor
// the request is logged and dropped.
func (m *Monitor) SetPosition(p Point) {
	if m.ctrlInfo == nil {
		m.log.Error("requested to set position on inactive monitor", "output", m.Name())
		return
	}
	m.ctrlInfo.X = int16(p.X)
	m.ctrlInfo.Y = int16(p.Y)
}

// SetPrimary flags this monitor as the anchor whose output becomes the
// server's primary when the configuration is applied.
func (m *Monitor) SetPrimary(primary bool) { m.primary = primary }

// IsPrimary reports the primary flag.
func (m *Monitor) IsPrimary() bool { return m.primary }

// SetLeftMonitor links a neighbor to the left. The link is rejected when it
// would make this monitor reachable along its own left chain.
func (m *Monitor) SetLeftMonitor(id MonitorID) error { return m.setLink(dirLeft, id) }

// SetRightMonitor links a neighbor to the right.
func (m *Monitor) SetRightMonitor(id MonitorID) error { return m.setLink(dirRight, id) }

// SetTopMonitor links a neighbor above.
func (m *Monitor) SetTopMonitor(id MonitorID) error { return m.setLink(dirTop, id) }

// SetBottomMonitor links a neighbor below.
func (m *Monitor) SetBottomMonitor(id MonitorID) error { return m.setLink(dirBottom, id) }

// LeftMonitor returns the left neighbor id, NoMonitor when unset.
func (m *Monitor) LeftMonitor() MonitorID { return m.left }

// RightMonitor returns the right neighbor id.
func (m *Monitor) RightMonitor() MonitorID { return m.right }

// TopMonitor returns the top neighbor id.
func (m *Monitor) TopMonitor() MonitorID { return m.top }

// BottomMonitor returns the bottom neighbor id.
func (m *Monitor) BottomMonitor() MonitorID { return m.bottom }

func (m *Monitor) link(d direction) MonitorID {
	switch d {
	case dirLeft:
		return m.left
	case dirRight:
		return m.right
	case dirTop:
		return m.top
	case dirBottom:
		return m.bottom
	}
	return NoMonitor
}

// setLink assigns a neighbor link after checking that following the same
// direction from the new neighbor never leads back to this monitor. Layout
// walks a chain to its end, so a same-direction cycle would never
// terminate.
func (m *Monitor) setLink(d direction, id MonitorID) error {
	for cur := id; cur != NoMonitor; {
		if cur == m.id {
			m.log.Error("rejecting neighbor link: cycle", "output", m.Name(), "direction", d.String())
			return fmt.Errorf("%w: linking %s as %s neighbor of %s creates a cycle",
				ErrInconsistentTopology, m.pool.monitorName(id), d, m.Name())
		}
		next := m.pool.monitor(cur)
		if next == nil {
			break
		}
		cur = next.link(d)
	}

	switch d {
	case dirLeft:
		m.left = id
	case dirRight:
		m.right = id
	case dirTop:
		m.top = id
	case dirBottom:
		m.bottom = id
	}
	return nil
}
