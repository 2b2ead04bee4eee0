// Package display arranges physical outputs into one virtual canvas and
// commits the arrangement to the display server.
//
// The package is built around three pieces: a Server handle abstracting the
// display-server protocol, a Pool owning a point-in-time snapshot of the
// server's video resources together with the leasable controllers, and
// Monitors linked into a quad-directional adjacency graph from which the
// canvas bounds and per-output offsets are derived.
package display

import "errors"

// Controller identifies a hardware path that drives a mode onto an output.
// Controllers are scarce: at any instant one is either leased to exactly one
// Monitor or sitting in the pool's availability set.
type Controller uint32

// Output identifies a physical display connector.
type Output uint32

// Mode identifies a resolution/refresh timing supported by an output.
type Mode uint32

// NoController, NoOutput and NoMode are the "unset" sentinels, matching the
// protocol's None value.
const (
	NoController Controller = 0
	NoOutput     Output     = 0
	NoMode       Mode       = 0
)

// Rotation is the orientation a controller drives its mode with.
type Rotation uint16

// RotationNormal is the only orientation the layout engine emits.
const RotationNormal Rotation = 1

// Error kinds reported by the engine. Callers branch with errors.Is instead
// of parsing log output.
var (
	// ErrServerUnavailable reports a failed call into the display server.
	ErrServerUnavailable = errors.New("display server unavailable")

	// ErrNoController reports an exhausted controller pool.
	ErrNoController = errors.New("no controller available")

	// ErrInconsistentTopology reports a query that returned nothing for a
	// supposedly valid assignment, or a neighbor link that would corrupt
	// the topology graph.
	ErrInconsistentTopology = errors.New("inconsistent topology")
)

// ModeInfo describes one timing from the snapshot's mode catalog.
type ModeInfo struct {
	ID     Mode
	Width  uint16
	Height uint16
}

// OutputInfo describes a physical connector at snapshot time.
type OutputInfo struct {
	Name      string
	Connected bool

	// Controller currently driving this output, NoController if none.
	Controller Controller

	// Modes is the full advertised mode list; the first NumPreferred
	// entries are the output's preferred subset.
	Modes        []Mode
	NumPreferred int

	// Physical dimensions reported by the output.
	WidthMM  uint32
	HeightMM uint32
}

// ControllerInfo is the mutable target state of a controller: the position
// and mode it should drive. Mode is NoMode for a disabled controller.
type ControllerInfo struct {
	X, Y   int16
	Width  uint16
	Height uint16
	Mode   Mode
}

// Snapshot is the result of a single resource enumeration.
type Snapshot struct {
	Controllers []Controller
	Outputs     []Output
	Modes       []ModeInfo
}

// Server is the display-server handle the engine commits through. All calls
// are synchronous and block until the server replies; there is no timeout.
//
// A Server is constructed once and injected into the Pool; the engine never
// reaches for a process-wide connection.
type Server interface {
	// Snapshot enumerates current controllers, outputs and modes.
	Snapshot() (*Snapshot, error)

	// OutputInfo fetches connector state for one output.
	OutputInfo(Output) (*OutputInfo, error)

	// ControllerInfo fetches the current configuration of one controller.
	ControllerInfo(Controller) (*ControllerInfo, error)

	// SetControllerConfig commits position, mode, rotation and output
	// membership for one controller. An empty outputs slice with NoMode
	// disables it.
	SetControllerConfig(c Controller, x, y int16, mode Mode, rotation Rotation, outputs []Output) error

	// SetPrimary marks the given output as the server's primary.
	SetPrimary(Output) error

	// SetCanvasSize resizes the virtual canvas, in pixels and millimeters.
	SetCanvasSize(width, height uint16, widthMM, heightMM uint32) error

	// Grab acquires the exclusive server grab; Ungrab releases it.
	Grab() error
	Ungrab() error

	// Sync blocks until the server has processed every queued request.
	Sync()
}
