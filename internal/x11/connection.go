// Package x11 implements the display.Server handle on top of the X11 RandR
// extension.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/arcan1s/libthinkpad/internal/display"
)

// Connection manages the X11 connection and the RandR state needed to query
// and commit output configurations.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// configTimestamp of the last Snapshot, passed back on queries and
	// commits so the server can reject requests against stale resources.
	configTimestamp xproto.Timestamp
}

var _ display.Server = (*Connection)(nil)

// NewConnection establishes a connection to the X11 server and initializes
// the RandR extension.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// Snapshot enumerates the server's current controllers, outputs and modes.
func (c *Connection) Snapshot() (*display.Snapshot, error) {
	res, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	c.configTimestamp = res.ConfigTimestamp

	snap := &display.Snapshot{
		Controllers: make([]display.Controller, 0, len(res.Crtcs)),
		Outputs:     make([]display.Output, 0, len(res.Outputs)),
		Modes:       make([]display.ModeInfo, 0, len(res.Modes)),
	}
	for _, crtc := range res.Crtcs {
		snap.Controllers = append(snap.Controllers, display.Controller(crtc))
	}
	for _, output := range res.Outputs {
		snap.Outputs = append(snap.Outputs, display.Output(output))
	}
	for _, mode := range res.Modes {
		snap.Modes = append(snap.Modes, display.ModeInfo{
			ID:     display.Mode(mode.Id),
			Width:  mode.Width,
			Height: mode.Height,
		})
	}
	return snap, nil
}

// OutputInfo fetches connector state for one output.
func (c *Connection) OutputInfo(output display.Output) (*display.OutputInfo, error) {
	info, err := randr.GetOutputInfo(c.XUtil.Conn(), randr.Output(output), c.configTimestamp).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get output info for %d: %w", output, err)
	}

	modes := make([]display.Mode, 0, len(info.Modes))
	for _, mode := range info.Modes {
		modes = append(modes, display.Mode(mode))
	}

	return &display.OutputInfo{
		Name:         string(info.Name),
		Connected:    info.Connection == randr.ConnectionConnected,
		Controller:   display.Controller(info.Crtc),
		Modes:        modes,
		NumPreferred: int(info.NumPreferred),
		WidthMM:      info.MmWidth,
		HeightMM:     info.MmHeight,
	}, nil
}

// ControllerInfo fetches the current configuration of one controller.
func (c *Connection) ControllerInfo(ctrl display.Controller) (*display.ControllerInfo, error) {
	info, err := randr.GetCrtcInfo(c.XUtil.Conn(), randr.Crtc(ctrl), c.configTimestamp).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get crtc info for %d: %w", ctrl, err)
	}

	return &display.ControllerInfo{
		X:      info.X,
		Y:      info.Y,
		Width:  info.Width,
		Height: info.Height,
		Mode:   display.Mode(info.Mode),
	}, nil
}

// SetControllerConfig commits position, mode, rotation and output
// membership for one controller.
func (c *Connection) SetControllerConfig(ctrl display.Controller, x, y int16, mode display.Mode, rotation display.Rotation, outputs []display.Output) error {
	rrOutputs := make([]randr.Output, 0, len(outputs))
	for _, output := range outputs {
		rrOutputs = append(rrOutputs, randr.Output(output))
	}

	reply, err := randr.SetCrtcConfig(c.XUtil.Conn(), randr.Crtc(ctrl), 0, c.configTimestamp,
		x, y, randr.Mode(mode), uint16(rotation), rrOutputs).Reply()
	if err != nil {
		return fmt.Errorf("failed to set crtc config for %d: %w", ctrl, err)
	}
	if reply.Status != randr.SetConfigSuccess {
		return fmt.Errorf("crtc config for %d rejected with status %d", ctrl, reply.Status)
	}
	return nil
}

// SetPrimary marks the given output as the server's primary.
func (c *Connection) SetPrimary(output display.Output) error {
	return randr.SetOutputPrimaryChecked(c.XUtil.Conn(), c.Root, randr.Output(output)).Check()
}

// SetCanvasSize resizes the root screen.
func (c *Connection) SetCanvasSize(width, height uint16, widthMM, heightMM uint32) error {
	return randr.SetScreenSizeChecked(c.XUtil.Conn(), c.Root, width, height, widthMM, heightMM).Check()
}

// Grab acquires the exclusive server grab.
func (c *Connection) Grab() error {
	return xproto.GrabServerChecked(c.XUtil.Conn()).Check()
}

// Ungrab releases the exclusive server grab.
func (c *Connection) Ungrab() error {
	return xproto.UngrabServerChecked(c.XUtil.Conn()).Check()
}

// Sync forces a blocking round trip so every queued request has been
// processed by the server before it returns.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}
