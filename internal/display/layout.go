package display

import (
	"errors"
	"fmt"
)

// Canvas is the combined virtual desktop size spanning all active outputs,
// in pixels and millimeters. It is derived from the topology and never
// persisted.
type Canvas struct {
	Width    uint32
	Height   uint32
	WidthMM  uint32
	HeightMM uint32
}

// chain collects the monitors reachable by walking one neighbor direction
// from this monitor to the end of the chain, outward order.
func (m *Monitor) chain(d direction) []*Monitor {
	var out []*Monitor
	for id := m.link(d); id != NoMonitor; {
		n := m.pool.monitor(id)
		if n == nil {
			break
		}
		out = append(out, n)
		id = n.link(d)
	}
	return out
}

// CalculateLimits computes the canvas bounds for the topology anchored at
// this monitor and memoizes them; repeated calls return the first result.
//
// The topology is treated as four cardinal chains radiating from the
// anchor. The horizontal pair contributes the sum of its mode widths while
// the maximum mode height across that axis is tracked; the vertical pair is
// handled analogously with heights and widths swapped. The final canvas
// takes, per axis, the larger of the summed extent and the perpendicular
// axis's transverse maximum. Millimeter bounds are computed in parallel
// from the outputs' physical sizes. This is an L/cross bounding box, not a
// general bin-pack.
func (m *Monitor) CalculateLimits() Canvas {
	if m.limitsDone {
		return m.canvas
	}
	if m.mode == nil {
		m.log.Error("cannot calculate limits for inactive anchor", "output", m.Name())
		return Canvas{}
	}

	var c Canvas
	var xAxisMaxHeight, xAxisMaxHeightMM uint32
	var yAxisMaxWidth, yAxisMaxWidthMM uint32

	horizontal := append(m.chain(dirLeft), m)
	horizontal = append(horizontal, m.chain(dirRight)...)
	for _, n := range horizontal {
		if n.mode == nil {
			m.log.Error("skipping inactive monitor on horizontal axis", "output", n.Name())
			continue
		}
		if h := uint32(n.mode.Height); h > xAxisMaxHeight {
			xAxisMaxHeight = h
		}
		c.Width += uint32(n.mode.Width)
		if n.info != nil {
			if n.info.HeightMM > xAxisMaxHeightMM {
				xAxisMaxHeightMM = n.info.HeightMM
			}
			c.WidthMM += n.info.WidthMM
		}
	}

	vertical := append(m.chain(dirTop), m)
	vertical = append(vertical, m.chain(dirBottom)...)
	for _, n := range vertical {
		if n.mode == nil {
			m.log.Error("skipping inactive monitor on vertical axis", "output", n.Name())
			continue
		}
		if w := uint32(n.mode.Width); w > yAxisMaxWidth {
			yAxisMaxWidth = w
		}
		c.Height += uint32(n.mode.Height)
		if n.info != nil {
			if n.info.WidthMM > yAxisMaxWidthMM {
				yAxisMaxWidthMM = n.info.WidthMM
			}
			c.HeightMM += n.info.HeightMM
		}
	}

	// Each axis must at least fit the widest/tallest monitor of the
	// perpendicular axis.
	c.Width = max(c.Width, yAxisMaxWidth)
	c.WidthMM = max(c.WidthMM, yAxisMaxWidthMM)
	c.Height = max(c.Height, xAxisMaxHeight)
	c.HeightMM = max(c.HeightMM, xAxisMaxHeightMM)

	m.canvas = c
	m.limitsDone = true
	return c
}

// CalculateRelativePositions assigns every monitor in the topology its
// pixel offset on the canvas. The anchor's origin reserves room for the
// full left and top chains; each chain is then walked outward in the
// caller-assigned neighbor order, advancing by the walked monitor's own
// extent. Recomputed on every call.
func (m *Monitor) CalculateRelativePositions() {
	if m.mode == nil {
		m.log.Error("cannot position inactive anchor", "output", m.Name())
		return
	}

	root := Point{}
	for _, n := range m.chain(dirLeft) {
		if n.mode != nil {
			root.X += int(n.mode.Width)
		}
	}
	for _, n := range m.chain(dirTop) {
		if n.mode != nil {
			root.Y += int(n.mode.Height)
		}
	}
	m.SetPosition(root)

	pos := root
	for _, n := range m.chain(dirLeft) {
		if n.mode == nil {
			m.log.Error("skipping inactive monitor on left chain", "output", n.Name())
			continue
		}
		pos.X -= int(n.mode.Width)
		n.SetPosition(Point{X: pos.X, Y: root.Y})
	}

	pos = Point{X: root.X + int(m.mode.Width), Y: root.Y}
	for _, n := range m.chain(dirRight) {
		if n.mode == nil {
			m.log.Error("skipping inactive monitor on right chain", "output", n.Name())
			continue
		}
		n.SetPosition(pos)
		pos.X += int(n.mode.Width)
	}

	pos = root
	for _, n := range m.chain(dirTop) {
		if n.mode == nil {
			m.log.Error("skipping inactive monitor on top chain", "output", n.Name())
			continue
		}
		pos.Y -= int(n.mode.Height)
		n.SetPosition(Point{X: root.X, Y: pos.Y})
	}

	pos = Point{X: root.X, Y: root.Y + int(m.mode.Height)}
	for _, n := range m.chain(dirBottom) {
		if n.mode == nil {
			m.log.Error("skipping inactive monitor on bottom chain", "output", n.Name())
			continue
		}
		n.SetPosition(pos)
		pos.Y += int(n.mode.Height)
	}
}

// Apply commits the whole topology anchored at this monitor to the server
// as one visually atomic update.
//
// An off monitor issues a single disable commit. Otherwise limits are
// computed if not yet memoized, relative positions are recomputed, and the
// batch runs under the exclusive server grab: anchor commit, then every
// monitor reachable along each of the four chains (chains are walked
// independently; a monitor reachable via two chains is committed twice),
// the primary marker when the anchor is flagged, and one canvas resize.
// The grab is always released and a blocking sync concludes the batch.
//
// Per-monitor commit failures are logged and collected; they do not stop
// the remaining commits.
func (m *Monitor) Apply() error {
	srv := m.pool.srv

	if m.IsOff() {
		return m.commit()
	}

	if !m.limitsDone {
		m.CalculateLimits()
	}
	m.CalculateRelativePositions()

	if err := srv.Grab(); err != nil {
		m.log.Error("failed to grab server", "error", err)
		return fmt.Errorf("%w: grab: %v", ErrServerUnavailable, err)
	}

	var errs []error
	errs = append(errs, m.commit())

	for _, d := range []direction{dirLeft, dirRight, dirTop, dirBottom} {
		for _, n := range m.chain(d) {
			errs = append(errs, n.commit())
		}
	}

	if m.primary {
		if err := srv.SetPrimary(m.output); err != nil {
			m.log.Error("failed to set primary output", "output", m.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%w: set primary: %v", ErrServerUnavailable, err))
		}
	}

	if err := srv.SetCanvasSize(uint16(m.canvas.Width), uint16(m.canvas.Height), m.canvas.WidthMM, m.canvas.HeightMM); err != nil {
		m.log.Error("failed to set canvas size", "error", err)
		errs = append(errs, fmt.Errorf("%w: set canvas size: %v", ErrServerUnavailable, err))
	}

	if err := srv.Ungrab(); err != nil {
		m.log.Error("failed to ungrab server", "error", err)
		errs = append(errs, fmt.Errorf("%w: ungrab: %v", ErrServerUnavailable, err))
	}
	srv.Sync()

	return errors.Join(errs...)
}

// commit writes this monitor's controller state to the server. A cleared or
// absent mode commits a disable.
func (m *Monitor) commit() error {
	var x, y int16
	mode := NoMode
	if m.ctrlInfo != nil {
		x, y, mode = m.ctrlInfo.X, m.ctrlInfo.Y, m.ctrlInfo.Mode
	}

	var outputs []Output
	if mode != NoMode {
		outputs = []Output{m.output}
	}

	if err := m.pool.srv.SetControllerConfig(m.controller, x, y, mode, RotationNormal, outputs); err != nil {
		m.log.Error("failed to set controller config", "output", m.Name(), "error", err)
		return fmt.Errorf("%w: commit %q: %v", ErrServerUnavailable, m.Name(), err)
	}
	return nil
}
