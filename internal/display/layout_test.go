package display

import (
	"strings"
	"testing"
)

func mustLink(t *testing.T, link func(MonitorID) error, id MonitorID) {
	t.Helper()
	if err := link(id); err != nil {
		t.Fatalf("link: %v", err)
	}
}

func TestCalculateLimitsHorizontalRow(t *testing.T) {
	pool, _ := newTestPool()
	panel := monitorByOutput(pool, outPanel) // 1366x768
	dp := monitorByOutput(pool, outDP)       // 1920x1080
	hdmi := monitorByOutput(pool, outHDMI)   // 1600x900

	mustLink(t, panel.SetLeftMonitor, dp.ID())
	mustLink(t, panel.SetRightMonitor, hdmi.ID())

	c := panel.CalculateLimits()
	if want := uint32(1920 + 1366 + 1600); c.Width != want {
		t.Fatalf("canvas width = %d; want %d", c.Width, want)
	}
	// Vertical axis holds only the anchor; the tallest horizontal monitor
	// bounds the height.
	if want := uint32(1080); c.Height != want {
		t.Fatalf("canvas height = %d; want %d", c.Height, want)
	}
	if want := uint32(527 + 310 + 443); c.WidthMM != want {
		t.Fatalf("canvas width mm = %d; want %d", c.WidthMM, want)
	}
	if want := uint32(296); c.HeightMM != want {
		t.Fatalf("canvas height mm = %d; want %d", c.HeightMM, want)
	}
}

func TestCalculateLimitsTopNeighbor(t *testing.T) {
	pool, _ := newTestPool()
	dp := monitorByOutput(pool, outDP)     // anchor, 1920x1080
	hdmi := monitorByOutput(pool, outHDMI) // above, 1600x900

	mustLink(t, dp.SetTopMonitor, hdmi.ID())

	c := dp.CalculateLimits()
	if want := uint32(1080 + 900); c.Height != want {
		t.Fatalf("canvas height = %d; want %d", c.Height, want)
	}
	if want := uint32(1920); c.Width != want {
		t.Fatalf("canvas width = %d; want %d", c.Width, want)
	}
}

func TestCalculateLimitsIdempotent(t *testing.T) {
	pool, _ := newTestPool()
	panel := monitorByOutput(pool, outPanel)
	dp := monitorByOutput(pool, outDP)

	mustLink(t, panel.SetRightMonitor, dp.ID())

	first := panel.CalculateLimits()
	second := panel.CalculateLimits()
	if first != second {
		t.Fatalf("second CalculateLimits = %+v; want %+v", second, first)
	}
}

func TestRelativePositionsHorizontalRow(t *testing.T) {
	pool, _ := newTestPool()
	panel := monitorByOutput(pool, outPanel) // anchor, width 1366
	dp := monitorByOutput(pool, outDP)       // left, width 1920
	hdmi := monitorByOutput(pool, outHDMI)   // right, width 1600

	mustLink(t, panel.SetLeftMonitor, dp.ID())
	mustLink(t, panel.SetRightMonitor, hdmi.ID())

	panel.CalculateRelativePositions()

	if pos := panel.Position(); pos != (Point{X: 1920, Y: 0}) {
		t.Fatalf("anchor position = %v; want (1920, 0)", pos)
	}
	if pos := dp.Position(); pos != (Point{X: 0, Y: 0}) {
		t.Fatalf("left position = %v; want (0, 0)", pos)
	}
	if pos := hdmi.Position(); pos != (Point{X: 1920 + 1366, Y: 0}) {
		t.Fatalf("right position = %v; want (3286, 0)", pos)
	}
}

func TestRelativePositionsVerticalChains(t *testing.T) {
	pool, _ := newTestPool()
	dp := monitorByOutput(pool, outDP)       // anchor, 1920x1080
	hdmi := monitorByOutput(pool, outHDMI)   // top, height 900
	panel := monitorByOutput(pool, outPanel) // bottom, height 768

	mustLink(t, dp.SetTopMonitor, hdmi.ID())
	mustLink(t, dp.SetBottomMonitor, panel.ID())

	dp.CalculateRelativePositions()

	if pos := dp.Position(); pos != (Point{X: 0, Y: 900}) {
		t.Fatalf("anchor position = %v; want (0, 900)", pos)
	}
	if pos := hdmi.Position(); pos != (Point{X: 0, Y: 0}) {
		t.Fatalf("top position = %v; want (0, 0)", pos)
	}
	if pos := panel.Position(); pos != (Point{X: 0, Y: 900 + 1080}) {
		t.Fatalf("bottom position = %v; want (0, 1980)", pos)
	}
}

func TestRelativePositionsRecomputed(t *testing.T) {
	pool, _ := newTestPool()
	panel := monitorByOutput(pool, outPanel)
	dp := monitorByOutput(pool, outDP)

	mustLink(t, panel.SetLeftMonitor, dp.ID())
	panel.CalculateRelativePositions()
	if pos := panel.Position(); pos.X != 1920 {
		t.Fatalf("anchor x = %d; want 1920", pos.X)
	}

	// Dropping the left wing shifts the anchor back to the origin on the
	// next computation; positions are not memoized.
	mustLink(t, panel.SetLeftMonitor, NoMonitor)
	panel.CalculateRelativePositions()
	if pos := panel.Position(); pos.X != 0 {
		t.Fatalf("anchor x = %d after relink; want 0", pos.X)
	}
}

func TestApplyCommitsTopologyUnderGrab(t *testing.T) {
	pool, srv := newTestPool()
	panel := monitorByOutput(pool, outPanel)
	dp := monitorByOutput(pool, outDP)
	hdmi := monitorByOutput(pool, outHDMI)

	mustLink(t, panel.SetLeftMonitor, dp.ID())
	mustLink(t, panel.SetRightMonitor, hdmi.ID())
	panel.SetPrimary(true)

	if err := panel.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{
		"grab",
		"config crtc=1 pos=1920,0 mode=100 outputs=1",
		"config crtc=2 pos=0,0 mode=101 outputs=1",
		"config crtc=3 pos=3286,0 mode=102 outputs=1",
		"primary 10",
		"canvas 4886x1080 1280mmx296mm",
		"ungrab",
		"sync",
	}
	if len(srv.ops) != len(want) {
		t.Fatalf("ops = %v; want %v", srv.ops, want)
	}
	for i := range want {
		if srv.ops[i] != want[i] {
			t.Fatalf("op[%d] = %q; want %q", i, srv.ops[i], want[i])
		}
	}
}

func TestApplySkipsPrimaryWhenUnflagged(t *testing.T) {
	pool, srv := newTestPool()
	panel := monitorByOutput(pool, outPanel)

	if err := panel.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, op := range srv.ops {
		if strings.HasPrefix(op, "primary") {
			t.Fatalf("unexpected primary op in %v", srv.ops)
		}
	}
}

func TestApplyOffMonitorCommitsSingleDisable(t *testing.T) {
	pool, srv := newTestPool()
	dp := monitorByOutput(pool, outDP)

	dp.TurnOff()
	if err := dp.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(srv.ops) != 1 {
		t.Fatalf("ops = %v; want a single disable commit", srv.ops)
	}
	if srv.ops[0] != "config crtc=2 pos=0,0 mode=0 outputs=0" {
		t.Fatalf("op = %q; want disable commit", srv.ops[0])
	}
}

func TestApplyCommitsSharedMonitorTwice(t *testing.T) {
	pool, srv := newTestPool()
	panel := monitorByOutput(pool, outPanel)
	dp := monitorByOutput(pool, outDP)

	// The same neighbor linked on two chains is walked (and committed)
	// once per chain.
	mustLink(t, panel.SetRightMonitor, dp.ID())
	mustLink(t, panel.SetBottomMonitor, dp.ID())

	if err := panel.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	commits := 0
	for _, op := range srv.ops {
		if strings.Contains(op, "crtc=2") {
			commits++
		}
	}
	if commits != 2 {
		t.Fatalf("neighbor committed %d times; want 2 (ops %v)", commits, srv.ops)
	}
}

func TestApplySetsCanvasOnce(t *testing.T) {
	pool, srv := newTestPool()
	panel := monitorByOutput(pool, outPanel)
	dp := monitorByOutput(pool, outDP)
	hdmi := monitorByOutput(pool, outHDMI)

	mustLink(t, panel.SetRightMonitor, dp.ID())
	mustLink(t, panel.SetTopMonitor, hdmi.ID())

	if err := panel.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	resizes := 0
	for _, op := range srv.ops {
		if strings.HasPrefix(op, "canvas") {
			resizes++
		}
	}
	if resizes != 1 {
		t.Fatalf("canvas resized %d times; want 1 (ops %v)", resizes, srv.ops)
	}
}
