package display

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// fakeServer implements Server for tests and records every commit-side call
// in order.
type fakeServer struct {
	snap    Snapshot
	snapErr error

	outputs map[Output]OutputInfo
	ctrls   map[Controller]ControllerInfo

	outputErr error
	ctrlErr   error
	commitErr error

	ops []string
}

func (f *fakeServer) Snapshot() (*Snapshot, error) {
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	snap := f.snap
	return &snap, nil
}

func (f *fakeServer) OutputInfo(o Output) (*OutputInfo, error) {
	if f.outputErr != nil {
		return nil, f.outputErr
	}
	info, ok := f.outputs[o]
	if !ok {
		return nil, errors.New("no such output")
	}
	return &info, nil
}

func (f *fakeServer) ControllerInfo(c Controller) (*ControllerInfo, error) {
	if f.ctrlErr != nil {
		return nil, f.ctrlErr
	}
	info, ok := f.ctrls[c]
	if !ok {
		return nil, errors.New("no such controller")
	}
	return &info, nil
}

func (f *fakeServer) SetControllerConfig(c Controller, x, y int16, mode Mode, rotation Rotation, outputs []Output) error {
	f.ops = append(f.ops, fmt.Sprintf("config crtc=%d pos=%d,%d mode=%d outputs=%d", c, x, y, mode, len(outputs)))
	return f.commitErr
}

func (f *fakeServer) SetPrimary(o Output) error {
	f.ops = append(f.ops, fmt.Sprintf("primary %d", o))
	return nil
}

func (f *fakeServer) SetCanvasSize(w, h uint16, wmm, hmm uint32) error {
	f.ops = append(f.ops, fmt.Sprintf("canvas %dx%d %dmmx%dmm", w, h, wmm, hmm))
	return nil
}

func (f *fakeServer) Grab() error {
	f.ops = append(f.ops, "grab")
	return nil
}

func (f *fakeServer) Ungrab() error {
	f.ops = append(f.ops, "ungrab")
	return nil
}

func (f *fakeServer) Sync() {
	f.ops = append(f.ops, "sync")
}

// Mode catalog shared by the fixtures.
const (
	modeSmall  Mode = 100 // 1366x768
	modeFull   Mode = 101 // 1920x1080
	modeWide   Mode = 102 // 1600x900
	modeSquare Mode = 103 // 1280x1024
)

// Output ids shared by the fixtures.
const (
	outPanel Output = 10 // LVDS1, active on crtc 1 at 1366x768
	outDP    Output = 11 // DP1, active on crtc 2 at 1920x1080
	outHDMI  Output = 12 // HDMI1, active on crtc 3 at 1600x900
	outVGA   Output = 13 // VGA1, connected but inactive
)

// newFakeServer builds a laptop-with-dock fixture: three outputs already
// driven by controllers 1..3, one idle output, and controller 4 free.
func newFakeServer() *fakeServer {
	return &fakeServer{
		snap: Snapshot{
			Controllers: []Controller{1, 2, 3, 4},
			Outputs:     []Output{outPanel, outDP, outHDMI, outVGA},
			Modes: []ModeInfo{
				{ID: modeSmall, Width: 1366, Height: 768},
				{ID: modeFull, Width: 1920, Height: 1080},
				{ID: modeWide, Width: 1600, Height: 900},
				{ID: modeSquare, Width: 1280, Height: 1024},
			},
		},
		outputs: map[Output]OutputInfo{
			outPanel: {
				Name: "LVDS1", Connected: true, Controller: 1,
				Modes: []Mode{modeSmall}, NumPreferred: 1,
				WidthMM: 310, HeightMM: 174,
			},
			outDP: {
				Name: "DP1", Connected: true, Controller: 2,
				Modes: []Mode{modeFull, modeWide, modeSmall}, NumPreferred: 1,
				WidthMM: 527, HeightMM: 296,
			},
			outHDMI: {
				Name: "HDMI1", Connected: true, Controller: 3,
				Modes: []Mode{modeWide, modeSmall}, NumPreferred: 2,
				WidthMM: 443, HeightMM: 249,
			},
			outVGA: {
				Name: "VGA1", Connected: true, Controller: NoController,
				Modes: []Mode{modeSquare, modeSmall}, NumPreferred: 1,
				WidthMM: 376, HeightMM: 301,
			},
		},
		ctrls: map[Controller]ControllerInfo{
			1: {X: 0, Y: 0, Width: 1366, Height: 768, Mode: modeSmall},
			2: {X: 0, Y: 0, Width: 1920, Height: 1080, Mode: modeFull},
			3: {X: 0, Y: 0, Width: 1600, Height: 900, Mode: modeWide},
			4: {},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPool() (*Pool, *fakeServer) {
	srv := newFakeServer()
	return NewPool(srv, testLogger()), srv
}

// monitorByOutput finds the arena monitor wrapping the given output id.
func monitorByOutput(p *Pool, o Output) *Monitor {
	for _, m := range p.Monitors() {
		if m.Output() == o {
			return m
		}
	}
	return nil
}
