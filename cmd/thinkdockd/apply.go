package main

import (
	"fmt"
	"log/slog"

	"github.com/arcan1s/libthinkpad/internal/config"
	"github.com/arcan1s/libthinkpad/internal/display"
)

// applyTopology builds a fresh pool generation from the server and commits
// the configured layout. When docked is false the wing monitors are
// disabled instead and the anchor is restored alone.
func applyTopology(srv display.Server, cfg *config.Config, docked bool, logger *slog.Logger) error {
	pool := display.NewPool(srv, logger)

	anchor := pool.MonitorByName(cfg.Anchor.Output)
	if anchor == nil {
		return fmt.Errorf("anchor output %q not found", cfg.Anchor.Output)
	}

	if !docked {
		return applyAnchorOnly(pool, anchor, cfg, logger)
	}

	if err := activate(pool, anchor, cfg.Anchor.Mode, logger); err != nil {
		return err
	}
	anchor.SetPrimary(cfg.Anchor.Primary)

	wings := []struct {
		name    string
		entries []config.Wing
		link    func(m *display.Monitor, id display.MonitorID) error
	}{
		{"left", cfg.Left, (*display.Monitor).SetLeftMonitor},
		{"right", cfg.Right, (*display.Monitor).SetRightMonitor},
		{"top", cfg.Top, (*display.Monitor).SetTopMonitor},
		{"bottom", cfg.Bottom, (*display.Monitor).SetBottomMonitor},
	}

	for _, wing := range wings {
		prev := anchor
		for _, entry := range wing.entries {
			m := pool.MonitorByName(entry.Output)
			if m == nil {
				logger.Warn("configured output not found", "output", entry.Output, "wing", wing.name)
				continue
			}
			if !m.IsConnected() {
				logger.Info("skipping disconnected output", "output", entry.Output, "wing", wing.name)
				continue
			}
			if err := activate(pool, m, entry.Mode, logger); err != nil {
				return err
			}
			if err := wing.link(prev, m.ID()); err != nil {
				return err
			}
			prev = m
		}
	}

	return anchor.Apply()
}

// applyAnchorOnly disables every configured wing monitor that is still
// driving a mode, then restores the anchor as the sole output.
func applyAnchorOnly(pool *display.Pool, anchor *display.Monitor, cfg *config.Config, logger *slog.Logger) error {
	for _, entries := range [][]config.Wing{cfg.Left, cfg.Right, cfg.Top, cfg.Bottom} {
		for _, entry := range entries {
			m := pool.MonitorByName(entry.Output)
			if m == nil || m.IsOff() {
				continue
			}
			logger.Info("disabling undocked output", "output", entry.Output)
			m.TurnOff()
			if err := m.Apply(); err != nil {
				return err
			}
			m.Release()
		}
	}

	if err := activate(pool, anchor, cfg.Anchor.Mode, logger); err != nil {
		return err
	}
	anchor.SetPrimary(cfg.Anchor.Primary)
	anchor.SetPosition(display.Point{X: 0, Y: 0})
	return anchor.Apply()
}

// activate makes sure the monitor holds a controller and drives the
// requested mode, falling back to the output's preferred mode when no mode
// string is configured or the configured one is unsupported.
func activate(pool *display.Pool, m *display.Monitor, modeStr string, logger *slog.Logger) error {
	if m.Controller() == display.NoController {
		if err := m.Reconfigure(); err != nil {
			return err
		}
	}

	mode := m.PreferredOutputMode()
	if modeStr != "" {
		width, height, err := config.ParseMode(modeStr)
		if err != nil {
			return err
		}
		if found := findMode(pool, m, width, height); found != display.NoMode {
			mode = found
		} else {
			logger.Warn("configured mode not supported, using preferred",
				"output", m.Name(), "mode", modeStr)
		}
	}
	if mode == display.NoMode {
		return fmt.Errorf("no usable mode for output %q", m.Name())
	}

	return m.SetOutputMode(mode)
}

// findMode resolves a WIDTHxHEIGHT request against the modes the output
// advertises, in catalog order.
func findMode(pool *display.Pool, m *display.Monitor, width, height uint16) display.Mode {
	for _, info := range pool.Modes() {
		if info.Width == width && info.Height == height && m.IsOutputModeSupported(info.ID) {
			return info.ID
		}
	}
	return display.NoMode
}
