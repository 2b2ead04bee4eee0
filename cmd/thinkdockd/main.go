package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcan1s/libthinkpad/internal/config"
	"github.com/arcan1s/libthinkpad/internal/daemon"
	"github.com/arcan1s/libthinkpad/internal/display"
	"github.com/arcan1s/libthinkpad/internal/dock"
	"github.com/arcan1s/libthinkpad/internal/power"
	"github.com/arcan1s/libthinkpad/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var err error
	switch os.Args[1] {
	case "apply":
		err = runApply(os.Args[2:], logger)
	case "outputs":
		err = runOutputs(os.Args[2:], logger)
	case "watch":
		err = runWatch(os.Args[2:], logger)
	case "suspend":
		err = runSuspend(os.Args[2:], logger)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: thinkdockd <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  apply     apply the configured monitor topology once")
	fmt.Fprintln(w, "  outputs   list outputs, modes and connection state")
	fmt.Fprintln(w, "  watch     watch the dock and reapply the topology on change")
	fmt.Fprintln(w, "  suspend   request a suspend (dock-gated for lid events)")
}

func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "path to layout config (default ~/.config/thinkdockd/config.yaml)")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func runApply(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	cfgPath := configFlag(fs)
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	conn, err := x11.NewConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	return applyTopology(conn, cfg, true, logger)
}

func runOutputs(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("outputs", flag.ExitOnError)
	fs.Parse(args)

	conn, err := x11.NewConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	pool := display.NewPool(conn, logger)
	for _, m := range pool.Monitors() {
		state := "disconnected"
		if m.IsConnected() {
			state = "connected"
		}
		fmt.Printf("%s\t%s", m.Name(), state)
		if !m.IsOff() {
			pos := m.Position()
			fmt.Printf("\tactive at %d,%d", pos.X, pos.Y)
		}
		fmt.Println()
		for _, info := range pool.Modes() {
			if !m.IsOutputModeSupported(info.ID) {
				continue
			}
			marker := ""
			if info.ID == m.PreferredOutputMode() {
				marker = " (preferred)"
			}
			fmt.Printf("\t%dx%d%s\n", info.Width, info.Height, marker)
		}
	}
	return nil
}

func runWatch(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfgPath := configFlag(fs)
	interval := fs.Duration("interval", 2*time.Second, "dock poll interval")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	sensor := dock.NewSensor()
	if !sensor.Probe() {
		logger.Warn("no recognized dock present, watching anyway")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	reapply := func(docked bool) {
		conn, err := x11.NewConnection()
		if err != nil {
			logger.Error("cannot connect to X server", "error", err)
			return
		}
		defer conn.Close()

		if err := applyTopology(conn, cfg, docked, logger); err != nil {
			logger.Error("failed to apply topology", "docked", docked, "error", err)
		}
	}

	// Bring the layout in line with the current state before watching.
	reapply(sensor.Docked())

	watcher := daemon.NewWatcher(daemon.WatcherConfig{
		Interval: *interval,
		Logger:   logger,
	}, sensor, reapply)

	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runSuspend(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("suspend", flag.ExitOnError)
	reasonName := fs.String("reason", "button", "suspend reason: button or lid")
	fs.Parse(args)

	var reason power.Reason
	switch *reasonName {
	case "button":
		reason = power.ReasonButton
	case "lid":
		reason = power.ReasonLid
	default:
		return fmt.Errorf("invalid suspend reason %q", *reasonName)
	}

	backend, err := power.NewLogind()
	if err != nil {
		return err
	}

	manager := power.NewManager(backend, dock.NewSensor(), logger)
	suspended, err := manager.RequestSuspend(context.Background(), reason)
	if err != nil {
		return err
	}
	if !suspended {
		logger.Info("suspend request suppressed", "reason", reason.String())
	}
	return nil
}
