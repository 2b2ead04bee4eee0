package power

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	logindService  = "org.freedesktop.login1"
	logindPath     = dbus.ObjectPath("/org/freedesktop/login1")
	logindSuspend  = "org.freedesktop.login1.Manager.Suspend"
	logindCanSleep = "org.freedesktop.login1.Manager.CanSuspend"
)

// Logind suspends the machine through systemd-logind on the system bus.
type Logind struct {
	conn *dbus.Conn
}

var _ Backend = (*Logind)(nil)

// NewLogind connects to the system bus.
func NewLogind() (*Logind, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to system bus: %w", err)
	}
	return &Logind{conn: conn}, nil
}

// Suspend asks logind to suspend, allowing interactive authorization.
func (l *Logind) Suspend(ctx context.Context) error {
	obj := l.conn.Object(logindService, logindPath)
	if call := obj.CallWithContext(ctx, logindSuspend, 0, true); call.Err != nil {
		return fmt.Errorf("calling suspend on logind: %w", call.Err)
	}
	return nil
}

// CanSuspend reports whether logind is willing to suspend at all.
func (l *Logind) CanSuspend(ctx context.Context) (bool, error) {
	obj := l.conn.Object(logindService, logindPath)
	var answer string
	if err := obj.CallWithContext(ctx, logindCanSleep, 0).Store(&answer); err != nil {
		return false, fmt.Errorf("querying logind: %w", err)
	}
	return answer == "yes" || answer == "challenge", nil
}
