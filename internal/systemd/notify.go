// Package systemd integrates the daemon with the service manager. Every
// function is a no-op when the process runs outside a systemd unit.
package systemd

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/smazurov/lightkit/internal/logging"
)

// NotifyReady tells the service manager that startup has finished.
func NotifyReady() {
	notify(daemon.SdNotifyReady)
}

// NotifyStopping tells the service manager that shutdown has begun.
func NotifyStopping() {
	notify(daemon.SdNotifyStopping)
}

func notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.GetLogger("systemd").Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		logging.GetLogger("systemd").Debug("sd_notify sent", "state", state)
	}
}

// StartWatchdog feeds the systemd watchdog at half its configured interval.
// It returns a stop function, which is a no-op when no watchdog is set up.
func StartWatchdog() func() {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return func() {}
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
					logging.GetLogger("systemd").Warn("watchdog notify failed", "error", err)
				}
			}
		}
	}()

	logging.GetLogger("systemd").Info("watchdog keepalive started", "interval", interval)
	return func() { close(stop) }
}
