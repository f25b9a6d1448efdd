package watcher

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Notifier delivers alerts as desktop notifications, falling back to a
// plain line on W when the platform has no notifier.
type Notifier struct {
	W io.Writer
	// Desktop enables osascript / notify-send delivery.
	Desktop bool
}

// Notify sends one alert.
func (n Notifier) Notify(alert Alert) error {
	if n.Desktop {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			script := fmt.Sprintf(`display notification %q with title "deltalens" subtitle %q`, alert.Message, alert.Title)
			cmd = exec.Command("osascript", "-e", script)
		case "linux":
			if _, err := exec.LookPath("notify-send"); err == nil {
				cmd = exec.Command("notify-send", "deltalens: "+alert.Title, alert.Message)
			}
		}
		if cmd != nil && cmd.Run() == nil {
			return nil
		}
	}
	_, err := fmt.Fprintln(n.W, FormatAlert(alert))
	return err
}

// FormatAlert renders an alert as one log line.
func FormatAlert(a Alert) string {
	return fmt.Sprintf("%s [%s] %s: %s", a.Time.Format("15:04:05"), a.Level, a.Title, a.Message)
}
