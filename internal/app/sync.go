package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/deltalens/internal/config"
	"github.com/blackwell-systems/deltalens/internal/output"
	"github.com/blackwell-systems/deltalens/internal/sheet"
	"github.com/blackwell-systems/deltalens/internal/watcher"
)

var (
	syncFlagWatch    bool
	syncFlagInterval time.Duration
	syncFlagDaemon   bool
	syncFlagStop     bool
	syncFlagQuiet    bool
	syncFlagNotify   bool
)

// minSyncInterval keeps watch mode from hammering the sheet server.
const minSyncInterval = 30 * time.Second

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the local change cache",
	Long: `Sync fetches changes newer than the cached maximum version and appends
them to the SQLite cache, so later commands only download what is new.
With --watch it keeps polling and prints an alert whenever new changes land.

Examples:
  deltalens sync
  deltalens sync --watch --interval 2m
  deltalens sync --watch --daemon          # write PID file, log to file
  deltalens sync --stop                    # stop the background daemon`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFlagWatch, "watch", false, "Keep polling for new changes")
	syncCmd.Flags().DurationVar(&syncFlagInterval, "interval", config.DefaultSyncInterval, "Poll interval for --watch")
	syncCmd.Flags().BoolVar(&syncFlagDaemon, "daemon", false, "With --watch, write a PID file and log to a file")
	syncCmd.Flags().BoolVar(&syncFlagStop, "stop", false, "Stop a running background daemon")
	syncCmd.Flags().BoolVar(&syncFlagQuiet, "quiet", false, "Suppress terminal output")
	syncCmd.Flags().BoolVar(&syncFlagNotify, "notify", false, "Also send desktop notifications")
	rootCmd.AddCommand(syncCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "sync.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "sync.log")
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncFlagStop {
		return stopDaemon(cmd.OutOrStdout())
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Cache.Enabled {
		return fmt.Errorf("%w; set cache.enabled: true", sheet.ErrNoCache)
	}

	log := newLogger()
	loader, cache, err := openLoader(cfg, log)
	if err != nil {
		return err
	}
	defer cache.Close()

	out := cmd.OutOrStdout()
	if !syncFlagWatch {
		added, ver, err := loader.Refresh(cmd.Context(), "sync")
		if err != nil {
			return err
		}
		if flagJSON {
			fmt.Fprintf(out, "{\"added\": %d, \"version\": %d}\n", added, ver)
			return nil
		}
		fmt.Fprintf(out, "%s Added %d changes; cache at version %d\n", output.StyleSuccess.Render("✓"), added, ver)
		return nil
	}

	if syncFlagInterval < minSyncInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minSyncInterval, syncFlagInterval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	if syncFlagDaemon {
		return runDaemon(ctx, loader, syncFlagInterval)
	}

	if !syncFlagQuiet {
		fmt.Fprintf(out, "deltalens syncing... (polling every %s)\n", syncFlagInterval)
	}
	notifier := watcher.Notifier{W: out, Desktop: syncFlagNotify}
	alertFn := func(a watcher.Alert) {
		if syncFlagQuiet {
			if syncFlagNotify {
				_ = watcher.Notifier{W: io.Discard, Desktop: true}.Notify(a)
			}
			return
		}
		_ = notifier.Notify(a)
	}

	err = watcher.New(loader, syncFlagInterval, alertFn).WithLogger(log).Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !syncFlagQuiet {
			fmt.Fprintln(out, "\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon runs the watcher in the foreground with a PID file and a log
// file. Start it under nohup or a service manager to detach it.
func runDaemon(ctx context.Context, source watcher.Refresher, interval time.Duration) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	writeLog(logFile, "deltalens sync daemon started (PID %d, interval %s)", pid, interval)
	notifier := watcher.Notifier{W: logFile, Desktop: syncFlagNotify}
	err = watcher.New(source, interval, func(a watcher.Alert) { _ = notifier.Notify(a) }).Run(ctx)
	if errors.Is(err, context.Canceled) {
		writeLog(logFile, "daemon stopped")
		return nil
	}
	return err
}

// stopDaemon stops the daemon named in the PID file, cleaning up a stale
// file left by a crashed one.
func stopDaemon(w io.Writer) error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no sync daemon running (could not read PID file: %v)", err)
	}
	if !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("no sync daemon running (PID %d is not active, removed stale PID file)", pid)
	}
	if err := terminate(pid); err != nil {
		return fmt.Errorf("stopping daemon (PID %d): %w", pid, err)
	}
	fmt.Fprintf(w, "Stopped sync daemon (PID %d)\n", pid)
	return nil
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// writeLog writes a timestamped line to the log file.
func writeLog(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(w, "[%s] %s\n", timestamp, msg)
}
