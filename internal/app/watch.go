package app

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/jobskills/internal/config"
	"github.com/blackwell-systems/jobskills/internal/materialize"
	"github.com/blackwell-systems/jobskills/internal/output"
	"github.com/blackwell-systems/jobskills/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Rebuild summaries when the source CSV files change",
		Long: `Watch the data directory and rebuild every summary table whenever one of
the source CSV files is created, written, renamed or removed.

Bursts of changes, such as a download replacing all three files, are
coalesced into a single rebuild once the directory has been quiet for the
debounce period (watch.debounce in the config, default 2s). Cached query
results are discarded after each rebuild.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as background process
  • Stop: Stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  jobskills watch --data-dir ./data

  # Run as background daemon
  jobskills watch --daemon --data-dir ./data

  # Stop running daemon
  jobskills watch --stop

  # Use custom PID and log files
  jobskills watch --daemon --pid-file /tmp/watch.pid --log-file /tmp/watch.log`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.jobskills/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.jobskills/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}
	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		return stopWatchDaemon(cmd)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Source.Kind != config.SourceCSV {
		return errors.New("watch requires the csv source (--source csv)")
	}

	if watchDaemon {
		return startWatchDaemon(cmd)
	}

	ctx := cmd.Context()
	sess, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	// build anything missing before waiting for changes
	if err := sess.mat.Ensure(ctx); err != nil {
		sess.log.WithError(err).Warn("initial materialization failed")
	}

	opts := []watcher.Option{
		watcher.WithDebounce(sess.cfg.Watch.Debounce),
		watcher.WithLogger(sess.log),
	}
	if !watchDaemonChild {
		out := cmd.OutOrStdout()
		opts = append(opts, watcher.OnRun(func(res *materialize.Result, err error) {
			if err != nil {
				fmt.Fprintf(out, "✗ Rebuild failed: %v\n", err)
				return
			}
			fmt.Fprintf(out, "✓ Rebuilt %d summaries (run %s)\n", len(res.Runs), res.RunID)
		}))
	}

	w, err := watcher.New(sess.cfg.Source.DataDir, sess.mat, opts...)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchDaemonChild {
		// stdout/stderr are redirected to the log file
		return w.RunDaemon(watchPIDFile)
	}
	return runWatchForeground(cmd, w)
}

func stopWatchDaemon(cmd *cobra.Command) error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon")
	spinner.SetWriter(cmd.ErrOrStderr())
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")
	return nil
}

func startWatchDaemon(cmd *cobra.Command) error {
	spinner := output.NewSpinner("Starting daemon")
	spinner.SetWriter(cmd.ErrOrStderr())
	spinner.Start()
	if err := watcher.StartDaemon(watchPIDFile, watchLogFile, daemonChildArgs(cmd)); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching for source changes in the background\n")
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: jobskills watch --stop\n")
	return nil
}

// daemonChildArgs rebuilds the command line for the daemon child, forwarding
// every flag the user set except the mode switches.
func daemonChildArgs(cmd *cobra.Command) []string {
	args := []string{"watch", "--daemon-child", "--pid-file", watchPIDFile}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "daemon", "daemon-child", "stop", "pid-file", "log-file":
			return
		}
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return args
}

func runWatchForeground(cmd *cobra.Command, w *watcher.Watcher) error {
	out := cmd.OutOrStdout()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	fmt.Fprintln(out, "Watching source files (press Ctrl+C to stop)...")

	var sig os.Signal
	select {
	case sig = <-sigCh:
	case <-cmd.Context().Done():
	}
	if sig != nil {
		fmt.Fprintf(out, "\nReceived signal %v, shutting down...\n", sig)
	}

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	fmt.Fprintln(out, "Watcher stopped")
	return nil
}
