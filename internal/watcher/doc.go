// Package watcher re-materializes the summaries when the source CSV files
// change.
//
// The Watcher subscribes to filesystem events on the data directory and
// reacts only to the three source files. Bursts of events (an editor
// saving, a download landing in chunks) are debounced into a single
// forced re-materialization, which also purges the read cache.
//
// Example usage:
//
//	m := materialize.New(dataset.NewCSVProvider(dir), st)
//	w, err := watcher.New(dir, m)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//
// Daemon mode re-executes the binary with the given arguments; the child
// calls RunDaemon, which blocks until SIGTERM:
//
//	err := watcher.StartDaemon(pidFile, logFile, []string{"watch", "--daemon-child"})
package watcher
