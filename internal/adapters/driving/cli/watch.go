package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dockeep/dockeep/internal/logger"
)

// inboxDir is wired in by the application alongside the services.
var inboxDir string

// settleDelay is how long a file must stay quiet before ingestion.
// Copies and downloads arrive as a burst of write events.
const settleDelay = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox folder and ingest arrivals",
	Long: `Watches the configured inbox directory. Files dropped there are
ingested into the library, processed, and removed from the inbox.
Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// SetInboxDir configures the directory watched by `dockeep watch`.
func SetInboxDir(dir string) {
	inboxDir = dir
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestor == nil {
		return errors.New("ingestion service not configured")
	}
	if inboxDir == "" {
		return errors.New("inbox directory not configured")
	}
	if err := os.MkdirAll(inboxDir, 0700); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(inboxDir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", inboxDir)

	// One timer per in-flight file, reset on every write event.
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	ingestFile := func(path string) {
		mu.Lock()
		delete(timers, path)
		mu.Unlock()

		if info, statErr := os.Stat(path); statErr != nil || info.IsDir() {
			return
		}

		record, ingestErr := ingestor.Ingest(ctx, path)
		if ingestErr != nil {
			logger.Warn("watch: ingest %s failed: %v", path, ingestErr)
			return
		}
		cmd.Printf("  %s -> %s\n", path, record.ID)

		if rmErr := os.Remove(path); rmErr != nil {
			logger.Warn("watch: remove %s failed: %v", path, rmErr)
		}

		if procErr := runProcessBatch(ctx, cmd); procErr != nil {
			logger.Warn("watch: %v", procErr)
		}
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, t := range timers {
				t.Stop()
			}
			mu.Unlock()
			cmd.Println("\nStopped watching.")
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			path := ev.Name
			mu.Lock()
			if t, exists := timers[path]; exists {
				t.Reset(settleDelay)
			} else {
				timers[path] = time.AfterFunc(settleDelay, func() { ingestFile(path) })
			}
			mu.Unlock()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", watchErr)
		}
	}
}
