package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docvault-io/docvault/internal/jobs"
	"github.com/docvault-io/docvault/internal/pdf"
	"github.com/docvault-io/docvault/internal/telemetry"
	"github.com/spf13/cobra"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a directory and ingest dropped PDF files",
		Long:  "Poll a drop directory and ingest every new PDF file that appears in it. Runs until interrupted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0], interval)
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "Poll interval (default from DOCVAULT_WATCH_INTERVAL)")

	return cmd
}

func runWatch(dir string, interval time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", dir)
	}

	a, err := newApp(ctx, pdf.NewExtractor())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireOpenAI(); err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:   a.cfg.SentryDSN,
		Debug: a.cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without reporting): %v", err)
	} else {
		defer shutdownTelemetry()
	}

	if interval <= 0 {
		interval = a.cfg.WatchInterval
	}

	watcher := jobs.NewDirectoryWatcher(dir, a.ingest)
	worker := jobs.NewWorker(watcher, interval)
	go worker.Start(ctx)

	log.Printf("watching %s every %v, press Ctrl+C to stop", dir, interval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	worker.Stop()
	return nil
}
