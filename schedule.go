package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// RunScheduled re-runs the pipeline on a cron schedule, writing each run to
// a timestamp-suffixed output file so earlier results are never overwritten.
// The schedule is a standard 5-field cron expression (minute hour
// day-of-month month day-of-week). Returns when the context is cancelled.
func RunScheduled(ctx context.Context, cfg Config, schema ClassificationSchema, db *sql.DB, inputPath, outputPath, column string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(cfg.Schedule)
	if err != nil {
		return fmt.Errorf("invalid schedule '%s': %w", cfg.Schedule, err)
	}

	log.Printf("scheduled mode (cron: %s) input=%s", cfg.Schedule, inputPath)

	for {
		now := time.Now()
		next := sched.Next(now)
		log.Printf("next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), next.Sub(now).Round(time.Minute))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(next.Sub(now)):
		}

		runOutput := timestampedPath(outputPath, time.Now())
		summary, err := RunPipeline(ctx, cfg, schema, db, inputPath, runOutput, column)
		if err != nil {
			// A fatal run error in scheduled mode stops the scheduler:
			// the next run would hit the same setup or write problem.
			return err
		}
		log.Print(FormatRunSummary(summary))
		NotifyRunComplete(cfg, summary, runOutput)
	}
}

func timestampedPath(path string, t time.Time) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s-%s%s", stem, t.Format("20060102-150405"), ext)
}
