package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// ReadRoster loads the whole input roster up front: the header row, the
// index of the identifier column, and the data rows. Reading everything
// first means a malformed roster fails the run before any model call.
func ReadRoster(path, column string) ([]string, int, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("open input file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, 0, nil, fmt.Errorf("read input csv: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, nil, fmt.Errorf("input file %s has no header row", path)
	}

	header := records[0]
	colIdx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(column)) {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return nil, 0, nil, fmt.Errorf("column %q not found in %s; available: %s", column, path, strings.Join(header, ", "))
	}

	return header, colIdx, records[1:], nil
}

// RunPipeline classifies every roster row in order and streams each result
// to the output file. Per-row failures become record statuses; only setup
// and output-write failures abort the run. An interrupt is honored between
// items, after the in-flight record is written.
func RunPipeline(ctx context.Context, cfg Config, schema ClassificationSchema, db *sql.DB, inputPath, outputPath, column string) (RunSummary, error) {
	header, colIdx, rows, err := ReadRoster(inputPath, column)
	if err != nil {
		return RunSummary{}, err
	}

	httpClient := newModelHTTPClient(cfg)
	if len(rows) > 0 {
		if err := pingEndpoint(ctx, cfg, httpClient); err != nil {
			return RunSummary{}, err
		}
	}

	writer, err := NewStreamWriter(outputPath, header)
	if err != nil {
		return RunSummary{}, err
	}
	defer writer.Close()

	log.Printf("run start provider=%s items=%d input=%s output=%s", cfg.LLMProvider, len(rows), inputPath, outputPath)

	summary := RunSummary{StartedAt: time.Now()}

	var runID int64
	if db != nil {
		runID, err = InsertRun(db, cfg, inputPath, outputPath)
		if err != nil {
			log.Printf("run history disabled: %v", err)
			db = nil
		}
	}

	bar := newProgressBar(cfg, len(rows))

	for i, row := range rows {
		if ctx.Err() != nil {
			log.Printf("interrupted after %d of %d items", i, len(rows))
			break
		}

		item := InputItem{Index: i, Identifier: strings.TrimSpace(row[colIdx]), Row: row}
		rec := ProcessItem(ctx, cfg, httpClient, schema, item)

		if err := writer.Append(item, rec); err != nil {
			return summary, err
		}
		summary.count(rec.Status)

		if db != nil {
			if err := InsertClassification(db, runID, rec); err != nil {
				log.Printf("run history insert failed identifier=%q: %v", rec.Identifier, err)
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	summary.FinishedAt = time.Now()
	if db != nil {
		if err := FinishRun(db, runID, summary); err != nil {
			log.Printf("run history update failed: %v", err)
		}
	}

	return summary, nil
}

// newProgressBar returns nil when a bar would be noise: verbose mode logs
// every reply, and non-terminal output would capture control characters.
func newProgressBar(cfg Config, total int) *progressbar.ProgressBar {
	if cfg.Verbose || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.Default(int64(total), "classifying")
}
