package main

import (
	"encoding/csv"
	"fmt"
	"os"
)

// resultColumns are appended after the roster's own columns.
var resultColumns = []string{"Risk Score", "Classification", "Data Type", "Status"}

// StreamWriter appends one output row per classified item. Every append is
// flushed and fsynced before returning, so the output file is complete up to
// the last finished item at any point during a run.
type StreamWriter struct {
	file *os.File
	csv  *csv.Writer
}

// NewStreamWriter creates (or truncates) the output file and writes the
// header row: the roster header plus the result columns.
func NewStreamWriter(path string, rosterHeader []string) (*StreamWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w := &StreamWriter{file: file, csv: csv.NewWriter(file)}
	header := append(append([]string{}, rosterHeader...), resultColumns...)
	if err := w.writeRow(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// Append writes the record's row: the original roster cells followed by the
// result cells. A failure here is fatal to the run; the caller must stop.
func (w *StreamWriter) Append(item InputItem, rec OutputRecord) error {
	row := append(append([]string{}, item.Row...),
		rec.ScoreCell(), rec.Level, rec.DataTypesCell(), string(rec.Status))
	if err := w.writeRow(row); err != nil {
		return fmt.Errorf("append record %d (%s): %w", item.Index, item.Identifier, err)
	}
	return nil
}

func (w *StreamWriter) writeRow(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *StreamWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
