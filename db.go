package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the run-history database. The history is an audit trail of
// past model judgments; the CSV output store remains the source of truth for
// each run.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		input_path     TEXT NOT NULL,
		output_path    TEXT NOT NULL,
		llm_provider   TEXT NOT NULL,
		llm_model      TEXT NOT NULL,
		total          INTEGER NOT NULL DEFAULT 0,
		ok             INTEGER NOT NULL DEFAULT 0,
		parse_errors   INTEGER NOT NULL DEFAULT 0,
		request_errors INTEGER NOT NULL DEFAULT 0,
		started_at     DATETIME NOT NULL,
		finished_at    DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS classifications (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id        INTEGER NOT NULL,
		identifier    TEXT NOT NULL,
		risk_score    INTEGER NOT NULL,
		classification TEXT NOT NULL,
		data_types    TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL,
		raw_reply     TEXT NOT NULL DEFAULT '',
		classified_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_classifications_run ON classifications(run_id);
	CREATE INDEX IF NOT EXISTS idx_classifications_identifier ON classifications(identifier);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func InsertRun(db *sql.DB, cfg Config, inputPath, outputPath string) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO runs (input_path, output_path, llm_provider, llm_model, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		inputPath, outputPath, cfg.LLMProvider, resolvedModel(cfg), time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func InsertClassification(db *sql.DB, runID int64, rec OutputRecord) error {
	_, err := db.Exec(
		`INSERT INTO classifications (run_id, identifier, risk_score, classification, data_types, status, raw_reply)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Identifier, rec.Score, rec.Level, rec.DataTypesCell(), string(rec.Status), rec.RawReply,
	)
	return err
}

func FinishRun(db *sql.DB, runID int64, summary RunSummary) error {
	_, err := db.Exec(
		`UPDATE runs SET total = ?, ok = ?, parse_errors = ?, request_errors = ?, finished_at = ? WHERE id = ?`,
		summary.Total, summary.OK, summary.ParseErrors, summary.RequestErrors, time.Now().UTC(), runID,
	)
	return err
}

// RunHistory returns the most recent runs, newest first.
func RunHistory(db *sql.DB, limit int) ([]RunSummary, error) {
	rows, err := db.Query(
		`SELECT total, ok, parse_errors, request_errors, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var finished sql.NullTime
		if err := rows.Scan(&s.Total, &s.OK, &s.ParseErrors, &s.RequestErrors, &s.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			s.FinishedAt = finished.Time
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
