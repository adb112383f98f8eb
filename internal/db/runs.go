package db

import "fmt"

// RecordImport stores the summary of one language import
func (d *DB) RecordImport(run ImportRun) error {
	_, err := d.conn.Exec(`
		INSERT OR REPLACE INTO imports (run_id, lang, nodes, edges, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Lang, run.Nodes, run.Edges, run.StartedAt, run.DurationMs)
	if err != nil {
		return fmt.Errorf("recording import of %s: %w", run.Lang, err)
	}
	return nil
}

// ImportRuns returns recorded imports, most recent first
func (d *DB) ImportRuns() ([]ImportRun, error) {
	rows, err := d.conn.Query(`
		SELECT run_id, lang, nodes, edges, started_at, duration_ms
		FROM imports ORDER BY started_at DESC, lang
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var r ImportRun
		if err := rows.Scan(&r.RunID, &r.Lang, &r.Nodes, &r.Edges, &r.StartedAt, &r.DurationMs); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
