package export

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/llegregam/isoplot/internal/isodata"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS observations (
	run_id TEXT NOT NULL REFERENCES runs(id),
	metabolite TEXT NOT NULL,
	condition TEXT NOT NULL,
	time INTEGER NOT NULL,
	isotopologue INTEGER NOT NULL,
	number_rep INTEGER NOT NULL,
	sample TEXT NOT NULL,
	condition_order REAL,
	area REAL,
	corrected_area REAL,
	corrected_area_mean REAL,
	corrected_area_sd REAL,
	isotopologue_fraction REAL,
	isotopologue_fraction_mean REAL,
	isotopologue_fraction_sd REAL,
	mean_enrichment REAL,
	mean_enrichment_mean REAL,
	mean_enrichment_sd REAL,
	PRIMARY KEY (run_id, metabolite, condition, time, number_rep, isotopologue)
);
`

// WriteSQLite appends the final table of one run to the database at path.
// Existing rows of the same run id are replaced.
func WriteSQLite(path, runID, name string, rows []isodata.FinalRow) error {
	if runID == "" {
		return fmt.Errorf("sqlite export needs a run id")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM observations WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear run: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO runs (id, name, created_at) VALUES (?, ?, ?)`,
		runID, name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO observations (
			run_id, metabolite, condition, time, isotopologue, number_rep, sample,
			condition_order, area,
			corrected_area, corrected_area_mean, corrected_area_sd,
			isotopologue_fraction, isotopologue_fraction_mean, isotopologue_fraction_sd,
			mean_enrichment, mean_enrichment_mean, mean_enrichment_sd
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare observation statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err := stmt.Exec(
			runID, r.Metabolite, r.Condition, r.Time, r.Isotopologue, r.NumberRep, r.Sample,
			r.ConditionOrder, r.Area,
			r.Value.CorrectedArea, r.Mean.CorrectedArea, r.SD.CorrectedArea,
			r.Value.IsotopologueFraction, r.Mean.IsotopologueFraction, r.SD.IsotopologueFraction,
			r.Value.MeanEnrichment, r.Mean.MeanEnrichment, r.SD.MeanEnrichment,
		)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
