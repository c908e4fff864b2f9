// Package analyze loads the run's relations into a fresh in-memory SQLite
// database and runs the interactive SQL session.
package analyze

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/czk-tool/czk/internal/inventory"
	"github.com/czk-tool/czk/internal/report"
)

// LoadError reports a failed table ingestion. Analyze mode is useless without
// its tables, so callers treat this as fatal.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load analytical table %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Session owns the in-memory analytical database for one analyze run.
// Nothing is ever persisted, so an analyze session cannot touch on-disk
// state.
type Session struct {
	db *sql.DB
}

// Open creates a fresh in-memory database.
func Open() (*Session, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, &LoadError{Table: "(database)", Err: err}
	}
	// database/sql may open extra connections, each of which would see its
	// own empty :memory: database. Pin to one.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &LoadError{Table: "(database)", Err: err}
	}
	return &Session{db: db}, nil
}

// Close releases the session database.
func (s *Session) Close() error {
	return s.db.Close()
}

// LoadInventory creates and fills media_inventory. Loaded for every analyze
// run regardless of media selection.
func (s *Session) LoadInventory(entries []inventory.Entry) error {
	const table = "media_inventory"
	err := s.bulkInsert(table, `
		CREATE TABLE media_inventory (
			media_type TEXT NOT NULL,
			path TEXT NOT NULL,
			file_name TEXT NOT NULL,
			extension TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			modified_epoch INTEGER NOT NULL
		)`,
		`INSERT INTO media_inventory (media_type, path, file_name, extension, size_bytes, modified_epoch)
		VALUES (?, ?, ?, ?, ?, ?)`,
		len(entries),
		func(i int) []any {
			e := entries[i]
			return []any{e.MediaType, e.Path, e.FileName, e.Extension, e.SizeBytes, e.ModifiedEpoch}
		},
	)
	if err != nil {
		return &LoadError{Table: table, Err: err}
	}
	return nil
}

// LoadDuplicates creates duplicates_<media>, duplicates_<media>_json and
// duplicates_<media>_expanded for one selected media kind. Tables for
// unselected media are never created; a stale or absent table would mislead
// the analyst.
func (s *Session) LoadDuplicates(media string, rows []report.Row, items []report.ItemRow, expanded []report.ExpandedRow) error {
	base := "duplicates_" + media

	err := s.bulkInsert(base, fmt.Sprintf(`
		CREATE TABLE %s (
			"index" INTEGER NOT NULL,
			file_to_keep TEXT NOT NULL,
			files_to_remove TEXT NOT NULL,
			count INTEGER NOT NULL
		)`, base),
		fmt.Sprintf(`INSERT INTO %s ("index", file_to_keep, files_to_remove, count) VALUES (?, ?, ?, ?)`, base),
		len(rows),
		func(i int) []any {
			r := rows[i]
			return []any{r.Index, r.FileToKeep, removeListJSON(r.FilesToRemove), r.Count}
		},
	)
	if err != nil {
		return &LoadError{Table: base, Err: err}
	}

	jsonTable := base + "_json"
	err = s.bulkInsert(jsonTable, fmt.Sprintf(`
		CREATE TABLE %s (
			group_index INTEGER NOT NULL,
			item_index INTEGER NOT NULL,
			path TEXT NOT NULL,
			size_bytes INTEGER,
			modified_date INTEGER,
			raw_item_json TEXT NOT NULL,
			source_report TEXT NOT NULL
		)`, jsonTable),
		fmt.Sprintf(`INSERT INTO %s (group_index, item_index, path, size_bytes, modified_date, raw_item_json, source_report)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, jsonTable),
		len(items),
		func(i int) []any {
			it := items[i]
			return []any{it.GroupIndex, it.ItemIndex, it.Path, it.SizeBytes, it.ModifiedDate, it.RawItemJSON, it.SourceReport}
		},
	)
	if err != nil {
		return &LoadError{Table: jsonTable, Err: err}
	}

	expandedTable := base + "_expanded"
	err = s.bulkInsert(expandedTable, fmt.Sprintf(`
		CREATE TABLE %s (
			group_index INTEGER NOT NULL,
			file_to_keep TEXT NOT NULL,
			remove_path TEXT NOT NULL,
			remove_ordinal INTEGER NOT NULL,
			group_remove_count INTEGER NOT NULL
		)`, expandedTable),
		fmt.Sprintf(`INSERT INTO %s (group_index, file_to_keep, remove_path, remove_ordinal, group_remove_count)
		VALUES (?, ?, ?, ?, ?)`, expandedTable),
		len(expanded),
		func(i int) []any {
			e := expanded[i]
			return []any{e.GroupIndex, e.FileToKeep, e.RemovePath, e.RemoveOrdinal, e.GroupRemoveCount}
		},
	)
	if err != nil {
		return &LoadError{Table: expandedTable, Err: err}
	}
	return nil
}

// bulkInsert creates a table and fills it inside one transaction with a
// prepared statement.
func (s *Session) bulkInsert(table, createSQL, insertSQL string, n int, args func(int) []any) error {
	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(args(i)...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Tables lists the loaded table names.
func (s *Session) Tables() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func removeListJSON(paths []string) string {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return "[]"
	}
	return string(data)
}
