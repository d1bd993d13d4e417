// Package genstore persists one flattened snapshot generation per module in
// SQLite, so the previous generation survives process restarts and the
// comparator can be re-run against stored rows. Only the diff-relevant shape
// is stored: per symbol its tag and canonical shallow key, with nesting
// recorded through the parent column.
package genstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"snapdiff/internal/engine/astdiff"
)

const sqliteDriverName = "sqlite"

type Store struct {
	db         *sql.DB
	projectKey string
}

func Open(path, projectKey string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("generation store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("generation store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create generation store directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open generation store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping generation store %q: %w", cleanPath, err)
	}
	if err := migrateSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	key := strings.TrimSpace(projectKey)
	if key == "" {
		key = "default"
	}
	return &Store{db: db, projectKey: key}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveGeneration replaces the stored generation of one module with the given
// snapshot.
func (s *Store) SaveGeneration(module, generationID string, snap astdiff.ScopeSnapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM symbols WHERE project_key = ? AND module = ?`, s.projectKey, module); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear module %q: %w", module, err)
	}

	insert, err := tx.Prepare(`INSERT INTO symbols (project_key, module, parent, name, tag, shallow_key)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	var walk func(parent string, scope astdiff.ScopeSnapshot) error
	walk = func(parent string, scope astdiff.ScopeSnapshot) error {
		for name, entry := range scope {
			if _, err := insert.Exec(s.projectKey, module, parent, name, entry.Tag(), entry.ShallowKey()); err != nil {
				return fmt.Errorf("insert symbol %s.%s: %w", parent, name, err)
			}
			if nested := entry.Nested(); nested != nil {
				if err := walk(parent+"."+name, nested); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(module, snap); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.Exec(`INSERT INTO generations (project_key, module, generation_id)
VALUES (?, ?, ?)
ON CONFLICT (project_key, module) DO UPDATE SET
  generation_id = excluded.generation_id,
  created_at_utc = CURRENT_TIMESTAMP`, s.projectKey, module, generationID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record generation %q: %w", generationID, err)
	}
	return tx.Commit()
}

// LoadGeneration reconstructs the stored snapshot of one module. Returns a
// nil snapshot and empty id when no generation is stored.
func (s *Store) LoadGeneration(module string) (astdiff.ScopeSnapshot, string, error) {
	var generationID string
	err := s.db.QueryRow(`SELECT generation_id FROM generations WHERE project_key = ? AND module = ?`,
		s.projectKey, module).Scan(&generationID)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load generation for %q: %w", module, err)
	}

	rows, err := s.db.Query(`SELECT parent, name, tag, shallow_key FROM symbols
WHERE project_key = ? AND module = ?`, s.projectKey, module)
	if err != nil {
		return nil, "", fmt.Errorf("load symbols for %q: %w", module, err)
	}
	defer rows.Close()

	scopes := map[string]astdiff.ScopeSnapshot{module: make(astdiff.ScopeSnapshot)}
	type placed struct {
		parent string
		name   string
		entry  *StoredSymbol
	}
	var all []placed
	for rows.Next() {
		var parent, name, tag, shallowKey string
		if err := rows.Scan(&parent, &name, &tag, &shallowKey); err != nil {
			return nil, "", fmt.Errorf("scan symbol row: %w", err)
		}
		entry := &StoredSymbol{SymbolTag: tag, Shallow: shallowKey}
		if tag == "class" {
			entry.Names = make(astdiff.ScopeSnapshot)
			scopes[parent+"."+name] = entry.Names
		}
		all = append(all, placed{parent: parent, name: name, entry: entry})
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate symbol rows: %w", err)
	}

	for _, p := range all {
		scope, ok := scopes[p.parent]
		if !ok {
			// Class row lost; rebuild from scratch rather than mis-attach.
			return nil, "", fmt.Errorf("orphaned symbol %s.%s in stored generation", p.parent, p.name)
		}
		scope[p.name] = p.entry
	}
	return scopes[module], generationID, nil
}

// DeleteModule drops the stored generation of a removed module.
func (s *Store) DeleteModule(module string) error {
	if _, err := s.db.Exec(`DELETE FROM symbols WHERE project_key = ? AND module = ?`, s.projectKey, module); err != nil {
		return fmt.Errorf("delete symbols for %q: %w", module, err)
	}
	if _, err := s.db.Exec(`DELETE FROM generations WHERE project_key = ? AND module = ?`, s.projectKey, module); err != nil {
		return fmt.Errorf("delete generation for %q: %w", module, err)
	}
	return nil
}

// Modules lists the modules with a stored generation.
func (s *Store) Modules() ([]string, error) {
	rows, err := s.db.Query(`SELECT module FROM generations WHERE project_key = ? ORDER BY module`, s.projectKey)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []string
	for rows.Next() {
		var module string
		if err := rows.Scan(&module); err != nil {
			return nil, fmt.Errorf("scan module row: %w", err)
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}

// StoredSymbol is a symbol snapshot reconstructed from persisted rows. The
// canonical shallow key carries all diff-relevant shape, so rows diff
// exactly like freshly built snapshots.
type StoredSymbol struct {
	SymbolTag string
	Shallow   string
	Names     astdiff.ScopeSnapshot
}

func (s *StoredSymbol) Tag() string { return s.SymbolTag }
func (s *StoredSymbol) ShallowKey() string { return s.Shallow }
func (s *StoredSymbol) Nested() astdiff.ScopeSnapshot { return s.Names }
