package namestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/DeusData/pathminer/internal/obfuscate"
)

// Run is one extraction run.
type Run struct {
	ID        string
	StartedAt string
	Config    string
}

// Entry is one placeholder of one method.
type Entry struct {
	RunID         string
	File          string
	MethodOrdinal int
	Method        string
	Placeholder   string
	Original      string
}

// BeginRun records a new run and makes it the target of SaveNames.
func (s *Store) BeginRun(ctx context.Context, config string) (string, error) {
	id := uuid.NewString()
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, config) VALUES (?, ?, ?)",
		id, Now(), config)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	s.run = id
	return id, nil
}

// RunID returns the active run, or "" before BeginRun.
func (s *Store) RunID() string {
	return s.run
}

// SaveNames stores the name map of file under the active run, replacing
// whatever the run held for that file.
func (s *Store) SaveNames(ctx context.Context, file string, names obfuscate.NameMap) error {
	if s.run == "" {
		return ErrNoRun
	}
	ordinals := make([]int, 0, len(names))
	for ord := range names {
		ordinals = append(ordinals, ord)
	}
	sort.Ints(ordinals)

	return s.WithTransaction(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx,
			"DELETE FROM name_maps WHERE run_id=? AND file=?", s.run, file); err != nil {
			return fmt.Errorf("clear names: %w", err)
		}
		for _, ord := range ordinals {
			m := names[ord]
			if m == nil {
				continue
			}
			for placeholder, original := range m.Placeholders {
				if _, err := tx.q.ExecContext(ctx, `
					INSERT INTO name_maps (run_id, file, method_ordinal, method, placeholder, original)
					VALUES (?, ?, ?, ?, ?, ?)`,
					s.run, file, ord, m.Name, placeholder, original); err != nil {
					return fmt.Errorf("insert name %s/%d/%s: %w", file, ord, placeholder, err)
				}
			}
		}
		return nil
	})
}

// Runs lists every run, newest first.
func (s *Store) Runs(ctx context.Context) ([]*Run, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id, started_at, config FROM runs ORDER BY started_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Config); err != nil {
			return nil, err
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

// LatestRunFor returns the newest run that stored names for file.
func (s *Store) LatestRunFor(ctx context.Context, file string) (string, error) {
	var id string
	err := s.q.QueryRowContext(ctx, `
		SELECT r.id FROM runs r
		JOIN name_maps n ON n.run_id = r.id
		WHERE n.file = ?
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT 1`, file).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// Lookup returns the entries of file in runID ordered by method and
// placeholder. An empty runID selects the newest run holding file.
func (s *Store) Lookup(ctx context.Context, runID, file string) ([]Entry, error) {
	if runID == "" {
		id, err := s.LatestRunFor(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("latest run: %w", err)
		}
		if id == "" {
			return nil, nil
		}
		runID = id
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT run_id, file, method_ordinal, method, placeholder, original
		FROM name_maps WHERE run_id=? AND file=?
		ORDER BY method_ordinal, placeholder`, runID, file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.File, &e.MethodOrdinal, &e.Method, &e.Placeholder, &e.Original); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// NameMap rebuilds the in-memory rename table from entries.
func NameMap(entries []Entry) obfuscate.NameMap {
	out := obfuscate.NameMap{}
	for _, e := range entries {
		m, ok := out[e.MethodOrdinal]
		if !ok {
			m = &obfuscate.MethodNames{Name: e.Method, Placeholders: map[string]string{}}
			out[e.MethodOrdinal] = m
		}
		m.Placeholders[e.Placeholder] = e.Original
	}
	return out
}
