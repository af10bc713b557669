// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps a local SQLite history of completed searches and
// fetched records. Saved searches are the previous id lists that change
// detection diffs against. The store is never read in place of a network
// request.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/litter-getter/pkg/types"
)

// DefaultPath is the database file used when StoreConfig.Path is empty.
const DefaultPath = "litter-getter.db"

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no snapshot or record matches.
var ErrNotFound = errors.New("not found")

// Store manages the snapshot database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// Open opens or creates the database at cfg.Path and creates the schema
// if it does not exist.
func Open(cfg types.StoreConfig, log zerolog.Logger) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:  db,
		log: log.With().Str("component", "store").Str("path", path).Logger(),
		now: time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			term TEXT NOT NULL,
			total_count INTEGER NOT NULL,
			request_count INTEGER NOT NULL,
			page_size INTEGER NOT NULL,
			taken_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_term ON searches(term, taken_at)`,
		`CREATE TABLE IF NOT EXISTS search_ids (
			search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			pmid TEXT NOT NULL,
			PRIMARY KEY (search_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			pmid TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT,
			citation TEXT,
			source TEXT,
			authors TEXT,
			authors_short TEXT,
			year INTEGER,
			doi TEXT,
			abstract TEXT,
			xml TEXT,
			updated_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveSearch records a completed search and its ids in server order.
func (s *Store) SaveSearch(ctx context.Context, res *types.SearchResult) (*types.SearchSnapshot, error) {
	if res == nil {
		return nil, errors.New("saving search: nil result")
	}

	snap := &types.SearchSnapshot{
		ID:           uuid.NewString(),
		TakenAt:      s.now().UTC(),
		SearchResult: *res,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO searches (id, term, total_count, request_count, page_size, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, res.Term, res.TotalCount, res.RequestCount, res.PageSize, snap.TakenAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting search: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO search_ids (search_id, position, pmid) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range res.IDs {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, id); err != nil {
			return nil, fmt.Errorf("inserting id %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing search: %w", err)
	}

	s.log.Debug().Str("snapshot", snap.ID).Str("term", res.Term).Int("ids", len(res.IDs)).Msg("search saved")
	return snap, nil
}

// LatestSearch returns the most recent snapshot for term, or ErrNotFound.
func (s *Store) LatestSearch(ctx context.Context, term string) (*types.SearchSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, term, total_count, request_count, page_size, taken_at
		 FROM searches WHERE term = ?
		 ORDER BY taken_at DESC, rowid DESC LIMIT 1`, term)
	return s.loadSnapshot(ctx, row)
}

// Search returns the snapshot with the given id, or ErrNotFound.
func (s *Store) Search(ctx context.Context, id string) (*types.SearchSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, term, total_count, request_count, page_size, taken_at
		 FROM searches WHERE id = ?`, id)
	return s.loadSnapshot(ctx, row)
}

// Searches lists snapshot headers, newest first. IDs are not loaded.
func (s *Store) Searches(ctx context.Context, limit int) ([]types.SearchSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, total_count, request_count, page_size, taken_at
		 FROM searches ORDER BY taken_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer rows.Close()

	var out []types.SearchSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*types.SearchSnapshot, error) {
	var (
		snap    types.SearchSnapshot
		takenAt string
	)
	err := row.Scan(&snap.ID, &snap.Term, &snap.TotalCount, &snap.RequestCount, &snap.PageSize, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading search: %w", err)
	}
	if snap.TakenAt, err = time.Parse(timeLayout, takenAt); err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", takenAt, err)
	}
	return &snap, nil
}

func (s *Store) loadSnapshot(ctx context.Context, row *sql.Row) (*types.SearchSnapshot, error) {
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pmid FROM search_ids WHERE search_id = ? ORDER BY position`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("querying ids: %w", err)
	}
	defer rows.Close()

	snap.IDs = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		snap.IDs = append(snap.IDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids: %w", err)
	}
	return snap, nil
}

// SaveRecords upserts records by PMID and returns how many were written.
func (s *Store) SaveRecords(ctx context.Context, records []types.CitationRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (pmid, type, title, citation, source, authors, authors_short, year, doi, abstract, xml, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pmid) DO UPDATE SET
			type=excluded.type, title=excluded.title, citation=excluded.citation, source=excluded.source,
			authors=excluded.authors, authors_short=excluded.authors_short,
			year=excluded.year, doi=excluded.doi, abstract=excluded.abstract,
			xml=excluded.xml, updated_at=excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.now().UTC().Format(timeLayout)
	for _, r := range records {
		authorsJSON, err := json.Marshal(r.AuthorsList)
		if err != nil {
			return 0, fmt.Errorf("encoding authors for %s: %w", r.PMID, err)
		}
		_, err = stmt.ExecContext(ctx,
			r.PMID, string(r.Type), r.Title, r.Citation, r.Source, string(authorsJSON),
			r.AuthorsShort, r.Year, r.DOI, r.Abstract, r.XML, updatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("upserting record %s: %w", r.PMID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing records: %w", err)
	}

	s.log.Debug().Int("records", len(records)).Msg("records saved")
	return len(records), nil
}

// Record returns the stored record for pmid, or ErrNotFound.
func (s *Store) Record(ctx context.Context, pmid string) (*types.CitationRecord, error) {
	var (
		r       types.CitationRecord
		typ     string
		authors string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT pmid, type, title, citation, source, authors, authors_short, year, doi, abstract, xml
		 FROM records WHERE pmid = ?`, pmid,
	).Scan(&r.PMID, &typ, &r.Title, &r.Citation, &r.Source, &authors, &r.AuthorsShort, &r.Year, &r.DOI, &r.Abstract, &r.XML)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", pmid, err)
	}

	r.Type = types.DocumentType(typ)
	if err := json.Unmarshal([]byte(authors), &r.AuthorsList); err != nil {
		return nil, fmt.Errorf("decoding authors for %s: %w", pmid, err)
	}
	return &r, nil
}
