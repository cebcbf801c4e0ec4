package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/tango/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		query TEXT NOT NULL,
		top_k INTEGER NOT NULL,
		document_count INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

	CREATE TABLE IF NOT EXISTS run_documents (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		doc_id INTEGER NOT NULL,
		title TEXT,
		body TEXT,
		PRIMARY KEY (run_id, position)
	);

	CREATE TABLE IF NOT EXISTS run_vocabulary (
		run_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		term TEXT NOT NULL,
		frequency INTEGER NOT NULL,
		posts TEXT NOT NULL,
		PRIMARY KEY (run_id, rank)
	);

	CREATE TABLE IF NOT EXISTS run_scores (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		term TEXT NOT NULL,
		score REAL NOT NULL,
		found INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun inserts a run and its rows in one transaction.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *models.Run) error {
	if run.Analysis == nil {
		return models.NewInvalidInputError("analysis", "run has no analysis")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	a := run.Analysis

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, query, top_k, document_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, a.Query, a.TopK, a.DocumentCount, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := execBatch(ctx, tx,
		`INSERT INTO run_documents (run_id, position, doc_id, title, body) VALUES (?, ?, ?, ?, ?)`,
		len(run.Documents), func(i int) []interface{} {
			d := run.Documents[i]
			return []interface{}{run.ID, i, d.ID, d.Title, d.Body}
		}); err != nil {
		return fmt.Errorf("failed to insert documents: %w", err)
	}
	if err := execBatch(ctx, tx,
		`INSERT INTO run_vocabulary (run_id, rank, term, frequency, posts) VALUES (?, ?, ?, ?, ?)`,
		len(a.Vocabulary), func(i int) []interface{} {
			v := a.Vocabulary[i]
			return []interface{}{run.ID, i, v.Term, v.Frequency, v.PostsJoined()}
		}); err != nil {
		return fmt.Errorf("failed to insert vocabulary: %w", err)
	}
	if err := execBatch(ctx, tx,
		`INSERT INTO run_scores (run_id, position, term, score, found) VALUES (?, ?, ?, ?, ?)`,
		len(a.Scores), func(i int) []interface{} {
			r := a.Scores[i]
			return []interface{}{run.ID, i, r.Term, r.Score, r.Found}
		}); err != nil {
		return fmt.Errorf("failed to insert scores: %w", err)
	}
	return tx.Commit()
}

func execBatch(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []interface{}) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// GetRun returns a run by ID with its documents and analysis.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*models.Run, error) {
	run := models.Run{Analysis: &models.Analysis{
		Vocabulary: []models.VocabularyRow{},
		Scores:     []models.QueryResult{},
	}}
	a := run.Analysis
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, query, top_k, document_count, created_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Source, &a.Query, &a.TopK, &a.DocumentCount, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, title, body FROM run_documents WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Body); err != nil {
			rows.Close()
			return nil, err
		}
		run.Documents = append(run.Documents, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT term, frequency, posts FROM run_vocabulary WHERE run_id = ? ORDER BY rank`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var v models.VocabularyRow
		var posts string
		if err := rows.Scan(&v.Term, &v.Frequency, &posts); err != nil {
			rows.Close()
			return nil, err
		}
		if v.Posts, err = models.ParsePostingList(posts); err != nil {
			rows.Close()
			return nil, fmt.Errorf("run %s term %q: %w", id, v.Term, err)
		}
		a.Vocabulary = append(a.Vocabulary, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT term, score, found FROM run_scores WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r models.QueryResult
		if err := rows.Scan(&r.Term, &r.Score, &r.Found); err != nil {
			return nil, err
		}
		a.Scores = append(a.Scores, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns run summaries newest first. A limit <= 0 returns all runs after offset.
func (s *SQLiteStorage) ListRuns(ctx context.Context, offset, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, query, top_k, document_count, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []models.RunSummary{}
	for rows.Next() {
		var r models.RunSummary
		if err := rows.Scan(&r.ID, &r.Source, &r.Query, &r.TopK, &r.DocumentCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and all of its rows.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	for _, table := range []string{"run_documents", "run_vocabulary", "run_scores"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountRuns returns the total number of stored runs.
func (s *SQLiteStorage) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}

// Size returns the on-disk size of the database.
func (s *SQLiteStorage) Size() (int64, error) {
	return DatabaseSize(s.path)
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
