// Package storage keeps the app's local state in a sqlite database: a
// key-value table for session data and preferences, and a tasks table that
// backs local-only mode.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"eisen/internal/task"
)

// ErrNotFound is returned for lookups that match nothing.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

var _ task.Backend = (*Store)(nil)

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due TEXT DEFAULT NULL,
	tag TEXT NOT NULL DEFAULT '',
	quadrant TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	focus_minutes INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns migrates databases created before a column existed.
func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"quadrant":      "ALTER TABLE tasks ADD COLUMN quadrant TEXT NOT NULL DEFAULT '';",
		"focus_minutes": "ALTER TABLE tasks ADD COLUMN focus_minutes INTEGER NOT NULL DEFAULT 0;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

// Get reads a kv entry. Missing keys return ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, key, value)
	return err
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?;`, key)
	return err
}

func (s *Store) ListTasks(ctx context.Context, filter task.DateFilter) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, due, tag, quadrant, completed, focus_minutes FROM tasks ORDER BY created_at, id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if !filter.On.IsZero() && !task.SameDay(filter.On, t.DueDate) {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) CreateTask(ctx context.Context, draft task.Draft) (*task.Task, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	// Local-mode ids are timestamp strings, interchangeable with the remote
	// API's opaque string ids.
	t := draft.Apply(task.Task{ID: now.Format(time.RFC3339Nano)})
	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks (id, title, description, due, tag, quadrant, completed, focus_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?);`,
		t.ID, t.Title, t.Description, t.DueDate.UTC().Format(time.RFC3339), t.Tag, string(t.Quadrant), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, draft task.Draft) (*task.Task, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, due = ?, tag = ?, quadrant = ? WHERE id = ?;`,
		draft.Title, draft.Description, draft.DueDate.UTC().Format(time.RFC3339), draft.Tag, string(draft.Quadrant), id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.getTask(ctx, id)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) (*task.Task, error) {
	val := 0
	if completed {
		val = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = ? WHERE id = ?;`, val, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.getTask(ctx, id)
}

func (s *Store) AddFocusMinutes(ctx context.Context, id string, minutes int) (*task.Task, error) {
	if minutes < 0 {
		return nil, errors.New("focus minutes must be non-negative")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET focus_minutes = focus_minutes + ? WHERE id = ?;`, minutes, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.getTask(ctx, id)
}

func (s *Store) getTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, description, due, tag, quadrant, completed, focus_minutes FROM tasks WHERE id = ?;`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var dueStr sql.NullString
	var quadrant string
	var completed int
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &dueStr, &t.Tag, &quadrant, &completed, &t.FocusMinutes); err != nil {
		return task.Task{}, err
	}
	t.Completed = completed == 1
	t.Quadrant, _ = task.ParseQuadrant(quadrant)
	if dueStr.Valid {
		if parsed, err := time.Parse(time.RFC3339, dueStr.String); err == nil {
			t.DueDate = parsed.Local()
		}
	}
	return t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
