package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Repository persists tasks and contacts in a local sqlite file. The two
// collection columns hold JSON documents; reads run them through the
// alias-aware normalizers, so rows written by older schema generations
// (string arrays, name/text titles, completed/isDone flags) load cleanly.
type Repository struct {
	db *sql.DB
}

// Open opens or creates the database file and applies migrations.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database for tests and dev mode.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'medium',
			status TEXT NOT NULL DEFAULT 'todo',
			due_at TEXT,
			subtasks_json TEXT NOT NULL DEFAULT '[]',
			assigned_json TEXT NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// ListTasks returns every stored task in creation order.
func (r *Repository) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, category, priority, status, due_at,
		       subtasks_json, assigned_json, created_by, created_at, updated_at
		FROM tasks
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a new task row.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	subtasksJSON, assignedJSON, err := encodeCollections(t)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks(id, title, description, category, priority, status, due_at,
			subtasks_json, assigned_json, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.Title, t.Description, t.Category, string(t.Priority), string(t.Status),
		nullableTS(t.DueAt), subtasksJSON, assignedJSON, t.CreatedBy, ts(t.CreatedAt), ts(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// SaveTask rewrites an existing task row.
func (r *Repository) SaveTask(ctx context.Context, t domain.Task) error {
	subtasksJSON, assignedJSON, err := encodeCollections(t)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, category = ?, priority = ?, status = ?, due_at = ?,
		    subtasks_json = ?, assigned_json = ?, updated_at = ?
		WHERE id = ?
	`,
		t.Title, t.Description, t.Category, string(t.Priority), string(t.Status),
		nullableTS(t.DueAt), subtasksJSON, assignedJSON, ts(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return translateNoRows(res)
}

// DeleteTask removes a task row by id.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return translateNoRows(res)
}

// ListContacts returns the contact directory ordered by name.
func (r *Repository) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, color, created_at, updated_at
		FROM contacts
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		var contact domain.Contact
		var createdRaw, updatedRaw string
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Email, &contact.Color, &createdRaw, &updatedRaw); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contact.CreatedAt = parseTS(createdRaw)
		contact.UpdatedAt = parseTS(updatedRaw)
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// SaveContact upserts one contact row. The TUI only reads the directory;
// this exists for seeding and for the import command.
func (r *Repository) SaveContact(ctx context.Context, c domain.Contact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts(id, name, email, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email,
			color = excluded.color, updated_at = excluded.updated_at
	`, c.ID, c.Name, c.Email, c.Color, ts(c.CreatedAt), ts(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save contact: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (domain.Task, error) {
	var task domain.Task
	var priorityRaw, statusRaw, subtasksRaw, assignedRaw, createdRaw, updatedRaw string
	var dueRaw sql.NullString
	if err := s.Scan(
		&task.ID, &task.Title, &task.Description, &task.Category, &priorityRaw, &statusRaw,
		&dueRaw, &subtasksRaw, &assignedRaw, &task.CreatedBy, &createdRaw, &updatedRaw,
	); err != nil {
		return domain.Task{}, fmt.Errorf("scan task: %w", err)
	}
	task.Priority = domain.ClassifyPriority(priorityRaw)
	task.Status = domain.ParseStatus(statusRaw)
	task.DueAt = parseNullTS(dueRaw)
	task.Subtasks = decodeSubtasks(subtasksRaw)
	task.Assigned = decodeAssignees(assignedRaw)
	task.CreatedAt = parseTS(createdRaw)
	task.UpdatedAt = parseTS(updatedRaw)
	return task, nil
}

// decodeSubtasks tolerates every historical column shape.
func decodeSubtasks(raw string) []domain.Subtask {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return []domain.Subtask{}
	}
	return domain.NormalizeSubtasks(value)
}

func decodeAssignees(raw string) []domain.Assignee {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return []domain.Assignee{}
	}
	return domain.NormalizeAssignees(value)
}

func encodeCollections(t domain.Task) (subtasksJSON, assignedJSON string, err error) {
	subtasks, err := json.Marshal(domain.EncodeSubtasks(t.Subtasks))
	if err != nil {
		return "", "", fmt.Errorf("encode subtasks: %w", err)
	}
	assigned, err := json.Marshal(domain.EncodeAssignees(t.Assigned))
	if err != nil {
		return "", "", fmt.Errorf("encode assignees: %w", err)
	}
	return string(subtasks), string(assigned), nil
}

func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
