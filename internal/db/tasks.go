package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Jyothi2828/TaskManagementApp/internal/models"
)

const taskColumns = "id, title, description, completed, created_at, modified_at, completed_at, readded_at"

func scanTask(scanner interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	var completed int
	var createdStr string
	var modified, completedAt, readded sql.NullString
	if err := scanner.Scan(&t.ID, &t.Title, &t.Description, &completed, &createdStr, &modified, &completedAt, &readded); err != nil {
		return models.Task{}, err
	}
	t.Completed = completed != 0

	var err error
	t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return models.Task{}, fmt.Errorf("parse created_at: %w", err)
	}
	if t.ModifiedAt, err = parseNullTime(modified); err != nil {
		return models.Task{}, fmt.Errorf("parse modified_at: %w", err)
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return models.Task{}, fmt.Errorf("parse completed_at: %w", err)
	}
	if t.ReaddedAt, err = parseNullTime(readded); err != nil {
		return models.Task{}, fmt.Errorf("parse readded_at: %w", err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

// GetAllTasks returns every task ordered by its durable position
func (db *DB) GetAllTasks() ([]models.Task, error) {
	rows, err := db.Query("SELECT " + taskColumns + " FROM tasks ORDER BY position, created_at")
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by ID, returning nil when it is absent
func (db *DB) GetTask(id string) (*models.Task, error) {
	row := db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

// AddTask inserts a new task at the end of the ordering. It fails if the
// id is already present; callers are expected to have checked first.
func (db *DB) AddTask(t models.Task) error {
	_, err := db.Exec(`
		INSERT INTO tasks (id, title, description, completed, position, created_at, modified_at, completed_at, readded_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks), ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.Completed,
		t.CreatedAt.Format(time.RFC3339Nano),
		formatNullTime(t.ModifiedAt), formatNullTime(t.CompletedAt), formatNullTime(t.ReaddedAt))
	if err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return nil
}

// PutTask upserts a task by id, keeping its position when it already exists
func (db *DB) PutTask(t models.Task) error {
	_, err := db.Exec(`
		INSERT INTO tasks (id, title, description, completed, position, created_at, modified_at, completed_at, readded_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks), ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			completed = excluded.completed,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at,
			completed_at = excluded.completed_at,
			readded_at = excluded.readded_at
	`, t.ID, t.Title, t.Description, t.Completed,
		t.CreatedAt.Format(time.RFC3339Nano),
		formatNullTime(t.ModifiedAt), formatNullTime(t.CompletedAt), formatNullTime(t.ReaddedAt))
	if err != nil {
		return fmt.Errorf("put task %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(id string) error {
	_, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// UpdatePositions rewrites the durable ordering to match ids
func (db *DB) UpdatePositions(ids []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin positions update: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.Exec("UPDATE tasks SET position = ? WHERE id = ?", i+1, id); err != nil {
			return fmt.Errorf("update position of %s: %w", id, err)
		}
	}
	return tx.Commit()
}
