package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dori/taskmate/internal/model"
	"github.com/dori/taskmate/internal/query"
)

const taskColumns = `id, user_id, title, description, completed, priority, due_date,
	archived, project, project_id, created_at, updated_at`

// FindTasks returns the tasks matching scope and p, ordered by orderBy
// (an ORDER BY clause from query.SortKey). Subtasks and tags are loaded
// after the task rows are closed.
func (db *DB) FindTasks(ctx context.Context, scope query.Scope, p query.Predicate, orderBy string) ([]model.Task, error) {
	where, args, err := scope.Where(p)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY `+orderBy, args...)
	if err != nil {
		return nil, err
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	if err := loadChildren(ctx, db.DB, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindTask returns a single task by ID, or nil if the scope owns no such task
func (db *DB) FindTask(ctx context.Context, scope query.Scope, id string) (*model.Task, error) {
	return findTask(ctx, db.DB, scope, id)
}

func findTask(ctx context.Context, q execer, scope query.Scope, id string) (*model.Task, error) {
	match, err := scope.ByID(id)
	if err != nil {
		return nil, err
	}
	where, args := query.Compile(match)

	t, err := scanTaskRow(q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE `+where, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tasks := []model.Task{*t}
	if err := loadChildren(ctx, q, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// InsertTask stores a new task with its subtasks and tags. The task's
// timestamps are truncated to the stored millisecond precision.
func (db *DB) InsertTask(ctx context.Context, t *model.Task) error {
	if t.UserID == "" {
		return query.ErrUnscoped
	}
	t.CreatedAt = stamp(t.CreatedAt)
	t.UpdatedAt = stamp(t.UpdatedAt)

	return db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.UserID, t.Title, nullString(t.Description), t.Completed, string(t.Priority),
			nullMillis(t.DueDate), t.Archived, nullString(t.Project.Legacy), nullRef(t.Project.ID),
			toMillis(t.CreatedAt), toMillis(t.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		return writeChildren(ctx, tx, t)
	})
}

// UpdateTask overwrites the stored task that scope owns with the same ID.
// It reports false if there is no such task.
func (db *DB) UpdateTask(ctx context.Context, scope query.Scope, t *model.Task) (bool, error) {
	match, err := scope.ByID(t.ID)
	if err != nil {
		return false, err
	}
	where, whereArgs := query.Compile(match)
	t.UpdatedAt = stamp(t.UpdatedAt)

	found := false
	err = db.Transaction(ctx, func(tx *sql.Tx) error {
		args := []any{
			t.Title, nullString(t.Description), t.Completed, string(t.Priority),
			nullMillis(t.DueDate), t.Archived, nullString(t.Project.Legacy), nullRef(t.Project.ID),
			toMillis(t.UpdatedAt),
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ?,
			       due_date = ?, archived = ?, project = ?, project_id = ?, updated_at = ?
			WHERE `+where, append(args, whereArgs...)...)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		found = true
		return writeChildren(ctx, tx, t)
	})
	return found, err
}

// DeleteTask deletes the task that scope owns with the given ID. Subtasks and
// tags go with it through the foreign key cascade.
func (db *DB) DeleteTask(ctx context.Context, scope query.Scope, id string) (bool, error) {
	match, err := scope.ByID(id)
	if err != nil {
		return false, err
	}
	where, args := query.Compile(match)

	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE `+where, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Helper functions

type scanner interface {
	Scan(dest ...any) error
}

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTaskRow(s scanner) (*model.Task, error) {
	var t model.Task
	var description, project, projectID *string
	var priority string
	var dueDate sql.NullInt64
	var completed, archived int
	var createdAt, updatedAt int64

	err := s.Scan(
		&t.ID, &t.UserID, &t.Title, &description, &completed, &priority, &dueDate,
		&archived, &project, &projectID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		t.Description = *description
	}
	t.Completed = completed == 1
	t.Archived = archived == 1
	t.Priority = model.Priority(priority)
	if dueDate.Valid {
		d := fromMillis(dueDate.Int64)
		t.DueDate = &d
	}
	t.Project.ID = projectID
	if project != nil {
		t.Project.Legacy = *project
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	t.Subtasks = []model.Subtask{}
	t.Tags = []string{}

	return &t, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func stamp(t time.Time) time.Time {
	return fromMillis(toMillis(t))
}

func nullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toMillis(*t)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullRef(id *string) any {
	if id == nil {
		return nil
	}
	return *id
}
