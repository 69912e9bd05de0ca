package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dori/taskmate/internal/model"
)

// childBatch bounds the number of ids bound into one IN (...) list.
const childBatch = 500

// loadChildren fills Subtasks and Tags for tasks. It must be called after the
// rows that produced tasks are closed: with a single connection, a query
// issued while rows are open blocks forever.
func loadChildren(ctx context.Context, q execer, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	index := make(map[string]int, len(tasks))
	ids := make([]any, 0, len(tasks))
	for i := range tasks {
		index[tasks[i].ID] = i
		ids = append(ids, tasks[i].ID)
	}

	for start := 0; start < len(ids); start += childBatch {
		end := min(start+childBatch, len(ids))
		batch := ids[start:end]
		in := placeholders(len(batch))

		if err := loadSubtasks(ctx, q, tasks, index, in, batch); err != nil {
			return err
		}
		if err := loadTags(ctx, q, tasks, index, in, batch); err != nil {
			return err
		}
	}
	return nil
}

func loadSubtasks(ctx context.Context, q execer, tasks []model.Task, index map[string]int, in string, ids []any) error {
	rows, err := q.QueryContext(ctx, `
		SELECT task_id, title, completed FROM subtasks
		WHERE task_id IN (`+in+`)
		ORDER BY task_id, position
	`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var taskID string
		var s model.Subtask
		var completed int
		if err := rows.Scan(&taskID, &s.Title, &completed); err != nil {
			return err
		}
		s.Completed = completed == 1
		i := index[taskID]
		tasks[i].Subtasks = append(tasks[i].Subtasks, s)
	}
	return rows.Err()
}

func loadTags(ctx context.Context, q execer, tasks []model.Task, index map[string]int, in string, ids []any) error {
	rows, err := q.QueryContext(ctx, `
		SELECT task_id, tag FROM task_tags
		WHERE task_id IN (`+in+`)
		ORDER BY task_id, position
	`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, tag string
		if err := rows.Scan(&taskID, &tag); err != nil {
			return err
		}
		i := index[taskID]
		tasks[i].Tags = append(tasks[i].Tags, tag)
	}
	return rows.Err()
}

// writeChildren replaces the subtasks and tags stored for t.
func writeChildren(ctx context.Context, tx *sql.Tx, t *model.Task) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = ?`, t.ID); err != nil {
		return err
	}
	for pos, s := range t.Subtasks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO subtasks (task_id, position, title, completed) VALUES (?, ?, ?, ?)`,
			t.ID, pos, s.Title, s.Completed)
		if err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, t.ID); err != nil {
		return err
	}
	for pos, tag := range t.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO task_tags (task_id, position, tag) VALUES (?, ?, ?)`,
			t.ID, pos, tag)
		if err != nil {
			return err
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
