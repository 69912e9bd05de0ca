package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dori/taskmate/internal/model"
	"github.com/dori/taskmate/internal/query"
)

// FindProjects returns the projects scope owns, newest first, with the
// number of non-archived tasks referencing each by id.
func (db *DB) FindProjects(ctx context.Context, scope query.Scope) ([]model.Project, error) {
	where, args, err := scope.Where(query.True())
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.name, p.description, p.color, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM tasks t
		        WHERE t.project_id = p.id AND t.user_id = p.user_id AND t.archived = 0) AS task_count,
		       (SELECT COUNT(*) FROM tasks t
		        WHERE t.project_id = p.id AND t.user_id = p.user_id AND t.archived = 0 AND t.completed = 1) AS completed_count
		FROM projects p
		WHERE `+where+`
		ORDER BY p.created_at DESC, p.rowid ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows, &sql.NullInt64{}, &sql.NullInt64{})
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}

	return projects, rows.Err()
}

// FindProject returns a single project by ID, or nil if scope owns no such project
func (db *DB) FindProject(ctx context.Context, scope query.Scope, id string) (*model.Project, error) {
	match, err := scope.ByID(id)
	if err != nil {
		return nil, err
	}
	where, args := query.Compile(match)

	p, err := scanProject(db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, color, created_at, updated_at
		FROM projects WHERE `+where, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// InsertProject stores a new project
func (db *DB) InsertProject(ctx context.Context, p *model.Project) error {
	if p.UserID == "" {
		return query.ErrUnscoped
	}
	p.CreatedAt = stamp(p.CreatedAt)
	p.UpdatedAt = stamp(p.UpdatedAt)

	_, err := db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.Name, nullString(p.Description), p.Color,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// UpdateProject overwrites the name, description and color of the project
// scope owns with the same ID. It reports false if there is no such project.
func (db *DB) UpdateProject(ctx context.Context, scope query.Scope, p *model.Project) (bool, error) {
	match, err := scope.ByID(p.ID)
	if err != nil {
		return false, err
	}
	where, whereArgs := query.Compile(match)
	p.UpdatedAt = stamp(p.UpdatedAt)

	args := []any{p.Name, nullString(p.Description), p.Color, toMillis(p.UpdatedAt)}
	res, err := db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE `+where, append(args, whereArgs...)...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteProject deletes the project scope owns with the given ID and detaches
// it from the owner's tasks, in one transaction. Tasks themselves are kept and
// their legacy project names are not touched. It reports false, without
// touching any task, if there is no such project.
func (db *DB) DeleteProject(ctx context.Context, scope query.Scope, id string) (bool, error) {
	match, err := scope.ByID(id)
	if err != nil {
		return false, err
	}
	where, args := query.Compile(match)

	found := false
	err = db.Transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE `+where, args...)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		found = true

		if _, err := detachProject(ctx, tx, scope, id); err != nil {
			return fmt.Errorf("failed to detach project from tasks: %w", err)
		}
		return nil
	})
	return found, err
}

// detachProject clears project_id on every task scope owns that references
// the project by id.
func detachProject(ctx context.Context, q execer, scope query.Scope, projectID string) (int64, error) {
	where, args, err := scope.Where(query.Eq(query.FieldProjectID, projectID))
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `UPDATE tasks SET project_id = NULL WHERE `+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReconcileOrphans clears project_id on tasks whose project no longer exists
// for the same owner, and returns how many tasks were repaired. It is a
// maintenance pass over all users.
func (db *DB) ReconcileOrphans(ctx context.Context) (int64, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE tasks SET project_id = NULL
		WHERE project_id IS NOT NULL
		  AND NOT EXISTS (
		      SELECT 1 FROM projects p
		      WHERE p.id = tasks.project_id AND p.user_id = tasks.user_id
		  )
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanProject(s scanner, counts ...*sql.NullInt64) (*model.Project, error) {
	var p model.Project
	var description *string
	var createdAt, updatedAt int64

	dest := []any{&p.ID, &p.UserID, &p.Name, &description, &p.Color, &createdAt, &updatedAt}
	for _, c := range counts {
		dest = append(dest, c)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	if description != nil {
		p.Description = *description
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	if len(counts) == 2 {
		p.TaskCount = int(counts[0].Int64)
		p.CompletedCount = int(counts[1].Int64)
	}

	return &p, nil
}
