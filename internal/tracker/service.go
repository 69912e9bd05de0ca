// Package tracker implements the task and project operations exposed to
// authenticated callers. Every operation is scoped to the caller's user id.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/dori/taskmate/internal/model"
	"github.com/dori/taskmate/internal/query"
)

// Store is the persistence the tracker runs on. *db.DB implements it.
type Store interface {
	FindTasks(ctx context.Context, scope query.Scope, p query.Predicate, orderBy string) ([]model.Task, error)
	FindTask(ctx context.Context, scope query.Scope, id string) (*model.Task, error)
	InsertTask(ctx context.Context, t *model.Task) error
	UpdateTask(ctx context.Context, scope query.Scope, t *model.Task) (bool, error)
	DeleteTask(ctx context.Context, scope query.Scope, id string) (bool, error)

	FindProjects(ctx context.Context, scope query.Scope) ([]model.Project, error)
	FindProject(ctx context.Context, scope query.Scope, id string) (*model.Project, error)
	InsertProject(ctx context.Context, p *model.Project) error
	UpdateProject(ctx context.Context, scope query.Scope, p *model.Project) (bool, error)
	DeleteProject(ctx context.Context, scope query.Scope, id string) (bool, error)
	ReconcileOrphans(ctx context.Context) (int64, error)
}

// Service runs task and project operations against a Store.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates a Service.
func NewService(store Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// ListOptions selects and orders the tasks returned by ListTasks.
type ListOptions struct {
	Filter query.Filter
	Sort   query.SortKey
}

// ListTasks returns every task the caller owns that matches opts.Filter,
// ordered by opts.Sort. An unrecognised status imposes no constraint.
func (s *Service) ListTasks(ctx context.Context, caller string, opts ListOptions) ([]model.Task, error) {
	scope, err := query.Owner(caller)
	if err != nil {
		return nil, err
	}
	if opts.Filter.Status != query.StatusAny && !opts.Filter.Status.Known() {
		s.log.Debug("ignoring unknown status filter", "status", opts.Filter.Status)
	}

	sort := query.ParseSortKey(string(opts.Sort))
	tasks, err := s.store.FindTasks(ctx, scope, opts.Filter.Predicate(s.now()), sort.OrderBy())
	if err != nil {
		return nil, dataAccess("list tasks", err)
	}
	sort.Apply(tasks)
	return tasks, nil
}

// ReconcileOrphans clears project references left behind by projects that no
// longer exist. It is a maintenance pass over all users.
func (s *Service) ReconcileOrphans(ctx context.Context) (int64, error) {
	n, err := s.store.ReconcileOrphans(ctx)
	if err != nil {
		return 0, dataAccess("reconcile orphaned project references", err)
	}
	if n > 0 {
		s.log.Info("detached orphaned project references", "tasks", n)
	}
	return n, nil
}
