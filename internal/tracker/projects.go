package tracker

import (
	"context"
	"strings"

	"github.com/dori/taskmate/internal/model"
	"github.com/dori/taskmate/internal/query"
	"github.com/google/uuid"
)

// ProjectInput carries the writable project fields. On update, nil fields and
// blank strings keep the stored value.
type ProjectInput struct {
	Name        *string
	Description *string
	Color       *string
}

// ListProjects returns the caller's projects, newest first.
func (s *Service) ListProjects(ctx context.Context, caller string) ([]model.Project, error) {
	scope, err := query.Owner(caller)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.FindProjects(ctx, scope)
	if err != nil {
		return nil, dataAccess("list projects", err)
	}
	return projects, nil
}

// GetProject returns the caller's project with the given id.
func (s *Service) GetProject(ctx context.Context, caller, id string) (*model.Project, error) {
	scope, err := query.Owner(caller)
	if err != nil {
		return nil, err
	}
	p, err := s.store.FindProject(ctx, scope, id)
	if err != nil {
		return nil, dataAccess("get project", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// CreateProject stores a new project owned by the caller.
func (s *Service) CreateProject(ctx context.Context, caller string, in ProjectInput) (*model.Project, error) {
	scope, err := query.Owner(caller)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(deref(in.Name))
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	color := strings.TrimSpace(deref(in.Color))
	if color == "" {
		color = model.DefaultProjectColor
	}

	now := s.now()
	p := &model.Project{
		ID:          uuid.New().String(),
		UserID:      scope.UserID(),
		Name:        name,
		Description: deref(in.Description),
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertProject(ctx, p); err != nil {
		return nil, dataAccess("create project", err)
	}
	return p, nil
}

// UpdateProject applies in to the caller's project with the given id.
func (s *Service) UpdateProject(ctx context.Context, caller, id string, in ProjectInput) (*model.Project, error) {
	p, err := s.GetProject(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(deref(in.Name)); name != "" {
		p.Name = name
	}
	if d := deref(in.Description); d != "" {
		p.Description = d
	}
	if c := strings.TrimSpace(deref(in.Color)); c != "" {
		p.Color = c
	}
	p.UpdatedAt = s.now()

	found, err := s.store.UpdateProject(ctx, query.MustOwner(caller), p)
	if err != nil {
		return nil, dataAccess("update project", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return p, nil
}

// DeleteProject removes the caller's project and detaches it from every task
// that references it by id. The tasks are kept, and tasks naming the project
// only through their legacy project text are left as they are. Both steps
// commit together or not at all.
func (s *Service) DeleteProject(ctx context.Context, caller, id string) error {
	scope, err := query.Owner(caller)
	if err != nil {
		return err
	}
	found, err := s.store.DeleteProject(ctx, scope, id)
	if err != nil {
		return dataAccess("delete project", err)
	}
	if !found {
		return ErrNotFound
	}
	s.log.Debug("project deleted", "project_id", id, "user_id", caller)
	return nil
}
