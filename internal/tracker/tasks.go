package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/dori/taskmate/internal/model"
	"github.com/dori/taskmate/internal/query"
	"github.com/google/uuid"
)

// TaskInput carries the writable task fields. On update, nil fields and blank
// strings keep the stored value. ProjectID is the exception: a non-nil blank
// value detaches the task from its project.
type TaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	DueDate     *time.Time
	Archived    *bool
	Subtasks    []model.Subtask
	Tags        []string
	Project     *string
	ProjectID   *string
}

// GetTask returns the caller's task with the given id.
func (s *Service) GetTask(ctx context.Context, caller, id string) (*model.Task, error) {
	scope, err := query.Owner(caller)
	if err != nil {
		return nil, err
	}
	t, err := s.store.FindTask(ctx, scope, id)
	if err != nil {
		return nil, dataAccess("get task", err)
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// CreateTask stores a new task owned by the caller.
func (s *Service) CreateTask(ctx context.Context, caller string, in TaskInput) (*model.Task, error) {
	scope, err := query.Owner(caller)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(deref(in.Title))
	if title == "" {
		return nil, invalid("title", "title is required")
	}

	now := s.now()
	t := &model.Task{
		ID:          uuid.New().String(),
		UserID:      scope.UserID(),
		Title:       title,
		Description: deref(in.Description),
		Priority:    model.PriorityMedium,
		DueDate:     in.DueDate,
		Subtasks:    []model.Subtask{},
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.applyInput(ctx, scope, t, in); err != nil {
		return nil, err
	}

	if err := s.store.InsertTask(ctx, t); err != nil {
		return nil, dataAccess("create task", err)
	}
	return t, nil
}

// UpdateTask applies in to the caller's task with the given id.
func (s *Service) UpdateTask(ctx context.Context, caller, id string, in TaskInput) (*model.Task, error) {
	t, err := s.GetTask(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	scope := query.MustOwner(caller)

	if title := strings.TrimSpace(deref(in.Title)); title != "" {
		t.Title = title
	}
	if d := deref(in.Description); d != "" {
		t.Description = d
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if err := s.applyInput(ctx, scope, t, in); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now()

	found, err := s.store.UpdateTask(ctx, scope, t)
	if err != nil {
		return nil, dataAccess("update task", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return t, nil
}

// DeleteTask removes the caller's task with the given id.
func (s *Service) DeleteTask(ctx context.Context, caller, id string) error {
	scope, err := query.Owner(caller)
	if err != nil {
		return err
	}
	found, err := s.store.DeleteTask(ctx, scope, id)
	if err != nil {
		return dataAccess("delete task", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// applyInput validates and copies the fields shared by create and update.
func (s *Service) applyInput(ctx context.Context, scope query.Scope, t *model.Task, in TaskInput) error {
	if p := deref(in.Priority); p != "" {
		priority := model.Priority(p)
		if !priority.Valid() {
			return invalid("priority", "priority must be one of High, Medium, Low")
		}
		t.Priority = priority
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if in.Archived != nil {
		t.Archived = *in.Archived
	}
	if in.Subtasks != nil {
		for _, st := range in.Subtasks {
			if strings.TrimSpace(st.Title) == "" {
				return invalid("subtasks", "subtask title is required")
			}
		}
		t.Subtasks = in.Subtasks
	}
	if in.Tags != nil {
		t.Tags = compactTags(in.Tags)
	}
	if name := deref(in.Project); name != "" {
		t.Project.Legacy = name
	}
	if in.ProjectID != nil {
		if *in.ProjectID == "" {
			t.Project.ID = nil
			return nil
		}
		p, err := s.store.FindProject(ctx, scope, *in.ProjectID)
		if err != nil {
			return dataAccess("look up project", err)
		}
		if p == nil {
			return invalid("projectId", "project not found")
		}
		id := p.ID
		t.Project.ID = &id
	}
	return nil
}

func compactTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
