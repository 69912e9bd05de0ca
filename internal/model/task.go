package model

import (
	"encoding/json"
	"time"
)

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// UnrankedPriority is the rank of an absent or unrecognized priority.
const UnrankedPriority = 99

// Rank returns the sort rank of the priority: High sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return UnrankedPriority
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() != UnrankedPriority
}

// Subtask is a checklist item embedded in a task. It has no identity beyond
// its position in the parent's list.
type Subtask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ProjectRef links a task to a project. ID is the authoritative reference;
// Legacy is the free-text project name written by older clients and is kept
// untouched alongside it.
type ProjectRef struct {
	ID     *string
	Legacy string
}

// Task represents a todo item owned by a single user
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Archived    bool       `json:"archived"`
	Subtasks    []Subtask  `json:"subtasks"`
	Tags        []string   `json:"tags"`
	Project     ProjectRef `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsOverdue returns true if the task is open and past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed || t.Archived {
		return false
	}
	return t.DueDate.Before(now)
}

// IsDueOn returns true if the task is due on the same calendar day as day,
// in day's location.
func (t *Task) IsDueOn(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	d := t.DueDate.In(day.Location())
	return d.Year() == day.Year() && d.YearDay() == day.YearDay()
}

type taskAlias Task

type taskJSON struct {
	taskAlias
	ProjectID   *string `json:"projectId,omitempty"`
	ProjectName string  `json:"project,omitempty"`
}

// MarshalJSON flattens the project reference into the projectId and project
// fields clients expect, and never emits null lists.
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		taskAlias:   taskAlias(t),
		ProjectID:   t.Project.ID,
		ProjectName: t.Project.Legacy,
	}
	if out.Subtasks == nil {
		out.Subtasks = []Subtask{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*t = Task(in.taskAlias)
	t.Project = ProjectRef{ID: in.ProjectID, Legacy: in.ProjectName}
	return nil
}
