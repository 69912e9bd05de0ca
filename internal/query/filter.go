package query

import (
	"strings"
	"time"
)

// Status selects tasks by lifecycle state.
type Status string

const (
	StatusAny       Status = ""
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
	StatusOverdue   Status = "overdue"
)

// Known reports whether s is one of the recognised status tokens.
func (s Status) Known() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived, StatusOverdue:
		return true
	}
	return false
}

// Filter is the declarative task selection a caller asks for. Zero fields
// impose no constraint.
type Filter struct {
	Status    Status
	ProjectID string
	Search    string
}

// Predicate compiles the filter into one predicate. now is the reference time
// for the overdue rule. Project and search disjunctions are joined with AND,
// and status conditions are AND-ed alongside them.
func (f Filter) Predicate(now time.Time) Predicate {
	return And(
		StatusPredicate(f.Status, now),
		ProjectPredicate(f.ProjectID),
		SearchPredicate(f.Search),
	)
}

// StatusPredicate returns the conditions for a status token, or nil for an
// absent or unrecognised token.
func StatusPredicate(s Status, now time.Time) Predicate {
	open := And(Eq(FieldCompleted, false), Eq(FieldArchived, false))
	switch s {
	case StatusActive:
		return open
	case StatusCompleted:
		return And(Eq(FieldCompleted, true), Eq(FieldArchived, false))
	case StatusArchived:
		return Eq(FieldArchived, true)
	case StatusOverdue:
		return And(open, Lt(FieldDueDate, now))
	}
	return nil
}

// ProjectPredicate matches tasks referencing the project by id or by legacy
// name. A blank token yields nil.
func ProjectPredicate(token string) Predicate {
	if token == "" {
		return nil
	}
	return Or(Eq(FieldProjectID, token), Eq(FieldProject, token))
}

// SearchPredicate matches tasks whose title or description contains text,
// ignoring case. Blank or whitespace-only text yields nil.
func SearchPredicate(text string) Predicate {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return Or(ContainsFold(FieldTitle, text), ContainsFold(FieldDescription, text))
}
