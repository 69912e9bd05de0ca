package query

import (
	"slices"

	"github.com/dori/taskmate/internal/model"
)

// SortKey names a task ordering.
type SortKey string

const (
	SortCreated      SortKey = "created"
	SortDueDate      SortKey = "dueDate"
	SortDueDateDesc  SortKey = "dueDateDesc"
	SortPriority     SortKey = "priority"
	SortAlphabetical SortKey = "alphabetical"
)

// ParseSortKey maps a request token to a sort key. Blank and unknown tokens
// fall back to SortCreated.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortCreated, SortDueDate, SortDueDateDesc, SortPriority, SortAlphabetical:
		return k
	}
	return SortCreated
}

// OrderBy returns the store-level ORDER BY terms for the key. rowid is the
// final tiebreaker so that a single execution is deterministic. For
// SortPriority it returns insertion order; the caller finishes with
// SortByPriority.
//
// SQLite places NULL before any value in ascending order, so tasks without a
// due date come first under SortDueDate and last under SortDueDateDesc.
// Titles compare with the BINARY collation: case-sensitive, byte order.
func (k SortKey) OrderBy() string {
	switch k {
	case SortDueDate:
		return "due_date ASC, rowid ASC"
	case SortDueDateDesc:
		return "due_date DESC, rowid ASC"
	case SortAlphabetical:
		return "title ASC, rowid ASC"
	case SortPriority:
		return "rowid ASC"
	default:
		return "created_at DESC, rowid ASC"
	}
}

// InMemory reports whether the key needs a post-fetch sort.
func (k SortKey) InMemory() bool {
	return k == SortPriority
}

// ComparePriority orders tasks by priority rank, High first and unranked last.
func ComparePriority(a, b model.Task) int {
	return a.Priority.Rank() - b.Priority.Rank()
}

// SortByPriority stably sorts tasks in place by priority rank.
func SortByPriority(tasks []model.Task) {
	slices.SortStableFunc(tasks, ComparePriority)
}

// Apply finishes the ordering of tasks fetched with k.OrderBy().
func (k SortKey) Apply(tasks []model.Task) {
	if k.InMemory() {
		SortByPriority(tasks)
	}
}
