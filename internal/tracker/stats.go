package tracker

import (
	"context"
	"math"
	"time"

	"github.com/dori/taskmate/internal/model"
	"github.com/dori/taskmate/internal/query"
)

// upcomingDays is the length of the workload window in Stats.
const upcomingDays = 7

// DayLoad is the number of open tasks due on one calendar day.
type DayLoad struct {
	Date      string `json:"date"`
	TaskCount int    `json:"taskCount"`
}

// Stats summarises a user's tasks.
type Stats struct {
	Total                int                    `json:"totalTasks"`
	Completed            int                    `json:"completedTasks"`
	Pending              int                    `json:"pendingTasks"`
	Overdue              int                    `json:"overdueTasks"`
	CompletionPercentage float64                `json:"completionPercentage"`
	ByPriority           map[model.Priority]int `json:"byPriority"`
	Upcoming             []DayLoad              `json:"upcoming"`
}

// Stats computes the caller's task summary. Days are UTC calendar days
// starting today; archived tasks do not count towards the upcoming load.
func (s *Service) Stats(ctx context.Context, caller string) (*Stats, error) {
	tasks, err := s.ListTasks(ctx, caller, ListOptions{})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	st := &Stats{
		Total: len(tasks),
		ByPriority: map[model.Priority]int{
			model.PriorityHigh:   0,
			model.PriorityMedium: 0,
			model.PriorityLow:    0,
		},
		Upcoming: make([]DayLoad, upcomingDays),
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := range st.Upcoming {
		st.Upcoming[i].Date = today.AddDate(0, 0, i).Format(time.DateOnly)
	}

	for i := range tasks {
		t := &tasks[i]
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
		}
		if t.IsOverdue(now) {
			st.Overdue++
		}
		if t.Priority.Valid() {
			st.ByPriority[t.Priority]++
		}
		if t.Archived {
			continue
		}
		for j := range st.Upcoming {
			if t.IsDueOn(today.AddDate(0, 0, j)) {
				st.Upcoming[j].TaskCount++
				break
			}
		}
	}

	if st.Total > 0 {
		pct := float64(st.Completed) / float64(st.Total) * 100
		st.CompletionPercentage = math.Round(pct*100) / 100
	}
	return st, nil
}

// Calendar returns the caller's tasks due on any day from from to to
// inclusive, earliest first. Both bounds are taken as UTC calendar days.
func (s *Service) Calendar(ctx context.Context, caller string, from, to time.Time) ([]model.Task, error) {
	scope, err := query.Owner(caller)
	if err != nil {
		return nil, err
	}

	start := truncateDay(from)
	end := truncateDay(to).AddDate(0, 0, 1)
	if !start.Before(end) {
		return nil, invalid("to", "end date is before start date")
	}

	p := query.And(
		query.NotNull(query.FieldDueDate),
		query.Gte(query.FieldDueDate, start),
		query.Lt(query.FieldDueDate, end),
	)
	tasks, err := s.store.FindTasks(ctx, scope, p, query.SortDueDate.OrderBy())
	if err != nil {
		return nil, dataAccess("list calendar tasks", err)
	}
	return tasks, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
