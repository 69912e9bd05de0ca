package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dori/taskmate/internal/db"
	"github.com/dori/taskmate/internal/model"
	"github.com/dori/taskmate/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, users ...string) *Service {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := db.Open(filepath.Join(t.TempDir(), "tracker.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	for _, u := range users {
		_, err := store.Exec(`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			u, u+"@example.com", "x", now, now)
		require.NoError(t, err)
	}

	svc := NewService(store, log)
	svc.now = func() time.Time { return now }
	return svc
}

func str(s string) *string { return &s }

func boolean(b bool) *bool { return &b }

func at(d time.Time) *time.Time { return &d }

func taskTitles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestOverdueScenario(t *testing.T) {
	svc := newTestService(t, "alice", "bob")
	ctx := context.Background()

	work, err := svc.CreateProject(ctx, "alice", ProjectInput{Name: str("Work")})
	require.NoError(t, err)

	report, err := svc.CreateTask(ctx, "alice", TaskInput{
		Title:     str("Write report"),
		Priority:  str("High"),
		DueDate:   at(now.AddDate(0, 0, -1)),
		ProjectID: str(work.ID),
	})
	require.NoError(t, err)

	_, err = svc.CreateTask(ctx, "alice", TaskInput{Title: str("Done already"), DueDate: at(now.AddDate(0, 0, -2)), Completed: boolean(true)})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "alice", TaskInput{Title: str("Due tomorrow"), DueDate: at(now.AddDate(0, 0, 1))})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "alice", TaskInput{Title: str("Archived"), DueDate: at(now.AddDate(0, 0, -3)), Archived: boolean(true)})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "alice", TaskInput{Title: str("No date")})
	require.NoError(t, err)

	overdue := ListOptions{Filter: query.Filter{Status: query.StatusOverdue}}

	got, err := svc.ListTasks(ctx, "alice", overdue)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, report.ID, got[0].ID)

	got, err = svc.ListTasks(ctx, "bob", overdue)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOtherUsersTasksAreNeverListed(t *testing.T) {
	svc := newTestService(t, "alice", "bob")
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, "alice", TaskInput{Title: str("secret"), Project: str("Home")})
	require.NoError(t, err)

	filters := []query.Filter{
		{},
		{Status: query.StatusActive},
		{Status: "bogus"},
		{Search: "secret"},
		{ProjectID: "Home"},
		{ProjectID: "Home", Search: "sec"},
	}
	for _, f := range filters {
		got, err := svc.ListTasks(ctx, "bob", ListOptions{Filter: f})
		require.NoError(t, err)
		assert.Empty(t, got, "filter %+v", f)
	}
}

func TestPrioritySortScenario(t *testing.T) {
	svc := newTestService(t, "alice")
	ctx := context.Background()

	for _, p := range []string{"Low", "High", "Medium"} {
		_, err := svc.CreateTask(ctx, "alice", TaskInput{Title: str(p), Priority: str(p)})
		require.NoError(t, err)
	}
	// No API path writes an unranked priority, so store one directly.
	_, err := svc.store.(*db.DB).Exec(`INSERT INTO tasks (id, user_id, title, priority, created_at, updated_at) VALUES ('x', 'alice', 'none', '', 0, 0)`)
	require.NoError(t, err)

	got, err := svc.ListTasks(ctx, "alice", ListOptions{Sort: query.SortPriority})
	require.NoError(t, err)
	assert.Equal(t, []string{"High", "Medium", "Low", "none"}, taskTitles(got))
}

func TestProjectAndSearchIntersect(t *testing.T) {
	svc := newTestService(t, "alice")
	ctx := context.Background()

	work, err := svc.CreateProject(ctx, "alice", ProjectInput{Name: str("Work")})
	require.NoError(t, err)

	inputs := []TaskInput{
		{Title: str("report draft"), ProjectID: str(work.ID)},
		{Title: str("budget"), ProjectID: str(work.ID)},
		{Title: str("report for home")},
		{Title: str("legacy report"), Project: str(work.ID)},
	}
	for _, in := range inputs {
		_, err := svc.CreateTask(ctx, "alice", in)
		require.NoError(t, err)
	}

	got, err := svc.ListTasks(ctx, "alice", ListOptions{
		Filter: query.Filter{ProjectID: work.ID, Search: "REPORT"},
		Sort:   query.SortAlphabetical,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy report", "report draft"}, taskTitles(got))
}

func TestDeleteProjectScenario(t *testing.T) {
	svc := newTestService(t, "alice")
	ctx := context.Background()

	work, err := svc.CreateProject(ctx, "alice", ProjectInput{Name: str("Work")})
	require.NoError(t, err)

	report, err := svc.CreateTask(ctx, "alice", TaskInput{
		Title:     str("Write report"),
		Priority:  str("High"),
		DueDate:   at(now.AddDate(0, 0, -1)),
		Project:   str("Work"),
		ProjectID: str(work.ID),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, "alice", work.ID))

	got, err := svc.GetTask(ctx, "alice", report.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Project.ID)
	assert.Equal(t, "Work", got.Project.Legacy)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, report.DueDate.Equal(*got.DueDate))

	projects, err := svc.ListProjects(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, projects)

	assert.ErrorIs(t, svc.DeleteProject(ctx, "alice", work.ID), ErrNotFound)
}

func TestOtherUsersRecordsAreNotFound(t *testing.T) {
	svc := newTestService(t, "alice", "bob")
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "alice", TaskInput{Title: str("mine")})
	require.NoError(t, err)
	project, err := svc.CreateProject(ctx, "alice", ProjectInput{Name: str("Mine")})
	require.NoError(t, err)

	_, err = svc.GetTask(ctx, "bob", task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpdateTask(ctx, "bob", task.ID, TaskInput{Title: str("stolen")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTask(ctx, "bob", task.ID), ErrNotFound)

	_, err = svc.GetProject(ctx, "bob", project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpdateProject(ctx, "bob", project.ID, ProjectInput{Name: str("stolen")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProject(ctx, "bob", project.ID), ErrNotFound)

	got, err := svc.GetTask(ctx, "alice", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestMissingCallerIsRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListTasks(ctx, "", ListOptions{})
	assert.ErrorIs(t, err, query.ErrUnscoped)
	_, err = svc.CreateTask(ctx, " ", TaskInput{Title: str("x")})
	assert.ErrorIs(t, err, query.ErrUnscoped)
	assert.ErrorIs(t, svc.DeleteProject(ctx, "", "p"), query.ErrUnscoped)
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestService(t, "alice", "bob")
	ctx := context.Background()

	bobs, err := svc.CreateProject(ctx, "bob", ProjectInput{Name: str("Bob's")})
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    TaskInput
		field string
	}{
		{"missing title", TaskInput{}, "title"},
		{"blank title", TaskInput{Title: str("   ")}, "title"},
		{"bad priority", TaskInput{Title: str("x"), Priority: str("Urgent")}, "priority"},
		{"foreign project", TaskInput{Title: str("x"), ProjectID: str(bobs.ID)}, "projectId"},
		{"blank subtask", TaskInput{Title: str("x"), Subtasks: []model.Subtask{{Title: ""}}}, "subtasks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, "alice", tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := newTestService(t, "alice")
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "alice", TaskInput{Title: str("  plain  "), Tags: []string{"a", " ", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "plain", task.Title)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)
	assert.False(t, task.Archived)
	assert.Equal(t, []string{"a", "b"}, task.Tags)
	assert.Equal(t, "alice", task.UserID)
	assert.NotEmpty(t, task.ID)
}

func TestUpdateTaskIsPartial(t *testing.T) {
	svc := newTestService(t, "alice")
	ctx := context.Background()

	work, err := svc.CreateProject(ctx, "alice", ProjectInput{Name: str("Work")})
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, "alice", TaskInput{
		Title:       str("first draft"),
		Description: str("details"),
		Priority:    str("Low"),
		ProjectID:   str(work.ID),
		Subtasks:    []model.Subtask{{Title: "step"}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, "alice", task.ID, TaskInput{Title: str(""), Completed: boolean(true)})
	require.NoError(t, err)
	assert.Equal(t, "first draft", updated.Title)
	assert.Equal(t, "details", updated.Description)
	assert.Equal(t, model.PriorityLow, updated.Priority)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.Project.ID)
	assert.Equal(t, work.ID, *updated.Project.ID)
	assert.Len(t, updated.Subtasks, 1)

	detached, err := svc.UpdateTask(ctx, "alice", task.ID, TaskInput{ProjectID: str("")})
	require.NoError(t, err)
	assert.Nil(t, detached.Project.ID)

	got, err := svc.GetTask(ctx, "alice", task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Project.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, []model.Subtask{{Title: "step"}}, got.Subtasks)

	_, err = svc.UpdateTask(ctx, "alice", task.ID, TaskInput{Priority: str("Someday")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestProjectCRUD(t *testing.T) {
	svc := newTestService(t, "alice")
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, "alice", ProjectInput{Name: str(" ")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	p, err := svc.CreateProject(ctx, "alice", ProjectInput{Name: str("Home"), Description: str("chores")})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProjectColor, p.Color)

	updated, err := svc.UpdateProject(ctx, "alice", p.ID, ProjectInput{Color: str("#ff0000"), Name: str("")})
	require.NoError(t, err)
	assert.Equal(t, "Home", updated.Name)
	assert.Equal(t, "chores", updated.Description)
	assert.Equal(t, "#ff0000", updated.Color)

	got, err := svc.GetProject(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", got.Color)
}

func TestStats(t *testing.T) {
	svc := newTestService(t, "alice")
	ctx := context.Background()

	inputs := []TaskInput{
		{Title: str("done"), Priority: str("High"), Completed: boolean(true)},
		{Title: str("late"), Priority: str("High"), DueDate: at(now.AddDate(0, 0, -1))},
		{Title: str("today"), DueDate: at(now.Add(time.Hour))},
		{Title: str("in two days"), Priority: str("Low"), DueDate: at(now.AddDate(0, 0, 2))},
		{Title: str("archived soon"), DueDate: at(now.AddDate(0, 0, 2)), Archived: boolean(true)},
		{Title: str("far"), DueDate: at(now.AddDate(0, 0, 30))},
	}
	for _, in := range inputs {
		_, err := svc.CreateTask(ctx, "alice", in)
		require.NoError(t, err)
	}

	st, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 6, st.Total)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 5, st.Pending)
	assert.Equal(t, 1, st.Overdue)
	assert.Equal(t, 16.67, st.CompletionPercentage)
	assert.Equal(t, 2, st.ByPriority[model.PriorityHigh])
	assert.Equal(t, 3, st.ByPriority[model.PriorityMedium])
	assert.Equal(t, 1, st.ByPriority[model.PriorityLow])

	require.Len(t, st.Upcoming, 7)
	assert.Equal(t, DayLoad{Date: "2024-03-10", TaskCount: 1}, st.Upcoming[0])
	assert.Equal(t, DayLoad{Date: "2024-03-12", TaskCount: 1}, st.Upcoming[2])
	assert.Equal(t, "2024-03-16", st.Upcoming[6].Date)
}

func TestStatsEmpty(t *testing.T) {
	svc := newTestService(t, "alice")

	st, err := svc.Stats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Zero(t, st.Total)
	assert.Zero(t, st.CompletionPercentage)
}

func TestCalendar(t *testing.T) {
	svc := newTestService(t, "alice")
	ctx := context.Background()

	inputs := []TaskInput{
		{Title: str("end of range"), DueDate: at(time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC))},
		{Title: str("start of range"), DueDate: at(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))},
		{Title: str("before"), DueDate: at(time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC))},
		{Title: str("after"), DueDate: at(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC))},
		{Title: str("undated")},
	}
	for _, in := range inputs {
		_, err := svc.CreateTask(ctx, "alice", in)
		require.NoError(t, err)
	}

	got, err := svc.Calendar(ctx, "alice",
		time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"start of range", "end of range"}, taskTitles(got))

	_, err = svc.Calendar(ctx, "alice", now, now.AddDate(0, 0, -1))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

type failingStore struct {
	Store
}

func (failingStore) FindTasks(context.Context, query.Scope, query.Predicate, string) ([]model.Task, error) {
	return nil, errors.New("disk I/O error")
}

func (failingStore) DeleteProject(context.Context, query.Scope, string) (bool, error) {
	return false, errors.New("database is locked")
}

func TestStoreFailuresAreDataAccessErrors(t *testing.T) {
	svc := NewService(failingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	tasks, err := svc.ListTasks(ctx, "alice", ListOptions{})
	assert.ErrorIs(t, err, ErrDataAccess)
	assert.Nil(t, tasks)

	err = svc.DeleteProject(ctx, "alice", "p1")
	assert.ErrorIs(t, err, ErrDataAccess)
	assert.NotErrorIs(t, err, ErrNotFound)
}
