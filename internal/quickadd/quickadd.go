// Package quickadd parses one-line task descriptions such as
// "Review PR @work #Work !high due:tomorrow".
package quickadd

import (
	"strings"
	"time"

	"github.com/dori/taskmate/internal/model"
	"github.com/dori/taskmate/internal/tracker"
)

// Entry is the result of parsing a quick-add line.
type Entry struct {
	Title    string
	Priority model.Priority
	DueDate  *time.Time
	Tags     []string
	Project  string
}

// Parse splits text into a title and its markers. now anchors relative due
// dates; parsed dates fall at the end of the day in now's location. Words
// that look like markers but do not parse stay in the title.
func Parse(text string, now time.Time) Entry {
	entry := Entry{Priority: model.PriorityMedium}

	var titleParts []string
	for _, word := range strings.Fields(text) {
		switch {
		// Tags (@home, @work, etc.)
		case len(word) > 1 && strings.HasPrefix(word, "@"):
			entry.Tags = append(entry.Tags, strings.TrimPrefix(word, "@"))

		// Project (#Work)
		case len(word) > 1 && strings.HasPrefix(word, "#"):
			entry.Project = strings.TrimPrefix(word, "#")

		// Priority (!low, !high, etc.)
		case strings.HasPrefix(word, "!"):
			if p, ok := parsePriority(strings.TrimPrefix(word, "!")); ok {
				entry.Priority = p
			} else {
				titleParts = append(titleParts, word)
			}

		// Due date (due:tomorrow, due:friday, due:2024-01-15)
		case strings.HasPrefix(strings.ToLower(word), "due:"):
			if parsed := ParseDate(word[len("due:"):], now); parsed != nil {
				entry.DueDate = parsed
			} else {
				titleParts = append(titleParts, word)
			}

		default:
			titleParts = append(titleParts, word)
		}
	}

	entry.Title = strings.Join(titleParts, " ")
	return entry
}

// TaskInput converts the entry into a create request. A #project marker that
// names one of projects, ignoring case, links the task by id; any other name
// is kept as the legacy project text.
func (e Entry) TaskInput(projects []model.Project) tracker.TaskInput {
	title := e.Title
	priority := string(e.Priority)
	in := tracker.TaskInput{
		Title:    &title,
		Priority: &priority,
		DueDate:  e.DueDate,
		Tags:     e.Tags,
	}
	if e.Project == "" {
		return in
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, e.Project) {
			id := p.ID
			in.ProjectID = &id
			return in
		}
	}
	name := e.Project
	in.Project = &name
	return in
}

func parsePriority(s string) (model.Priority, bool) {
	switch strings.ToLower(s) {
	case "low", "l":
		return model.PriorityLow, true
	case "medium", "med", "m":
		return model.PriorityMedium, true
	case "high", "hi", "h", "urgent", "u":
		return model.PriorityHigh, true
	}
	return "", false
}

// ParseDate understands today, tomorrow, weekday names, nextweek and a few
// absolute formats. It returns nil if s is none of them.
func ParseDate(s string, now time.Time) *time.Time {
	today := endOfDay(now)

	switch strings.ToLower(s) {
	case "today":
		return &today
	case "tomorrow", "tom":
		t := today.AddDate(0, 0, 1)
		return &t
	case "nextweek":
		t := today.AddDate(0, 0, 7)
		return &t
	}
	if day, ok := weekdays[strings.ToLower(s)]; ok {
		return nextWeekday(today, day)
	}

	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"01-02-2006",
		"Jan 2, 2006",
		"Jan 2",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, now.Location()); err == nil {
			// No year given
			if t.Year() == 0 {
				t = t.AddDate(now.Year(), 0, 0)
			}
			t = endOfDay(t)
			return &t
		}
	}

	return nil
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// nextWeekday returns the next occurrence of day strictly after today.
func nextWeekday(today time.Time, day time.Weekday) *time.Time {
	daysUntil := int(day - today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	t := today.AddDate(0, 0, daysUntil)
	return &t
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// FormatDue renders a due date relative to now.
func FormatDue(t, now time.Time) string {
	if sameDay(t, now) {
		return "today"
	}
	if sameDay(t, now.AddDate(0, 0, 1)) {
		return "tomorrow"
	}
	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}
	return t.Format("Jan 2, 2006")
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
