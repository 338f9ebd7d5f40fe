package task

import (
	"sort"
	"time"
)

// Tab selects which slice of the collection the dashboard shows.
type Tab int

const (
	TabToday Tab = iota
	TabWeek
)

func (t Tab) String() string {
	if t == TabWeek {
		return "This Week"
	}
	return "Today"
}

// rank orders quadrants for display. Q2 outranks Q1 on purpose: proactive
// work ahead of firefighting. A missing quadrant sorts with Q4.
func rank(q Quadrant) int {
	switch q {
	case Q2:
		return 1
	case Q1:
		return 2
	case Q3:
		return 3
	default:
		return 4
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether both times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return startOfDay(a).Equal(startOfDay(b.In(a.Location())))
}

// startOfWeek returns the Monday beginning the week containing t.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}

// InWeek reports whether due falls within the Monday-start calendar week
// containing now.
func InWeek(due, now time.Time) bool {
	monday := startOfWeek(now)
	d := startOfDay(due.In(now.Location()))
	return !d.Before(monday) && d.Before(monday.AddDate(0, 0, 7))
}

// matches applies the tab's date predicate.
func matches(t Task, tab Tab, now time.Time) bool {
	switch tab {
	case TabToday:
		return SameDay(now, t.DueDate)
	case TabWeek:
		return InWeek(t.DueDate, now)
	default:
		return false
	}
}

// Visible computes the display ordering for a tab: the tab's date filter,
// then incomplete before completed, then quadrant rank. The sort is stable,
// so equal tasks keep their incoming order, and the input slice is never
// mutated.
func Visible(tasks []Task, tab Tab, now time.Time) []Task {
	visible := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, tab, now) {
			visible = append(visible, t)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return rank(a.Quadrant) < rank(b.Quadrant)
	})
	return visible
}
