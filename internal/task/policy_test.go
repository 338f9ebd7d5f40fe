package task

import (
	"testing"
	"time"
)

// Wednesday. The Monday-start week around it runs 2023-04-10 .. 2023-04-16.
var referenceTime = time.Date(2023, 4, 12, 12, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return referenceTime.AddDate(0, 0, offset)
}

func mk(id string, q Quadrant, completed bool, due time.Time) Task {
	return Task{ID: id, Title: "task " + id, Quadrant: q, Completed: completed, DueDate: due}
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func assertOrder(t *testing.T, got []Task, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("got order %v, want %v", ids(got), want)
		}
	}
}

func TestVisibleOrdersQ2First(t *testing.T) {
	tasks := []Task{
		mk("q4", Q4, false, referenceTime),
		mk("q1", Q1, false, referenceTime),
		mk("q3", Q3, false, referenceTime),
		mk("q2", Q2, false, referenceTime),
	}
	got := Visible(tasks, TabToday, referenceTime)
	assertOrder(t, got, "q2", "q1", "q3", "q4")
}

func TestCompletedTasksSortLast(t *testing.T) {
	tasks := []Task{
		mk("done-q2", Q2, true, referenceTime),
		mk("open-q4", Q4, false, referenceTime),
		mk("open-q1", Q1, false, referenceTime),
		mk("done-q1", Q1, true, referenceTime),
	}
	got := Visible(tasks, TabToday, referenceTime)
	assertOrder(t, got, "open-q1", "open-q4", "done-q2", "done-q1")
}

func TestMissingQuadrantRanksAsQ4(t *testing.T) {
	tasks := []Task{
		mk("none", "", false, referenceTime),
		mk("q4", Q4, false, referenceTime),
		mk("q3", Q3, false, referenceTime),
	}
	got := Visible(tasks, TabToday, referenceTime)
	// "none" ties with q4 and keeps its earlier position.
	assertOrder(t, got, "q3", "none", "q4")
}

func TestSortIsStableAndIdempotent(t *testing.T) {
	tasks := []Task{
		mk("a", Q1, false, referenceTime),
		mk("b", Q1, false, referenceTime),
		mk("c", Q1, false, referenceTime),
	}
	once := Visible(tasks, TabToday, referenceTime)
	assertOrder(t, once, "a", "b", "c")

	twice := Visible(once, TabToday, referenceTime)
	assertOrder(t, twice, "a", "b", "c")
}

func TestVisibleDoesNotMutateInput(t *testing.T) {
	tasks := []Task{
		mk("done", Q1, true, referenceTime),
		mk("open", Q1, false, referenceTime),
	}
	Visible(tasks, TabToday, referenceTime)
	if tasks[0].ID != "done" || tasks[1].ID != "open" {
		t.Errorf("input order changed: %v", ids(tasks))
	}
}

func TestTodayFilter(t *testing.T) {
	tasks := []Task{
		mk("today", Q1, false, referenceTime.Add(5*time.Hour)),
		mk("yesterday", Q1, false, day(-1)),
		mk("tomorrow", Q1, false, day(1)),
	}
	got := Visible(tasks, TabToday, referenceTime)
	assertOrder(t, got, "today")
}

func TestWeekFilterStartsMonday(t *testing.T) {
	tasks := []Task{
		mk("monday", Q1, false, day(-2)),
		mk("sunday", Q1, false, day(4)),
		mk("last-sunday", Q1, false, day(-3)),
		mk("next-monday", Q1, false, day(5)),
	}
	got := Visible(tasks, TabWeek, referenceTime)
	assertOrder(t, got, "monday", "sunday")
}

func TestWeekFilterFromSunday(t *testing.T) {
	// On a Sunday the week began six days earlier.
	sunday := time.Date(2023, 4, 16, 9, 0, 0, 0, time.UTC)
	tasks := []Task{
		mk("week-monday", Q1, false, sunday.AddDate(0, 0, -6)),
		mk("before", Q1, false, sunday.AddDate(0, 0, -7)),
		mk("sunday", Q1, false, sunday),
	}
	got := Visible(tasks, TabWeek, sunday)
	assertOrder(t, got, "week-monday", "sunday")
}

func TestDraftApplyPreservesCompletionAndFocusTime(t *testing.T) {
	orig := Task{
		ID:           "1",
		Title:        "old",
		Quadrant:     Q1,
		Completed:    true,
		FocusMinutes: 75,
		DueDate:      referenceTime,
	}
	draft := Draft{Title: "new", Description: "desc", DueDate: day(1), Tag: "work", Quadrant: Q3}
	got := draft.Apply(orig)

	if got.ID != "1" {
		t.Errorf("id changed to %q", got.ID)
	}
	if !got.Completed {
		t.Error("completion flag was reset by edit")
	}
	if got.FocusMinutes != 75 {
		t.Errorf("focus minutes changed to %d, want 75", got.FocusMinutes)
	}
	if got.Title != "new" || got.Quadrant != Q3 {
		t.Errorf("draft fields not applied: %+v", got)
	}
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{Title: "t", DueDate: referenceTime, Quadrant: Q2}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}
	cases := []struct {
		name  string
		draft Draft
	}{
		{"missing title", Draft{DueDate: referenceTime, Quadrant: Q2}},
		{"blank title", Draft{Title: "   ", DueDate: referenceTime, Quadrant: Q2}},
		{"missing due date", Draft{Title: "t", Quadrant: Q2}},
		{"missing quadrant", Draft{Title: "t", DueDate: referenceTime}},
	}
	for _, tc := range cases {
		if err := tc.draft.Validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestParseQuadrant(t *testing.T) {
	if q, err := ParseQuadrant("q2"); err != nil || q != Q2 {
		t.Errorf("ParseQuadrant(q2) = %v, %v", q, err)
	}
	if q, err := ParseQuadrant(""); err != nil || q != "" {
		t.Errorf("ParseQuadrant(empty) = %v, %v", q, err)
	}
	if _, err := ParseQuadrant("Q5"); err == nil {
		t.Error("ParseQuadrant(Q5) should fail")
	}
}
