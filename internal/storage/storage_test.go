package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"eisen/internal/task"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "eisen.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDraft(title string) task.Draft {
	return task.Draft{
		Title:    title,
		DueDate:  time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC),
		Quadrant: task.Q2,
		Tag:      "work",
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}
	if err := s.Set("session.token", "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("session.token", "def"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get("session.token")
	if err != nil || got != "def" {
		t.Fatalf("Get = %q, %v; want def", got, err)
	}
	if err := s.Delete("session.token"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("session.token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestCreateAssignsTimestampID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.CreateTask(ctx, testDraft("first"))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if a.ID == "" {
		t.Fatal("created task has no id")
	}
	if _, err := time.Parse(time.RFC3339Nano, a.ID); err != nil {
		t.Errorf("id %q is not a timestamp string: %v", a.ID, err)
	}
	if a.Completed || a.FocusMinutes != 0 {
		t.Errorf("new task should start incomplete with zero focus time: %+v", a)
	}

	b, err := s.CreateTask(ctx, testDraft("second"))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("ids must be unique, both %q", a.ID)
	}
}

func TestUpdatePreservesCompletionAndFocusTime(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTask(ctx, testDraft("original"))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := s.SetCompleted(ctx, created.ID, true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	if _, err := s.AddFocusMinutes(ctx, created.ID, 25); err != nil {
		t.Fatalf("AddFocusMinutes: %v", err)
	}

	edit := testDraft("renamed")
	edit.Quadrant = task.Q1
	got, err := s.UpdateTask(ctx, created.ID, edit)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.Title != "renamed" || got.Quadrant != task.Q1 {
		t.Errorf("edit not applied: %+v", got)
	}
	if !got.Completed {
		t.Error("edit reset the completion flag")
	}
	if got.FocusMinutes != 25 {
		t.Errorf("edit changed focus minutes to %d, want 25", got.FocusMinutes)
	}
}

func TestAddFocusMinutesTargetsOneTask(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateTask(ctx, testDraft("a"))
	b, _ := s.CreateTask(ctx, testDraft("b"))

	if _, err := s.AddFocusMinutes(ctx, a.ID, 10); err != nil {
		t.Fatalf("AddFocusMinutes: %v", err)
	}
	if _, err := s.AddFocusMinutes(ctx, a.ID, 0); err != nil {
		t.Fatalf("AddFocusMinutes(0): %v", err)
	}
	if _, err := s.AddFocusMinutes(ctx, a.ID, -5); err == nil {
		t.Error("negative minutes must be rejected")
	}

	tasks, err := s.ListTasks(ctx, task.DateFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	for _, got := range tasks {
		switch got.ID {
		case a.ID:
			if got.FocusMinutes != 10 {
				t.Errorf("task a focus = %d, want 10", got.FocusMinutes)
			}
		case b.ID:
			if got.FocusMinutes != 0 {
				t.Errorf("task b focus = %d, want untouched 0", got.FocusMinutes)
			}
		}
	}
}

func TestDeleteTask(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, _ := s.CreateTask(ctx, testDraft("doomed"))
	if err := s.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := s.DeleteTask(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
	tasks, _ := s.ListTasks(ctx, task.DateFilter{})
	if len(tasks) != 0 {
		t.Errorf("store still holds %d tasks", len(tasks))
	}
}

func TestListTasksDateFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	today := testDraft("today")
	tomorrow := testDraft("tomorrow")
	tomorrow.DueDate = today.DueDate.AddDate(0, 0, 1)
	s.CreateTask(ctx, today)
	s.CreateTask(ctx, tomorrow)

	got, err := s.ListTasks(ctx, task.DateFilter{On: today.DueDate})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(got) != 1 || got[0].Title != "today" {
		t.Errorf("filtered list = %+v, want only today's task", got)
	}
}

func TestMutationsOnUnknownID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SetCompleted(ctx, "nope", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCompleted = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateTask(ctx, "nope", testDraft("x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTask = %v, want ErrNotFound", err)
	}
	if _, err := s.AddFocusMinutes(ctx, "nope", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddFocusMinutes = %v, want ErrNotFound", err)
	}
}
