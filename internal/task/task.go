package task

import (
	"fmt"
	"strings"
	"time"
)

// Quadrant is an Eisenhower-matrix priority class. The empty string means
// the task was stored without one and is treated as Q4 everywhere.
type Quadrant string

const (
	Q1 Quadrant = "Q1" // urgent, important
	Q2 Quadrant = "Q2" // not urgent, important
	Q3 Quadrant = "Q3" // urgent, not important
	Q4 Quadrant = "Q4" // not urgent, not important
)

func ParseQuadrant(s string) (Quadrant, error) {
	switch q := Quadrant(strings.ToUpper(strings.TrimSpace(s))); q {
	case Q1, Q2, Q3, Q4:
		return q, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("invalid quadrant %q", s)
	}
}

func (q Quadrant) Label() string {
	switch q {
	case Q1:
		return "Urgent & Important"
	case Q2:
		return "Not Urgent & Important"
	case Q3:
		return "Urgent & Not Important"
	default:
		return "Not Urgent & Not Important"
	}
}

// Task is the canonical in-memory record. IDs are opaque strings; numeric
// wire ids are converted at the persistence boundary.
type Task struct {
	ID           string
	Title        string
	Description  string
	DueDate      time.Time
	Tag          string
	Quadrant     Quadrant
	Completed    bool
	FocusMinutes int
}

// Draft is the editable subset of a task. Saving a draft never touches the
// completion flag or the accumulated focus minutes.
type Draft struct {
	Title       string
	Description string
	DueDate     time.Time
	Tag         string
	Quadrant    Quadrant
}

// Validate checks a draft before it is allowed near the backend.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if d.DueDate.IsZero() {
		return fmt.Errorf("due date is required")
	}
	if d.Quadrant == "" {
		return fmt.Errorf("quadrant is required")
	}
	return nil
}

// Apply merges the draft into an existing record, preserving identity,
// completion state and focus time.
func (d Draft) Apply(t Task) Task {
	t.Title = d.Title
	t.Description = d.Description
	t.DueDate = d.DueDate
	t.Tag = d.Tag
	t.Quadrant = d.Quadrant
	return t
}
