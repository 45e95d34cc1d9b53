package domain

import (
	"testing"
	"time"
)

func TestNewTaskNormalization(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	due := time.Date(2026, 9, 12, 15, 30, 0, 0, time.UTC)
	task, err := NewTask(TaskInput{
		ID:          " t1 ",
		Title:       "  Ship board  ",
		Description: " cards ",
		Category:    "Technical Task",
		Priority:    "HIGH",
		DueAt:       &due,
		Subtasks:    []Subtask{{Title: "a"}, {Title: ""}},
		Assigned:    []Assignee{{Name: " Ada "}, {Name: "  "}},
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.ID != "t1" || task.Title != "Ship board" {
		t.Fatalf("unexpected identity %q %q", task.ID, task.Title)
	}
	if task.Priority != PriorityUrgent {
		t.Fatalf("unexpected priority %q", task.Priority)
	}
	if task.Status != StatusTodo {
		t.Fatalf("unexpected status %q", task.Status)
	}
	if task.DueAt == nil || task.DueAt.Hour() != 0 {
		t.Fatalf("expected due date truncated to day, got %v", task.DueAt)
	}
	if len(task.Subtasks) != 1 {
		t.Fatalf("expected empty-titled subtask dropped, got %v", task.Subtasks)
	}
	if len(task.Assigned) != 1 || task.Assigned[0].Name != "Ada" {
		t.Fatalf("expected blank assignee dropped, got %v", task.Assigned)
	}
}

func TestNewTaskValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewTask(TaskInput{Title: "x", Category: "c"}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewTask(TaskInput{ID: "t1", Category: "c"}, now); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if _, err := NewTask(TaskInput{ID: "t1", Title: "x"}, now); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestSetSubtaskDoneGuards(t *testing.T) {
	task := Task{Subtasks: []Subtask{{Title: "a"}, {Title: "b"}}}
	if task.SetSubtaskDone(-1, true) || task.SetSubtaskDone(2, true) {
		t.Fatal("out-of-range index must be a no-op")
	}
	if !task.SetSubtaskDone(1, true) {
		t.Fatal("valid index should toggle")
	}
	done, total := task.SubtaskProgress()
	if done != 1 || total != 2 {
		t.Fatalf("unexpected progress %d/%d", done, total)
	}
}

func TestTaskMoveTo(t *testing.T) {
	task := Task{Status: StatusTodo}
	task.MoveTo(StatusProgress, time.Now())
	if task.Status != StatusProgress {
		t.Fatalf("unexpected status %q", task.Status)
	}
	task.MoveTo(Status("bogus"), time.Now())
	if task.Status != StatusTodo {
		t.Fatalf("unknown status should fall back to todo, got %q", task.Status)
	}
}

func TestParseStatusAliases(t *testing.T) {
	cases := map[string]Status{
		"todo":            StatusTodo,
		"To-Do":           StatusTodo,
		"in progress":     StatusProgress,
		"inProgress":      StatusProgress,
		"await-feedback":  StatusFeedback,
		"awaitFeedback":   StatusFeedback,
		"review":          StatusFeedback,
		"done":            StatusDone,
		"completed":       StatusDone,
		"":                StatusTodo,
		"something weird": StatusTodo,
	}
	for in, want := range cases {
		if got := ParseStatus(in); got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusNeighbors(t *testing.T) {
	if StatusTodo.Prev() != StatusTodo || StatusDone.Next() != StatusDone {
		t.Fatal("board edges must clamp")
	}
	if StatusTodo.Next() != StatusProgress || StatusDone.Prev() != StatusFeedback {
		t.Fatal("unexpected neighbor ordering")
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Ada Lovelace":          "AL",
		"Grace Brewster Hopper": "GB",
		"ada":                   "A",
		"":                      "",
	}
	for in, want := range cases {
		if got := Initials(in); got != want {
			t.Fatalf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAvatarColorDefault(t *testing.T) {
	if AvatarColor("  ") != DefaultAvatarColor {
		t.Fatal("blank color should fall back to the neutral default")
	}
	if AvatarColor("#29ABE2") != "#29ABE2" {
		t.Fatal("explicit color should pass through")
	}
}

func TestNewContactValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewContact("", "Ada", "", "", now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewContact("c1", "  ", "", "", now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	contact, err := NewContact("c1", " Ada Lovelace ", " ada@example.com ", "#29ABE2", now)
	if err != nil {
		t.Fatalf("NewContact() error = %v", err)
	}
	if contact.Name != "Ada Lovelace" || contact.Email != "ada@example.com" {
		t.Fatalf("unexpected contact %+v", contact)
	}
}
