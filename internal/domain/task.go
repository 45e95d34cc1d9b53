package domain

import (
	"strings"
	"time"
)

// Subtask is one checklist entry on a task.
type Subtask struct {
	Title string
	Done  bool
}

// Assignee is one contact reference attached to a task for rendering.
// ContactID links into the contact directory when the persisted entry was a
// bare reference; Name and Color are the inline display values legacy records
// carry directly on the task.
type Assignee struct {
	ContactID string
	Name      string
	Color     string
}

// Task is the canonical internal task record. Every persisted or legacy
// representation is mapped onto this shape at the decode boundary; the rest
// of the system never sees aliased field names.
type Task struct {
	ID          string
	Title       string
	Description string
	Category    string
	Priority    Priority
	DueAt       *time.Time
	Status      Status
	Assigned    []Assignee
	Subtasks    []Subtask
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskInput holds write-time values for new tasks.
type TaskInput struct {
	ID          string
	Title       string
	Description string
	Category    string
	Priority    string
	DueAt       *time.Time
	Status      Status
	Assigned    []Assignee
	Subtasks    []Subtask
	CreatedBy   string
}

// NewTask validates and normalizes a task record.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Category == "" {
		return Task{}, ErrInvalidCategory
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}

	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    ClassifyPriority(in.Priority),
		DueAt:       normalizeDueAt(in.DueAt),
		Status:      ParseStatus(string(in.Status)),
		Assigned:    filterAssignees(in.Assigned),
		Subtasks:    filterSubtasks(in.Subtasks),
		CreatedBy:   strings.TrimSpace(in.CreatedBy),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// UpdateDetails replaces the editable fields of a task.
func (t *Task) UpdateDetails(title, description, category, priority string, dueAt *time.Time, assigned []Assignee, subtasks []Subtask, now time.Time) error {
	title = strings.TrimSpace(title)
	category = strings.TrimSpace(category)
	if title == "" {
		return ErrInvalidTitle
	}
	if category == "" {
		return ErrInvalidCategory
	}
	t.Title = title
	t.Description = strings.TrimSpace(description)
	t.Category = category
	t.Priority = ClassifyPriority(priority)
	t.DueAt = normalizeDueAt(dueAt)
	t.Assigned = filterAssignees(assigned)
	t.Subtasks = filterSubtasks(subtasks)
	t.UpdatedAt = now.UTC()
	return nil
}

// MoveTo places the task on another status column.
func (t *Task) MoveTo(status Status, now time.Time) {
	t.Status = ParseStatus(string(status))
	t.UpdatedAt = now.UTC()
}

// SetSubtaskDone flips the done flag of the subtask at index. It reports
// false when the index no longer references a live subtask, so callers can
// treat stale UI references as a no-op.
func (t *Task) SetSubtaskDone(index int, done bool) bool {
	if index < 0 || index >= len(t.Subtasks) {
		return false
	}
	t.Subtasks[index].Done = done
	return true
}

// SubtaskProgress returns the completed and total checklist counts.
func (t Task) SubtaskProgress() (done, total int) {
	for _, subtask := range t.Subtasks {
		if subtask.Done {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// normalizeDueAt truncates due dates to whole days in UTC.
func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC().Truncate(24 * time.Hour)
	return &ts
}

// filterSubtasks drops checklist entries whose title resolved empty.
func filterSubtasks(subtasks []Subtask) []Subtask {
	out := make([]Subtask, 0, len(subtasks))
	for _, subtask := range subtasks {
		if subtask.Title == "" {
			continue
		}
		out = append(out, subtask)
	}
	return out
}

// filterAssignees drops entries without a usable name or contact reference.
func filterAssignees(assigned []Assignee) []Assignee {
	out := make([]Assignee, 0, len(assigned))
	for _, a := range assigned {
		a.ContactID = strings.TrimSpace(a.ContactID)
		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" && a.ContactID == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
