package domain

import "strings"

// Status identifies one board column in the task lifecycle.
type Status string

// Status values in board order.
const (
	StatusTodo     Status = "todo"
	StatusProgress Status = "in-progress"
	StatusFeedback Status = "await-feedback"
	StatusDone     Status = "done"
)

// statusLabels stores display names for board column headers.
var statusLabels = map[Status]string{
	StatusTodo:     "To Do",
	StatusProgress: "In Progress",
	StatusFeedback: "Await Feedback",
	StatusDone:     "Done",
}

// Statuses returns all lifecycle statuses in board order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusProgress, StatusFeedback, StatusDone}
}

// ParseStatus maps persisted status strings onto the known enumeration.
// Unrecognized values route to StatusTodo so stale records still land on
// a visible column instead of vanishing from the board.
func ParseStatus(raw string) Status {
	folded := strings.ToLower(strings.TrimSpace(raw))
	folded = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(folded)
	switch folded {
	case "todo", "open":
		return StatusTodo
	case "inprogress", "progress", "doing":
		return StatusProgress
	case "awaitfeedback", "awaitingfeedback", "feedback", "review":
		return StatusFeedback
	case "done", "completed", "closed":
		return StatusDone
	default:
		return StatusTodo
	}
}

// Label returns the display name for a status column header.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return statusLabels[StatusTodo]
}

// Next returns the status one column to the right, clamped at done.
func (s Status) Next() Status {
	all := Statuses()
	for idx, status := range all {
		if status == s && idx < len(all)-1 {
			return all[idx+1]
		}
	}
	return StatusDone
}

// Prev returns the status one column to the left, clamped at todo.
func (s Status) Prev() Status {
	all := Statuses()
	for idx, status := range all {
		if status == s && idx > 0 {
			return all[idx-1]
		}
	}
	return StatusTodo
}
