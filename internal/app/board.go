package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Logger is the subset of the runtime logger the board service needs.
// *charmbracelet/log.Logger satisfies it.
type Logger interface {
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}

// ServiceConfig holds configuration for the board service.
type ServiceConfig struct {
	CreatedBy  string
	Categories []string
	Logger     Logger
}

// defaultCategories stores the category choices offered by the task form.
func defaultCategories() []string {
	return []string{"Technical Task", "User Story"}
}

// Service owns the authoritative in-memory task collection and mediates
// every mutation between the board, the overlay forms, and the persistence
// collaborators. Mutations land in memory synchronously relative to the
// triggering event; the remote store is updated afterwards (optimistic
// policy), and failures surface to the caller for a reconciling refresh.
type Service struct {
	store        TaskStore
	contacts     ContactStore
	idGen        IDGenerator
	clock        Clock
	logger       Logger
	createdBy    string
	categoryOpts []string

	mu        sync.Mutex
	board     []domain.Task
	directory []domain.Contact
}

// NewService constructs the board service.
func NewService(store TaskStore, contacts ContactStore, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = defaultCategories()
	}
	return &Service{
		store:        store,
		contacts:     contacts,
		idGen:        idGen,
		clock:        clock,
		logger:       logger,
		createdBy:    strings.TrimSpace(cfg.CreatedBy),
		categoryOpts: categories,
	}
}

// Categories returns the category choices for the task form.
func (s *Service) Categories() []string {
	return append([]string(nil), s.categoryOpts...)
}

// Refresh reloads the board and the contact directory from the stores.
// A task load failure substitutes an empty collection so the board stays
// functional; the error still returns for the status line. A contact load
// failure only logs: cards degrade to inline assignee names.
func (s *Service) Refresh(ctx context.Context) error {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		s.logger.Error("task load failed, rendering empty board", "err", err)
		tasks = []domain.Task{}
	}

	var contactErr error
	contacts := []domain.Contact{}
	if s.contacts != nil {
		contacts, contactErr = s.contacts.ListContacts(ctx)
		if contactErr != nil {
			s.logger.Warn("contact load failed, avatars fall back to inline names", "err", contactErr)
			contacts = []domain.Contact{}
		}
	}

	s.mu.Lock()
	s.board = tasks
	s.directory = contacts
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	return nil
}

// Tasks returns a copy of the in-memory task collection.
func (s *Service) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Task(nil), s.board...)
}

// Contacts returns a copy of the contact directory.
func (s *Service) Contacts() []domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Contact(nil), s.directory...)
}

// ContactIndex returns contacts keyed by id for assignee resolution.
func (s *Service) ContactIndex() map[string]domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := make(map[string]domain.Contact, len(s.directory))
	for _, contact := range s.directory {
		index[contact.ID] = contact
	}
	return index
}

// TaskByID locates a task in the in-memory collection.
func (s *Service) TaskByID(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskByIDLocked(id)
}

func (s *Service) taskByIDLocked(id string) (domain.Task, bool) {
	for _, task := range s.board {
		if task.ID == id {
			return task, true
		}
	}
	return domain.Task{}, false
}

// Column is one rendered status lane.
type Column struct {
	Status domain.Status
	Title  string
	Tasks  []domain.Task
}

// Columns groups the in-memory collection by lifecycle status in board
// order. Statuses are canonical in memory, so no unknown bucket exists here;
// the decode boundary already routed stray values to todo.
func (s *Service) Columns() []Column {
	tasks := s.Tasks()
	columns := make([]Column, 0, 4)
	for _, status := range domain.Statuses() {
		column := Column{Status: status, Title: status.Label()}
		for _, task := range tasks {
			if task.Status == status {
				column.Tasks = append(column.Tasks, task)
			}
		}
		columns = append(columns, column)
	}
	return columns
}

// SearchTasks filters the in-memory collection by a case-insensitive match
// on title or description.
func (s *Service) SearchTasks(query string) []domain.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	tasks := s.Tasks()
	if query == "" {
		return tasks
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), query) ||
			strings.Contains(strings.ToLower(task.Description), query) {
			out = append(out, task)
		}
	}
	return out
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	DueAt       *time.Time
	Status      domain.Status
	Assigned    []domain.Assignee
	Subtasks    []domain.Subtask
}

// CreateTask validates, persists, and then commits a new task to the board.
// Creation is not optimistic: a task that never reached the store would
// vanish on the next refresh anyway.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	task, err := domain.NewTask(domain.TaskInput{
		ID:          s.idGen(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		DueAt:       in.DueAt,
		Status:      in.Status,
		Assigned:    in.Assigned,
		Subtasks:    in.Subtasks,
		CreatedBy:   s.createdBy,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.mu.Lock()
	s.board = append(s.board, task)
	s.mu.Unlock()
	return task, nil
}

// UpdateTaskInput holds input values for update task operations.
type UpdateTaskInput struct {
	TaskID      string
	Title       string
	Description string
	Category    string
	Priority    string
	DueAt       *time.Time
	Assigned    []domain.Assignee
	Subtasks    []domain.Subtask
}

// UpdateTask rewrites the editable fields of a task and persists the result.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	s.mu.Lock()
	task, ok := s.taskByIDLocked(in.TaskID)
	s.mu.Unlock()
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	if err := task.UpdateDetails(in.Title, in.Description, in.Category, in.Priority, in.DueAt, in.Assigned, in.Subtasks, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	s.replaceTask(task)
	return task, nil
}

// MoveTask places a task on another status column. The board mutates first;
// a persistence failure returns alongside the already-moved task so the
// caller can surface a sync warning and reconcile.
func (s *Service) MoveTask(ctx context.Context, taskID string, status domain.Status) (domain.Task, error) {
	s.mu.Lock()
	task, ok := s.taskByIDLocked(taskID)
	if !ok {
		s.mu.Unlock()
		return domain.Task{}, ErrNotFound
	}
	task.MoveTo(status, s.clock())
	s.replaceTaskLocked(task)
	s.mu.Unlock()

	if err := s.store.SaveTask(ctx, task); err != nil {
		return task, fmt.Errorf("persist move: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task. The in-memory collection drops the entry
// synchronously (matched by string id) before the remote delete is issued,
// so the board reflects the removal regardless of remote latency. A remote
// failure surfaces for a reconciling refresh instead of being swallowed.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	kept := s.board[:0]
	found := false
	for _, task := range s.board {
		if task.ID == taskID {
			found = true
			continue
		}
		kept = append(kept, task)
	}
	s.board = kept
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}

	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		s.logger.Error("remote delete failed", "task_id", taskID, "err", err)
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ToggleSubtask flips the done flag on one checklist entry. A stale task id
// or subtask index is a silent no-op: the triggering checkbox may
// legitimately reference data that a re-render already removed. On success
// the board mutates immediately and the task persists afterwards; a
// persistence failure returns with the mutated task (optimistic update,
// caller reconciles).
func (s *Service) ToggleSubtask(ctx context.Context, taskID string, index int, done bool) (domain.Task, bool, error) {
	s.mu.Lock()
	task, ok := s.taskByIDLocked(taskID)
	if !ok {
		s.mu.Unlock()
		return domain.Task{}, false, nil
	}
	task.Subtasks = append([]domain.Subtask(nil), task.Subtasks...)
	if !task.SetSubtaskDone(index, done) {
		s.mu.Unlock()
		return domain.Task{}, false, nil
	}
	task.UpdatedAt = s.clock().UTC()
	s.replaceTaskLocked(task)
	s.mu.Unlock()

	if err := s.store.SaveTask(ctx, task); err != nil {
		s.logger.Warn("subtask toggle not persisted", "task_id", taskID, "index", index, "err", err)
		return task, true, fmt.Errorf("persist subtask toggle: %w", err)
	}
	return task, true, nil
}

// ResolveAssignees merges directory records into a task's assignee entries:
// a matching contact contributes its display name and color, inline values
// win only when no contact resolves. Entries that end up nameless drop out
// before rendering.
func (s *Service) ResolveAssignees(task domain.Task) []domain.Assignee {
	index := s.ContactIndex()
	out := make([]domain.Assignee, 0, len(task.Assigned))
	for _, assignee := range task.Assigned {
		if contact, ok := index[assignee.ContactID]; ok {
			assignee.Name = contact.Name
			if contact.Color != "" {
				assignee.Color = contact.Color
			}
		}
		if strings.TrimSpace(assignee.Name) == "" {
			continue
		}
		out = append(out, assignee)
	}
	return out
}

// replaceTask swaps the stored copy of a task by id.
func (s *Service) replaceTask(task domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceTaskLocked(task)
}

func (s *Service) replaceTaskLocked(task domain.Task) {
	for idx := range s.board {
		if s.board[idx].ID == task.ID {
			s.board[idx] = task
			return
		}
	}
}
