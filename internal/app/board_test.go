package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

type fakeStore struct {
	tasks []domain.Task

	listErr   error
	saveErr   error
	createErr error
	deleteErr error

	saved   []domain.Task
	deleted []string

	deleteEntered chan struct{}
	deleteRelease chan struct{}
}

func (f *fakeStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Task(nil), f.tasks...), nil
}

func (f *fakeStore) CreateTask(ctx context.Context, task domain.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeStore) SaveTask(ctx context.Context, task domain.Task) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, task)
	return nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, taskID string) error {
	if f.deleteEntered != nil {
		close(f.deleteEntered)
		<-f.deleteRelease
	}
	f.deleted = append(f.deleted, taskID)
	return f.deleteErr
}

type fakeContacts struct {
	contacts []domain.Contact
	err      error
}

func (f *fakeContacts) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Contact(nil), f.contacts...), nil
}

func fixedClock(t *testing.T) Clock {
	t.Helper()
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	svc := NewService(store, &fakeContacts{}, sequentialIDs(), fixedClock(t), ServiceConfig{CreatedBy: "tester"})
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	return svc
}

func seedTask(id, title string, status domain.Status, subtasks ...domain.Subtask) domain.Task {
	return domain.Task{
		ID:       id,
		Title:    title,
		Category: "Technical Task",
		Priority: domain.PriorityMedium,
		Status:   status,
		Subtasks: subtasks,
	}
}

func TestRefreshLoadFailureSubstitutesEmptyBoard(t *testing.T) {
	store := &fakeStore{listErr: errors.New("network down")}
	svc := NewService(store, &fakeContacts{}, sequentialIDs(), fixedClock(t), ServiceConfig{})

	err := svc.Refresh(context.Background())
	if err == nil {
		t.Fatal("Refresh() error = nil, want load failure surfaced")
	}
	if got := svc.Tasks(); len(got) != 0 {
		t.Fatalf("Tasks() after failed load = %d entries, want 0", len(got))
	}
	// Board must still accept renders.
	columns := svc.Columns()
	if len(columns) != 4 {
		t.Fatalf("Columns() = %d lanes, want 4", len(columns))
	}
}

func TestColumnsGroupByStatusInBoardOrder(t *testing.T) {
	store := &fakeStore{tasks: []domain.Task{
		seedTask("t1", "alpha", domain.StatusDone),
		seedTask("t2", "beta", domain.StatusTodo),
		seedTask("t3", "gamma", domain.StatusFeedback),
		seedTask("t4", "delta", domain.StatusTodo),
	}}
	svc := newTestService(t, store)

	columns := svc.Columns()
	wantOrder := []domain.Status{domain.StatusTodo, domain.StatusProgress, domain.StatusFeedback, domain.StatusDone}
	for idx, status := range wantOrder {
		if columns[idx].Status != status {
			t.Fatalf("column %d status = %q, want %q", idx, columns[idx].Status, status)
		}
	}
	if got := len(columns[0].Tasks); got != 2 {
		t.Errorf("todo column = %d tasks, want 2", got)
	}
	if got := len(columns[1].Tasks); got != 0 {
		t.Errorf("in-progress column = %d tasks, want 0", got)
	}
}

func TestDeleteTaskRemovesFromMemoryWhileRemotePending(t *testing.T) {
	store := &fakeStore{
		tasks:         []domain.Task{seedTask("t1", "doomed", domain.StatusTodo), seedTask("t2", "keeper", domain.StatusTodo)},
		deleteEntered: make(chan struct{}),
		deleteRelease: make(chan struct{}),
	}
	svc := newTestService(t, store)

	done := make(chan error, 1)
	go func() { done <- svc.DeleteTask(context.Background(), "t1") }()

	<-store.deleteEntered
	// Remote delete has not returned yet; the board must already be clean.
	for _, task := range svc.Tasks() {
		if task.ID == "t1" {
			t.Fatal("t1 still in memory while remote delete pending")
		}
	}
	close(store.deleteRelease)
	if err := <-done; err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "t1" {
		t.Fatalf("store deletions = %v, want [t1]", store.deleted)
	}
}

func TestDeleteTaskRemoteFailureSurfaces(t *testing.T) {
	store := &fakeStore{
		tasks:     []domain.Task{seedTask("t1", "doomed", domain.StatusTodo)},
		deleteErr: errors.New("backend unavailable"),
	}
	svc := newTestService(t, store)

	err := svc.DeleteTask(context.Background(), "t1")
	if err == nil {
		t.Fatal("DeleteTask() error = nil, want remote failure surfaced")
	}
	if got := len(svc.Tasks()); got != 0 {
		t.Fatalf("Tasks() = %d entries, want 0 (removal stays until reconcile)", got)
	}
}

func TestDeleteTaskUnknownID(t *testing.T) {
	store := &fakeStore{tasks: []domain.Task{seedTask("t1", "keeper", domain.StatusTodo)}}
	svc := newTestService(t, store)

	if err := svc.DeleteTask(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteTask(ghost) error = %v, want ErrNotFound", err)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("remote delete issued for unknown id: %v", store.deleted)
	}
}

func TestToggleSubtaskAbsentTaskIsSilentNoOp(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	_, toggled, err := svc.ToggleSubtask(context.Background(), "ghost", 0, true)
	if err != nil {
		t.Fatalf("ToggleSubtask() error = %v, want nil", err)
	}
	if toggled {
		t.Fatal("ToggleSubtask() on absent task reported a toggle")
	}
	if len(store.saved) != 0 {
		t.Fatal("no-op toggle reached the store")
	}
}

func TestToggleSubtaskStaleIndexIsSilentNoOp(t *testing.T) {
	store := &fakeStore{tasks: []domain.Task{
		seedTask("t1", "checklist", domain.StatusTodo, domain.Subtask{Title: "only one"}),
	}}
	svc := newTestService(t, store)

	_, toggled, err := svc.ToggleSubtask(context.Background(), "t1", 3, true)
	if err != nil || toggled {
		t.Fatalf("ToggleSubtask(stale index) = (toggled=%v, err=%v), want silent no-op", toggled, err)
	}
	if len(store.saved) != 0 {
		t.Fatal("stale-index toggle reached the store")
	}
}

func TestToggleSubtaskMutatesThenPersists(t *testing.T) {
	store := &fakeStore{tasks: []domain.Task{
		seedTask("t1", "checklist", domain.StatusTodo,
			domain.Subtask{Title: "first"}, domain.Subtask{Title: "second", Done: true}),
	}}
	svc := newTestService(t, store)

	task, toggled, err := svc.ToggleSubtask(context.Background(), "t1", 0, true)
	if err != nil {
		t.Fatalf("ToggleSubtask() error = %v", err)
	}
	if !toggled {
		t.Fatal("ToggleSubtask() reported no toggle")
	}
	if !task.Subtasks[0].Done {
		t.Fatal("subtask 0 not marked done")
	}
	if done, total := task.SubtaskProgress(); done != 2 || total != 2 {
		t.Fatalf("SubtaskProgress() = %d/%d, want 2/2", done, total)
	}
	if len(store.saved) != 1 {
		t.Fatalf("store saves = %d, want 1", len(store.saved))
	}
	fromMemory, ok := svc.TaskByID("t1")
	if !ok || !fromMemory.Subtasks[0].Done {
		t.Fatal("in-memory collection did not keep the toggle")
	}
}

func TestToggleSubtaskLeavesEarlierSnapshotsUntouched(t *testing.T) {
	store := &fakeStore{tasks: []domain.Task{
		seedTask("t1", "checklist", domain.StatusTodo,
			domain.Subtask{Title: "first"}, domain.Subtask{Title: "second"}),
	}}
	svc := newTestService(t, store)

	before := svc.Tasks()
	if _, _, err := svc.ToggleSubtask(context.Background(), "t1", 0, true); err != nil {
		t.Fatalf("ToggleSubtask() error = %v", err)
	}
	if before[0].Subtasks[0].Done {
		t.Fatal("snapshot taken before the toggle saw the mutation")
	}
	after, _ := svc.TaskByID("t1")
	if !after.Subtasks[0].Done {
		t.Fatal("in-memory collection did not keep the toggle")
	}
}

func TestToggleSubtaskPersistFailureKeepsLocalState(t *testing.T) {
	store := &fakeStore{
		tasks:   []domain.Task{seedTask("t1", "checklist", domain.StatusTodo, domain.Subtask{Title: "first"})},
		saveErr: errors.New("write refused"),
	}
	svc := newTestService(t, store)

	task, toggled, err := svc.ToggleSubtask(context.Background(), "t1", 0, true)
	if !toggled {
		t.Fatal("ToggleSubtask() reported no toggle")
	}
	if err == nil {
		t.Fatal("ToggleSubtask() error = nil, want persist failure surfaced")
	}
	if !task.Subtasks[0].Done {
		t.Fatal("returned task lost the local toggle")
	}
	fromMemory, _ := svc.TaskByID("t1")
	if !fromMemory.Subtasks[0].Done {
		t.Fatal("in-memory collection lost the local toggle")
	}
}

func TestCreateTaskPersistsThenCommits(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	due := time.Date(2026, 4, 1, 18, 45, 0, 0, time.UTC)
	task, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "Ship the release",
		Category: "Technical Task",
		Priority: "This is URGENT!!",
		DueAt:    &due,
		Subtasks: []domain.Subtask{{Title: "tag"}, {Title: ""}},
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.ID != "task-1" {
		t.Errorf("task id = %q, want task-1", task.ID)
	}
	if task.Priority != domain.PriorityUrgent {
		t.Errorf("priority = %q, want urgent", task.Priority)
	}
	if task.Status != domain.StatusTodo {
		t.Errorf("status = %q, want todo", task.Status)
	}
	if len(task.Subtasks) != 1 {
		t.Errorf("subtasks = %d, want 1 (empty title dropped)", len(task.Subtasks))
	}
	if task.DueAt == nil || !task.DueAt.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due date = %v, want truncated to 2026-04-01", task.DueAt)
	}
	if task.CreatedBy != "tester" {
		t.Errorf("createdBy = %q, want tester", task.CreatedBy)
	}
	if got := len(svc.Tasks()); got != 1 {
		t.Fatalf("in-memory collection = %d tasks, want 1", got)
	}
}

func TestCreateTaskStoreFailureKeepsBoardClean(t *testing.T) {
	store := &fakeStore{createErr: errors.New("insert refused")}
	svc := newTestService(t, store)

	_, err := svc.CreateTask(context.Background(), CreateTaskInput{Title: "x", Category: "User Story"})
	if err == nil {
		t.Fatal("CreateTask() error = nil, want store failure")
	}
	if got := len(svc.Tasks()); got != 0 {
		t.Fatalf("failed create left %d tasks in memory", got)
	}
}

func TestUpdateTaskUnknownID(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	_, err := svc.UpdateTask(context.Background(), UpdateTaskInput{TaskID: "ghost", Title: "x", Category: "y"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateTask(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestMoveTaskPersistFailureKeepsLocalMove(t *testing.T) {
	store := &fakeStore{
		tasks:   []domain.Task{seedTask("t1", "wanderer", domain.StatusTodo)},
		saveErr: errors.New("write refused"),
	}
	svc := newTestService(t, store)

	task, err := svc.MoveTask(context.Background(), "t1", domain.StatusProgress)
	if err == nil {
		t.Fatal("MoveTask() error = nil, want persist failure surfaced")
	}
	if task.Status != domain.StatusProgress {
		t.Fatalf("returned status = %q, want in-progress", task.Status)
	}
	fromMemory, _ := svc.TaskByID("t1")
	if fromMemory.Status != domain.StatusProgress {
		t.Fatal("in-memory collection lost the local move")
	}
}

func TestSearchTasksMatchesTitleAndDescription(t *testing.T) {
	store := &fakeStore{tasks: []domain.Task{
		seedTask("t1", "Fix login flow", domain.StatusTodo),
		func() domain.Task {
			task := seedTask("t2", "Refactor parser", domain.StatusDone)
			task.Description = "covers the LOGIN edge cases"
			return task
		}(),
		seedTask("t3", "Write docs", domain.StatusTodo),
	}}
	svc := newTestService(t, store)

	got := svc.SearchTasks("  login ")
	if len(got) != 2 {
		t.Fatalf("SearchTasks(login) = %d tasks, want 2", len(got))
	}
	if all := svc.SearchTasks(""); len(all) != 3 {
		t.Fatalf("SearchTasks(empty) = %d tasks, want 3", len(all))
	}
}

func TestResolveAssigneesMergesDirectory(t *testing.T) {
	store := &fakeStore{}
	contacts := &fakeContacts{contacts: []domain.Contact{
		{ID: "c1", Name: "Ada Lovelace", Color: "#FF7A00"},
	}}
	svc := NewService(store, contacts, sequentialIDs(), fixedClock(t), ServiceConfig{})
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	task := seedTask("t1", "pairing", domain.StatusTodo)
	task.Assigned = []domain.Assignee{
		{ContactID: "c1", Name: "c1"},
		{Name: "Inline Person", Color: "#123456"},
		{ContactID: "missing"},
	}
	resolved := svc.ResolveAssignees(task)
	if len(resolved) != 2 {
		t.Fatalf("ResolveAssignees() = %d entries, want 2", len(resolved))
	}
	if resolved[0].Name != "Ada Lovelace" || resolved[0].Color != "#FF7A00" {
		t.Errorf("directory entry not merged: %+v", resolved[0])
	}
	if resolved[1].Name != "Inline Person" {
		t.Errorf("inline entry lost: %+v", resolved[1])
	}
}

func TestRefreshContactFailureIsNonFatal(t *testing.T) {
	store := &fakeStore{tasks: []domain.Task{seedTask("t1", "alpha", domain.StatusTodo)}}
	contacts := &fakeContacts{err: errors.New("directory offline")}
	svc := NewService(store, contacts, sequentialIDs(), fixedClock(t), ServiceConfig{})

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v, want nil when only contacts fail", err)
	}
	if got := len(svc.Tasks()); got != 1 {
		t.Fatalf("Tasks() = %d, want 1", got)
	}
	if got := len(svc.Contacts()); got != 0 {
		t.Fatalf("Contacts() = %d, want 0", got)
	}
}
