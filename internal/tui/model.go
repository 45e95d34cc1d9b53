package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// Service is the board surface the TUI drives.
type Service interface {
	Refresh(context.Context) error
	Columns() []app.Column
	Contacts() []domain.Contact
	TaskByID(string) (domain.Task, bool)
	SearchTasks(string) []domain.Task
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	UpdateTask(context.Context, app.UpdateTaskInput) (domain.Task, error)
	MoveTask(context.Context, string, domain.Status) (domain.Task, error)
	DeleteTask(context.Context, string) error
	ToggleSubtask(context.Context, string, int, bool) (domain.Task, bool, error)
	ResolveAssignees(domain.Task) []domain.Assignee
	Categories() []string
}

// task-form field indexes in focus order.
const (
	formFieldTitle = iota
	formFieldDescription
	formFieldDue
	formFieldCategory
	formFieldPriority
	formFieldAssignees
	formFieldSubtaskInput
	formFieldSubtaskList
	formFieldCount
)

// text-input slots (category/priority/assignees/list are selectors).
const (
	inputTitle = iota
	inputDescription
	inputDue
	inputSubtask
	inputCount
)

const (
	titleCharLimit       = 80
	descriptionCharLimit = 240
)

// priorityOptions stores the form selector order.
var priorityOptions = []domain.Priority{
	domain.PriorityUrgent,
	domain.PriorityMedium,
	domain.PriorityLow,
}

// Model drives the board view and the single overlay slot above it.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int

	status string

	help help.Model
	keys keyMap

	taskFields   TaskFieldConfig
	confirmTexts ConfirmTexts
	greetingName string
	showGreeting bool
	maxAvatars   int

	columns  []app.Column
	contacts []domain.Contact

	selectedColumn int
	selectedTask   int

	overlay overlayController

	searchInput   textinput.Model
	searchQuery   string
	searchApplied bool

	formInputs         []textinput.Model
	formFocus          int
	formCategoryIdx    int
	formPriorityIdx    int
	formAssigned       map[string]struct{}
	formAssigneeCursor int
	formSubtasks       []domain.Subtask
	formSubtaskCursor  int
	editingTaskID      string

	detailTaskID     string
	detailSubtaskIdx int
	markdown         markdownRenderer

	pendingConfirm  confirmSpec
	pendingDeleteID string
	confirmChoice   int

	pendingFocusTaskID string
}

// loadedMsg carries a fresh board snapshot through update handling.
type loadedMsg struct {
	columns  []app.Column
	contacts []domain.Contact
	err      error
}

// actionMsg carries mutation outcomes through update handling.
type actionMsg struct {
	err         error
	status      string
	reload      bool
	resnapshot  bool
	focusTaskID string
}

// NewModel constructs the board model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := textinput.New()
	searchInput.Prompt = ""
	searchInput.Placeholder = "title or description"
	searchInput.CharLimit = 120
	m := Model{
		svc:          svc,
		status:       "loading...",
		help:         h,
		keys:         newKeyMap(),
		taskFields:   DefaultTaskFieldConfig(),
		showGreeting: true,
		maxAvatars:   defaultMaxAvatars,
		searchInput:  searchInput,
		formAssigned: map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.columns = msg.columns
		m.contacts = msg.contacts
		m.clampSelection()
		if m.pendingFocusTaskID != "" {
			m.focusTaskByID(m.pendingFocusTaskID)
			m.pendingFocusTaskID = ""
		}
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID != "" {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		if msg.reload {
			return m, m.loadData
		}
		if msg.resnapshot {
			m.columns = m.snapshotColumns()
			m.clampSelection()
			if m.pendingFocusTaskID != "" {
				m.focusTaskByID(m.pendingFocusTaskID)
				m.pendingFocusTaskID = ""
			}
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.overlay.IsOpen() {
			return m.handleOverlayKey(msg)
		}
		return m.handleBoardKey(msg)

	default:
		return m, nil
	}
}

// loadData refreshes the board from the stores and snapshots the columns.
// A failed refresh still delivers the (empty but functional) board.
func (m Model) loadData() tea.Msg {
	err := m.svc.Refresh(context.Background())
	return loadedMsg{
		columns:  m.snapshotColumns(),
		contacts: m.svc.Contacts(),
		err:      err,
	}
}

// snapshotColumns reads the current lane grouping, applying the active
// search filter when one is set.
func (m Model) snapshotColumns() []app.Column {
	if !m.searchApplied || strings.TrimSpace(m.searchQuery) == "" {
		return m.svc.Columns()
	}
	matches := m.svc.SearchTasks(m.searchQuery)
	columns := make([]app.Column, 0, 4)
	for _, status := range domain.Statuses() {
		column := app.Column{Status: status, Title: status.Label()}
		for _, task := range matches {
			if task.Status == status {
				column.Tasks = append(column.Tasks, task)
			}
		}
		columns = append(columns, column)
	}
	return columns
}

// ---- board keys ----

func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		if m.searchApplied || m.searchQuery != "" {
			m.searchApplied = false
			m.searchQuery = ""
			m.columns = m.snapshotColumns()
			m.clampSelection()
			m.status = "search cleared"
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		tasks := m.currentColumnTasks()
		if len(tasks) > 0 && m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		m.help.ShowAll = false
		m.startTaskForm(nil)
		return m, m.focusFormField(formFieldTitle)
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskOnBoard()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.help.ShowAll = false
		m.startTaskForm(&task)
		return m, m.focusFormField(formFieldTitle)
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskOnBoard()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.help.ShowAll = false
		m.detailTaskID = task.ID
		m.detailSubtaskIdx = 0
		m.overlay.Open(overlayTaskDetail)
		m.status = "task detail"
		return m, nil
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskOnBoard()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.openDeleteConfirm(task)
		return m, nil
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.moveSelectedTask(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.moveSelectedTask(1)
	case key.Matches(msg, m.keys.search):
		m.help.ShowAll = false
		m.searchInput.SetValue(m.searchQuery)
		m.overlay.Open(overlaySearch)
		m.status = "search"
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.copyID):
		task, ok := m.selectedTaskOnBoard()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, copyTaskIDCmd(task.ID)
	default:
		return m, nil
	}
}

func (m Model) moveSelectedTask(delta int) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskOnBoard()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	statuses := domain.Statuses()
	current := 0
	for idx, status := range statuses {
		if status == task.Status {
			current = idx
			break
		}
	}
	target := current + delta
	if target < 0 || target >= len(statuses) {
		return m, nil
	}
	m.pendingFocusTaskID = task.ID
	return m, m.moveTaskCmd(task.ID, statuses[target])
}

func (m Model) moveTaskCmd(taskID string, status domain.Status) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.MoveTask(context.Background(), taskID, status); err != nil {
			// The lane changed locally; reload reconciles against the store.
			return actionMsg{status: "move not synced: " + err.Error(), reload: true, focusTaskID: taskID}
		}
		return actionMsg{status: "moved to " + status.Label(), resnapshot: true, focusTaskID: taskID}
	}
}

func (m *Model) openDeleteConfirm(task domain.Task) {
	m.pendingDeleteID = task.ID
	m.confirmChoice = 1
	m.pendingConfirm = confirmSpec{
		Title:       m.confirmTexts.Title,
		Message:     m.confirmTexts.Message,
		ConfirmText: m.confirmTexts.ConfirmText,
		CancelText:  m.confirmTexts.CancelText,
	}.withDefaults()
	if strings.TrimSpace(m.confirmTexts.Message) == "" {
		m.pendingConfirm.Message = fmt.Sprintf("Delete %q?", truncate(task.Title, 40))
	}
	m.overlay.Open(overlayConfirm)
	m.status = "confirm"
}

func (m Model) deleteTaskCmd(taskID string) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteTask(context.Background(), taskID); err != nil {
			return actionMsg{status: "delete not synced: " + err.Error(), reload: true}
		}
		return actionMsg{status: "task deleted", resnapshot: true}
	}
}

func copyTaskIDCmd(taskID string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(taskID); err != nil {
			return actionMsg{status: "clipboard unavailable: " + err.Error()}
		}
		return actionMsg{status: "task id copied"}
	}
}

// ---- overlay keys ----

func (m Model) handleOverlayKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.overlay.Kind() {
	case overlaySearch:
		return m.handleSearchKey(msg)
	case overlayConfirm:
		return m.handleConfirmKey(msg)
	case overlayTaskDetail:
		return m.handleDetailKey(msg)
	case overlayTaskForm:
		return m.handleFormKey(msg)
	default:
		m.overlay.Close()
		return m, nil
	}
}

func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay.Close()
		m.status = "ready"
		return m, nil
	case "ctrl+u":
		m.searchInput.SetValue("")
		return m, nil
	case "enter":
		m.searchQuery = strings.TrimSpace(m.searchInput.Value())
		m.searchApplied = m.searchQuery != ""
		m.overlay.Close()
		m.columns = m.snapshotColumns()
		m.clampSelection()
		if m.searchApplied {
			m.status = fmt.Sprintf("filtered: %s", m.searchQuery)
		} else {
			m.status = "search cleared"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	resolve := func(confirmed bool) (tea.Model, tea.Cmd) {
		// The slot always clears, whichever path resolved the dialog.
		taskID := m.pendingDeleteID
		m.pendingDeleteID = ""
		m.overlay.Close()
		if !confirmed {
			m.status = "cancelled"
			return m, nil
		}
		return m, m.deleteTaskCmd(taskID)
	}
	switch msg.String() {
	case "esc", "n":
		return resolve(false)
	case "y":
		return resolve(true)
	case "left", "h", "right", "l", "tab":
		m.confirmChoice = 1 - m.confirmChoice
		return m, nil
	case "enter":
		return resolve(m.confirmChoice == 0)
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	task, ok := m.svc.TaskByID(m.detailTaskID)
	if !ok {
		m.overlay.Close()
		m.status = "task no longer exists"
		return m, nil
	}
	switch msg.String() {
	case "esc", "q":
		m.overlay.Close()
		m.status = "ready"
		return m, nil
	case "j", "down":
		if m.detailSubtaskIdx < len(task.Subtasks)-1 {
			m.detailSubtaskIdx++
		}
		return m, nil
	case "k", "up":
		if m.detailSubtaskIdx > 0 {
			m.detailSubtaskIdx--
		}
		return m, nil
	case " ", "space":
		if len(task.Subtasks) == 0 {
			return m, nil
		}
		idx := clamp(m.detailSubtaskIdx, 0, len(task.Subtasks)-1)
		done := !task.Subtasks[idx].Done
		return m, m.toggleSubtaskCmd(task.ID, idx, done)
	case "e":
		m.startTaskForm(&task)
		return m, m.focusFormField(formFieldTitle)
	case "d":
		m.openDeleteConfirm(task)
		return m, nil
	case "y":
		return m, copyTaskIDCmd(task.ID)
	}
	return m, nil
}

func (m Model) toggleSubtaskCmd(taskID string, index int, done bool) tea.Cmd {
	return func() tea.Msg {
		_, toggled, err := m.svc.ToggleSubtask(context.Background(), taskID, index, done)
		if !toggled {
			// Stale reference; nothing changed and nothing persists.
			return actionMsg{}
		}
		if err != nil {
			return actionMsg{status: "subtask not synced: " + err.Error(), reload: true}
		}
		return actionMsg{resnapshot: true}
	}
}

// ---- task form ----

// startTaskForm opens the create/edit overlay and builds the draft state.
// The draft lives only while the overlay is open: submit and cancel both
// discard it.
func (m *Model) startTaskForm(task *domain.Task) {
	m.formInputs = make([]textinput.Model, inputCount)
	m.formInputs[inputTitle] = newModalInput("", "task title (required)", titleCharLimit)
	m.formInputs[inputDescription] = newModalInput("", "short description", descriptionCharLimit)
	m.formInputs[inputDue] = newModalInput("", "YYYY-MM-DD (required)", 10)
	m.formInputs[inputSubtask] = newModalInput("", "add subtask, enter to append", titleCharLimit)
	m.formFocus = formFieldTitle
	m.formCategoryIdx = -1
	m.formPriorityIdx = 1
	m.formAssigned = map[string]struct{}{}
	m.formAssigneeCursor = 0
	m.formSubtasks = nil
	m.formSubtaskCursor = 0
	m.editingTaskID = ""

	if task != nil {
		m.editingTaskID = task.ID
		m.formInputs[inputTitle].SetValue(task.Title)
		m.formInputs[inputDescription].SetValue(task.Description)
		if task.DueAt != nil {
			m.formInputs[inputDue].SetValue(task.DueAt.Format("2006-01-02"))
		}
		for idx, category := range m.svc.Categories() {
			if strings.EqualFold(category, task.Category) {
				m.formCategoryIdx = idx
				break
			}
		}
		for idx, priority := range priorityOptions {
			if priority == task.Priority {
				m.formPriorityIdx = idx
				break
			}
		}
		for _, assignee := range task.Assigned {
			if assignee.ContactID != "" {
				m.formAssigned[assignee.ContactID] = struct{}{}
			}
		}
		m.formSubtasks = append([]domain.Subtask(nil), task.Subtasks...)
		m.status = "edit task"
	} else {
		m.status = "new task"
	}
	m.overlay.Open(overlayTaskForm)
}

func newModalInput(prompt, placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

func (m *Model) focusFormField(idx int) tea.Cmd {
	idx = clamp(idx, 0, formFieldCount-1)
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	if slot, ok := formInputSlot(idx); ok {
		return m.formInputs[slot].Focus()
	}
	return nil
}

// formInputSlot maps a logical field to its text-input slot, when it has one.
func formInputSlot(field int) (int, bool) {
	switch field {
	case formFieldTitle:
		return inputTitle, true
	case formFieldDescription:
		return inputDescription, true
	case formFieldDue:
		return inputDue, true
	case formFieldSubtaskInput:
		return inputSubtask, true
	default:
		return 0, false
	}
}

// canSubmitForm reports the submit gating: title, due date, and category must
// all be set. Clearing any one of them disables submission immediately, since
// the check runs against the live draft.
func (m Model) canSubmitForm() bool {
	if strings.TrimSpace(m.formInputs[inputTitle].Value()) == "" {
		return false
	}
	if _, err := parseDueInput(m.formInputs[inputDue].Value()); err != nil {
		return false
	}
	return m.formCategoryIdx >= 0
}

func parseDueInput(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("due date is required")
	}
	due, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date must be YYYY-MM-DD")
	}
	return due, nil
}

func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay.Close()
		m.status = "cancelled"
		return m, nil
	case "tab":
		return m, m.focusFormField((m.formFocus + 1) % formFieldCount)
	case "shift+tab":
		return m, m.focusFormField((m.formFocus - 1 + formFieldCount) % formFieldCount)
	}

	switch m.formFocus {
	case formFieldCategory:
		categories := m.svc.Categories()
		switch msg.String() {
		case "left", "h":
			if m.formCategoryIdx > 0 {
				m.formCategoryIdx--
			} else if m.formCategoryIdx < 0 && len(categories) > 0 {
				m.formCategoryIdx = 0
			}
			return m, nil
		case "right", "l", " ", "space":
			if m.formCategoryIdx < len(categories)-1 {
				m.formCategoryIdx++
			}
			return m, nil
		case "enter":
			return m.submitTaskForm()
		}
		return m, nil

	case formFieldPriority:
		switch msg.String() {
		case "left", "h":
			if m.formPriorityIdx > 0 {
				m.formPriorityIdx--
			}
			return m, nil
		case "right", "l", " ", "space":
			if m.formPriorityIdx < len(priorityOptions)-1 {
				m.formPriorityIdx++
			}
			return m, nil
		case "enter":
			return m.submitTaskForm()
		}
		return m, nil

	case formFieldAssignees:
		switch msg.String() {
		case "up", "k":
			if m.formAssigneeCursor > 0 {
				m.formAssigneeCursor--
			}
			return m, nil
		case "down", "j":
			if m.formAssigneeCursor < len(m.contacts)-1 {
				m.formAssigneeCursor++
			}
			return m, nil
		case " ", "space":
			if len(m.contacts) == 0 {
				return m, nil
			}
			contact := m.contacts[clamp(m.formAssigneeCursor, 0, len(m.contacts)-1)]
			if _, ok := m.formAssigned[contact.ID]; ok {
				delete(m.formAssigned, contact.ID)
			} else {
				m.formAssigned[contact.ID] = struct{}{}
			}
			return m, nil
		case "enter":
			return m.submitTaskForm()
		}
		return m, nil

	case formFieldSubtaskInput:
		if msg.String() == "enter" {
			// Enter here appends the draft entry; it never submits the form.
			title := strings.TrimSpace(m.formInputs[inputSubtask].Value())
			if title == "" {
				return m, nil
			}
			m.formSubtasks = append(m.formSubtasks, domain.Subtask{Title: title})
			m.formInputs[inputSubtask].SetValue("")
			return m, nil
		}
		var cmd tea.Cmd
		m.formInputs[inputSubtask], cmd = m.formInputs[inputSubtask].Update(msg)
		return m, cmd

	case formFieldSubtaskList:
		switch msg.String() {
		case "up", "k":
			if m.formSubtaskCursor > 0 {
				m.formSubtaskCursor--
			}
			return m, nil
		case "down", "j":
			if m.formSubtaskCursor < len(m.formSubtasks)-1 {
				m.formSubtaskCursor++
			}
			return m, nil
		case "x", "backspace", "delete":
			m.removeFormSubtask(m.formSubtaskCursor)
			return m, nil
		case "enter":
			return m.submitTaskForm()
		}
		return m, nil

	default:
		if msg.String() == "enter" {
			return m.submitTaskForm()
		}
		slot, ok := formInputSlot(m.formFocus)
		if !ok {
			return m, nil
		}
		var cmd tea.Cmd
		m.formInputs[slot], cmd = m.formInputs[slot].Update(msg)
		return m, cmd
	}
}

// removeFormSubtask deletes one draft entry by index and re-derives the list.
func (m *Model) removeFormSubtask(index int) {
	if index < 0 || index >= len(m.formSubtasks) {
		return
	}
	m.formSubtasks = append(m.formSubtasks[:index], m.formSubtasks[index+1:]...)
	if m.formSubtaskCursor >= len(m.formSubtasks) && m.formSubtaskCursor > 0 {
		m.formSubtaskCursor--
	}
}

func (m Model) submitTaskForm() (tea.Model, tea.Cmd) {
	if !m.canSubmitForm() {
		m.status = "title, due date and category are required"
		return m, nil
	}
	due, err := parseDueInput(m.formInputs[inputDue].Value())
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	categories := m.svc.Categories()
	category := categories[clamp(m.formCategoryIdx, 0, len(categories)-1)]
	priority := priorityOptions[clamp(m.formPriorityIdx, 0, len(priorityOptions)-1)]
	assigned := m.formAssignedEntries()
	subtasks := append([]domain.Subtask(nil), m.formSubtasks...)
	title := m.formInputs[inputTitle].Value()
	description := m.formInputs[inputDescription].Value()
	editingID := m.editingTaskID

	m.overlay.Close()
	if editingID != "" {
		return m, func() tea.Msg {
			task, err := m.svc.UpdateTask(context.Background(), app.UpdateTaskInput{
				TaskID:      editingID,
				Title:       title,
				Description: description,
				Category:    category,
				Priority:    string(priority),
				DueAt:       &due,
				Assigned:    assigned,
				Subtasks:    subtasks,
			})
			if err != nil {
				return actionMsg{err: fmt.Errorf("update failed: %w", err), reload: true}
			}
			return actionMsg{status: "task updated", resnapshot: true, focusTaskID: task.ID}
		}
	}
	return m, func() tea.Msg {
		task, err := m.svc.CreateTask(context.Background(), app.CreateTaskInput{
			Title:       title,
			Description: description,
			Category:    category,
			Priority:    string(priority),
			DueAt:       &due,
			Assigned:    assigned,
			Subtasks:    subtasks,
		})
		if err != nil {
			return actionMsg{err: fmt.Errorf("create failed: %w", err)}
		}
		return actionMsg{status: "task created", resnapshot: true, focusTaskID: task.ID}
	}
}

// formAssignedEntries resolves the toggled contact ids into assignee entries
// in directory order.
func (m Model) formAssignedEntries() []domain.Assignee {
	out := make([]domain.Assignee, 0, len(m.formAssigned))
	for _, contact := range m.contacts {
		if _, ok := m.formAssigned[contact.ID]; !ok {
			continue
		}
		out = append(out, domain.Assignee{ContactID: contact.ID, Name: contact.Name, Color: contact.Color})
	}
	return out
}

// ---- selection helpers ----

func (m *Model) clampSelection() {
	m.selectedColumn = clamp(m.selectedColumn, 0, max(0, len(m.columns)-1))
	m.selectedTask = clamp(m.selectedTask, 0, max(0, len(m.currentColumnTasks())-1))
}

func (m Model) currentColumnTasks() []domain.Task {
	if len(m.columns) == 0 {
		return nil
	}
	return m.columns[clamp(m.selectedColumn, 0, len(m.columns)-1)].Tasks
}

func (m Model) selectedTaskOnBoard() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

func (m *Model) focusTaskByID(taskID string) {
	for colIdx, column := range m.columns {
		for taskIdx, task := range column.Tasks {
			if task.ID == taskID {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				return
			}
		}
	}
}

// ---- view ----

// View handles view.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	accent := lipgloss.Color("62")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("tavla")
	if m.showGreeting {
		header += "  " + statusStyle.Render(greetingLine(time.Now(), m.greetingName))
	}
	if m.searchApplied && m.searchQuery != "" {
		header += statusStyle.Render("  filter: " + m.searchQuery)
	}

	body := m.renderBoard(accent, muted, dim)

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		contentHeight := max(0, m.height-lipgloss.Height(helpLine))
		content = fitLines(content, contentHeight)
	}
	fullContent := content + "\n" + helpLine

	if overlay := m.renderOverlay(accent, muted); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	view := tea.NewView(fullContent)
	view.AltScreen = true
	return view
}

func (m Model) renderBoard(accent, muted, dim color.Color) string {
	if len(m.columns) == 0 {
		return lipgloss.NewStyle().Foreground(muted).Render("no board loaded • r reload")
	}
	colWidth := 28
	if m.width > 0 {
		colWidth = max(20, m.width/len(m.columns)-2)
	}
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(dim)

	columnViews := make([]string, 0, len(m.columns))
	for colIdx, column := range m.columns {
		lines := []string{colTitle.Render(fmt.Sprintf("%s (%d)", column.Title, len(column.Tasks)))}
		if len(column.Tasks) == 0 {
			lines = append(lines, emptyStyle.Render("(no tasks)"))
		}
		for taskIdx, task := range column.Tasks {
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
			card := renderCard(task, m.svc.ResolveAssignees(task), cardContext{
				width:      colWidth,
				selected:   selected,
				fields:     m.taskFields,
				maxAvatars: m.maxAvatars,
			})
			lines = append(lines, card)
		}
		columnViews = append(columnViews, lipgloss.NewStyle().
			Width(colWidth).
			MarginRight(1).
			Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

func (m Model) renderOverlay(accent, muted color.Color) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if m.width > 8 {
		boxStyle = boxStyle.Width(clamp(m.width-8, 32, 80))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	switch m.overlay.Kind() {
	case overlaySearch:
		queryInput := m.searchInput
		queryInput.SetWidth(max(18, m.width/3))
		lines := []string{
			titleStyle.Render("Search"),
			queryInput.View(),
			hintStyle.Render("enter apply • ctrl+u clear • esc close"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case overlayConfirm:
		lines := []string{
			titleStyle.Render(m.pendingConfirm.Title),
			m.pendingConfirm.Message,
			"",
			renderConfirmButtons(m.pendingConfirm, m.confirmChoice, accent, muted),
			hintStyle.Render("y confirm • n/esc cancel • enter choose"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case overlayTaskDetail:
		return m.renderTaskDetail(boxStyle, titleStyle, hintStyle)

	case overlayTaskForm:
		return m.renderTaskForm(boxStyle, titleStyle, hintStyle, accent, muted)

	default:
		return ""
	}
}

func renderConfirmButtons(spec confirmSpec, choice int, accent, muted color.Color) string {
	confirmStyle := lipgloss.NewStyle().Foreground(muted)
	cancelStyle := lipgloss.NewStyle().Foreground(muted)
	if choice == 0 {
		confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	} else {
		cancelStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	}
	return confirmStyle.Render("["+spec.ConfirmText+"]") + "   " + cancelStyle.Render("["+spec.CancelText+"]")
}

func (m Model) renderTaskDetail(boxStyle, titleStyle, hintStyle lipgloss.Style) string {
	task, ok := m.svc.TaskByID(m.detailTaskID)
	if !ok {
		return ""
	}
	due := "-"
	if task.DueAt != nil {
		due = task.DueAt.Format("2006-01-02")
	}
	lines := []string{
		titleStyle.Render(truncate(task.Title, 72)),
		hintStyle.Render(task.Category + " • " + task.Status.Label()),
		hintStyle.Render("priority: " + task.Priority.Label() + " " + task.Priority.Glyph() + " • due: " + due),
	}
	if cluster := avatarCluster(m.svc.ResolveAssignees(task), m.maxAvatars); cluster != "" {
		lines = append(lines, cluster)
	}
	if description := m.markdown.render(task.Description, max(24, m.width-16)); description != "" {
		lines = append(lines, "", description)
	}
	if len(task.Subtasks) > 0 {
		lines = append(lines, "", titleStyle.Render("Subtasks"))
		cursor := clamp(m.detailSubtaskIdx, 0, len(task.Subtasks)-1)
		for idx, subtask := range task.Subtasks {
			check := "[ ]"
			if subtask.Done {
				check = "[x]"
			}
			row := fmt.Sprintf("%s %s", check, truncate(subtask.Title, 64))
			if idx == cursor {
				row = lipgloss.NewStyle().Bold(true).Render("> " + row)
			} else {
				row = "  " + row
			}
			lines = append(lines, row)
		}
		done, total := task.SubtaskProgress()
		if progress := progressIndicator(done, total); progress != "" {
			lines = append(lines, progress)
		}
	}
	lines = append(lines, "", hintStyle.Render("space toggle • e edit • d delete • y copy id • esc close"))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderTaskForm(boxStyle, titleStyle, hintStyle lipgloss.Style, accent, muted color.Color) string {
	formTitle := "New Task"
	if m.editingTaskID != "" {
		formTitle = "Edit Task"
	}
	labelStyle := func(field int) lipgloss.Style {
		if m.formFocus == field {
			return lipgloss.NewStyle().Bold(true).Foreground(accent)
		}
		return lipgloss.NewStyle().Foreground(muted)
	}

	titleValue := m.formInputs[inputTitle].Value()
	descriptionValue := m.formInputs[inputDescription].Value()
	lines := []string{
		titleStyle.Render(formTitle),
		labelStyle(formFieldTitle).Render("title:") + " " + m.formInputs[inputTitle].View() +
			hintStyle.Render(fmt.Sprintf("  %d/%d", len([]rune(titleValue)), titleCharLimit)),
		labelStyle(formFieldDescription).Render("description:") + " " + m.formInputs[inputDescription].View() +
			hintStyle.Render(fmt.Sprintf("  %d/%d", len([]rune(descriptionValue)), descriptionCharLimit)),
		labelStyle(formFieldDue).Render("due:") + " " + m.formInputs[inputDue].View(),
		labelStyle(formFieldCategory).Render("category:") + " " + m.renderCategorySelector(accent),
		labelStyle(formFieldPriority).Render("priority:") + " " + m.renderPrioritySelector(accent),
		labelStyle(formFieldAssignees).Render("assigned:") + " " + m.renderAssigneePicker(accent, muted),
		labelStyle(formFieldSubtaskInput).Render("subtask:") + " " + m.formInputs[inputSubtask].View(),
	}
	lines = append(lines, m.renderFormSubtaskList(accent, muted)...)

	if m.canSubmitForm() {
		lines = append(lines, hintStyle.Render("enter save • tab next field • esc cancel"))
	} else {
		lines = append(lines, hintStyle.Render("fill title, due date and category to save • esc cancel"))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderCategorySelector(accent color.Color) string {
	categories := m.svc.Categories()
	parts := make([]string, 0, len(categories))
	for idx, category := range categories {
		item := category
		if idx == m.formCategoryIdx {
			item = lipgloss.NewStyle().Bold(true).Foreground(accent).Render("(" + category + ")")
		}
		parts = append(parts, item)
	}
	if m.formCategoryIdx < 0 {
		parts = append(parts, lipgloss.NewStyle().Faint(true).Render("(none)"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderPrioritySelector(accent color.Color) string {
	parts := make([]string, 0, len(priorityOptions))
	for idx, priority := range priorityOptions {
		item := priority.Label() + " " + priority.Glyph()
		if idx == m.formPriorityIdx {
			item = lipgloss.NewStyle().Bold(true).Foreground(accent).Render("(" + item + ")")
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderAssigneePicker(accent, muted color.Color) string {
	if len(m.contacts) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("(no contacts)")
	}
	parts := make([]string, 0, len(m.contacts))
	for idx, contact := range m.contacts {
		check := "[ ]"
		if _, ok := m.formAssigned[contact.ID]; ok {
			check = "[x]"
		}
		item := check + " " + truncate(contact.Name, 18)
		if m.formFocus == formFieldAssignees && idx == clamp(m.formAssigneeCursor, 0, len(m.contacts)-1) {
			item = lipgloss.NewStyle().Bold(true).Foreground(accent).Render(item)
		} else {
			item = lipgloss.NewStyle().Foreground(muted).Render(item)
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderFormSubtaskList(accent, muted color.Color) []string {
	if len(m.formSubtasks) == 0 {
		return nil
	}
	lines := make([]string, 0, len(m.formSubtasks))
	cursor := clamp(m.formSubtaskCursor, 0, len(m.formSubtasks)-1)
	for idx, subtask := range m.formSubtasks {
		row := "• " + truncate(subtask.Title, 56)
		if m.formFocus == formFieldSubtaskList && idx == cursor {
			row = lipgloss.NewStyle().Bold(true).Foreground(accent).Render(row + "  (x remove)")
		} else {
			row = lipgloss.NewStyle().Foreground(muted).Render(row)
		}
		lines = append(lines, "  "+row)
	}
	return lines
}

// greetingLine matches the tone of the original summary screen.
func greetingLine(now time.Time, name string) string {
	var greeting string
	switch hour := now.Hour(); {
	case hour < 5:
		greeting = "Good night"
	case hour < 12:
		greeting = "Good morning"
	case hour < 18:
		greeting = "Good afternoon"
	default:
		greeting = "Good evening"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return greeting
	}
	return greeting + ", " + name
}

// ---- small helpers ----

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(rs[:maxLen])
	}
	return string(rs[:maxLen-1]) + "…"
}
