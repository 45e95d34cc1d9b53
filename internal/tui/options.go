package tui

// TaskFieldConfig controls which optional card fields render on the board.
type TaskFieldConfig struct {
	ShowPriority    bool
	ShowDueDate     bool
	ShowDescription bool
}

// ConfirmTexts holds the dialog strings for the delete confirmation.
type ConfirmTexts struct {
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
}

type Option func(*Model)

func DefaultTaskFieldConfig() TaskFieldConfig {
	return TaskFieldConfig{
		ShowPriority:    true,
		ShowDueDate:     true,
		ShowDescription: true,
	}
}

func WithTaskFieldConfig(cfg TaskFieldConfig) Option {
	return func(m *Model) {
		m.taskFields = cfg
	}
}

func WithConfirmTexts(texts ConfirmTexts) Option {
	return func(m *Model) {
		m.confirmTexts = texts
	}
}

func WithGreetingName(name string) Option {
	return func(m *Model) {
		m.greetingName = name
	}
}

func WithMaxAvatars(n int) Option {
	return func(m *Model) {
		if n >= 1 {
			m.maxAvatars = n
		}
	}
}

func WithGreetingDisabled() Option {
	return func(m *Model) {
		m.showGreeting = false
	}
}
