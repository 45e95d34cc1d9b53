package tui

// overlayKind identifies what the single overlay slot currently shows.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayTaskForm
	overlayTaskDetail
	overlayConfirm
	overlaySearch
)

// overlayController owns the one modal slot above the board. Opening a kind
// replaces whatever was there; closing clears the slot. There is no stacking:
// at most one overlay exists at any time, and every close path (Escape,
// cancel key, resolved confirm) funnels through Close.
type overlayController struct {
	kind overlayKind
}

func (o *overlayController) Open(kind overlayKind) {
	o.kind = kind
}

func (o *overlayController) Close() {
	o.kind = overlayNone
}

func (o overlayController) Kind() overlayKind {
	return o.kind
}

func (o overlayController) IsOpen() bool {
	return o.kind != overlayNone
}

// confirmSpec describes one confirmation dialog. Each field defaults
// independently, so a caller may set only the message and still get the
// standard title and button labels.
type confirmSpec struct {
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
}

func (c confirmSpec) withDefaults() confirmSpec {
	if c.Title == "" {
		c.Title = "Confirm"
	}
	if c.Message == "" {
		c.Message = "Are you sure?"
	}
	if c.ConfirmText == "" {
		c.ConfirmText = "Yes"
	}
	if c.CancelText == "" {
		c.CancelText = "Cancel"
	}
	return c
}
