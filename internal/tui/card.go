package tui

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/hylla/tavla/internal/domain"
)

const (
	defaultMaxAvatars = 4
	progressBarWidth  = 12
)

// categoryColor returns the tag color for the known card categories and an
// accent fallback for everything else.
func categoryColor(category string) color.Color {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "user story":
		return lipgloss.Color("#0038FF")
	case "technical task":
		return lipgloss.Color("#1FD7C1")
	default:
		return lipgloss.Color("62")
	}
}

// avatarCluster renders at most maxAvatars initials bubbles. When more
// assignees exist, exactly one +N bubble follows, with N counting every
// assignee beyond the cap.
func avatarCluster(assignees []domain.Assignee, maxAvatars int) string {
	if len(assignees) == 0 {
		return ""
	}
	if maxAvatars < 1 {
		maxAvatars = defaultMaxAvatars
	}
	visible := assignees
	overflow := 0
	if len(assignees) > maxAvatars {
		visible = assignees[:maxAvatars]
		overflow = len(assignees) - maxAvatars
	}
	bubbles := make([]string, 0, len(visible)+1)
	for _, assignee := range visible {
		label := domain.Initials(assignee.Name)
		if label == "" {
			label = "?"
		}
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(domain.AvatarColor(assignee.Color))).
			Foreground(lipgloss.Color("231")).
			Padding(0, 1)
		bubbles = append(bubbles, style.Render(label))
	}
	if overflow > 0 {
		style := lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("231")).
			Padding(0, 1)
		bubbles = append(bubbles, style.Render(fmt.Sprintf("+%d", overflow)))
	}
	return strings.Join(bubbles, " ")
}

// progressPercent rounds the completion ratio to the nearest whole percent.
func progressPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// progressIndicator renders the checklist progress line. The indicator is
// fully suppressed while no subtask is done, even when subtasks exist; a
// card with open work but zero progress shows nothing rather than an empty
// bar.
func progressIndicator(done, total int) string {
	if total <= 0 || done <= 0 {
		return ""
	}
	percent := progressPercent(done, total)
	filled := int(math.Round(float64(percent) / 100 * progressBarWidth))
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render(strings.Repeat("░", progressBarWidth-filled))
	return fmt.Sprintf("%s %d/%d Subtasks", bar, done, total)
}

// cardContext carries per-render settings into renderCard.
type cardContext struct {
	width      int
	selected   bool
	fields     TaskFieldConfig
	maxAvatars int
}

// renderCard builds one self-contained card fragment: category tag, title,
// optional description and due date, progress indicator, and a footer with
// the avatar cluster and priority glyph.
func renderCard(task domain.Task, assignees []domain.Assignee, ctx cardContext) string {
	innerWidth := ctx.width - 4
	if innerWidth < 12 {
		innerWidth = 12
	}

	tagStyle := lipgloss.NewStyle().
		Background(categoryColor(task.Category)).
		Foreground(lipgloss.Color("231")).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	lines := []string{
		tagStyle.Render(truncate(task.Category, innerWidth-2)),
		titleStyle.Render(truncate(task.Title, innerWidth)),
	}
	if ctx.fields.ShowDescription && strings.TrimSpace(task.Description) != "" {
		lines = append(lines, mutedStyle.Render(truncate(task.Description, innerWidth)))
	}
	if ctx.fields.ShowDueDate && task.DueAt != nil {
		lines = append(lines, mutedStyle.Render("due "+task.DueAt.Format("2006-01-02")))
	}
	if progress := progressIndicator(task.SubtaskProgress()); progress != "" {
		lines = append(lines, progress)
	}

	footer := avatarCluster(assignees, ctx.maxAvatars)
	if ctx.fields.ShowPriority {
		glyph := priorityGlyphStyle(task.Priority).Render(task.Priority.Glyph())
		if footer == "" {
			footer = glyph
		} else {
			footer += "  " + glyph
		}
	}
	if footer != "" {
		lines = append(lines, footer)
	}

	borderColor := lipgloss.Color("239")
	if ctx.selected {
		borderColor = lipgloss.Color("212")
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(ctx.width - 2)
	return box.Render(strings.Join(lines, "\n"))
}

func priorityGlyphStyle(priority domain.Priority) lipgloss.Style {
	switch priority {
	case domain.PriorityUrgent:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3D00"))
	case domain.PriorityLow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#7AE229"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA800"))
	}
}
