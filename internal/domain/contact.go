package domain

import (
	"strings"
	"time"
)

// DefaultAvatarColor is the neutral bubble color used when a contact or
// inline assignee carries no display color.
const DefaultAvatarColor = "#A8A8A8"

// Contact is one entry in the contact directory.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewContact validates and normalizes a contact record.
func NewContact(id, name, email, color string, now time.Time) (Contact, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Contact{}, ErrInvalidID
	}
	if name == "" {
		return Contact{}, ErrInvalidName
	}
	return Contact{
		ID:        id,
		Name:      name,
		Email:     strings.TrimSpace(email),
		Color:     strings.TrimSpace(color),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Initials derives the avatar label from a display name: the first letters
// of the first two space-separated tokens, upper-cased.
func Initials(name string) string {
	fields := strings.Fields(name)
	var b strings.Builder
	for idx, field := range fields {
		if idx == 2 {
			break
		}
		runes := []rune(field)
		b.WriteString(strings.ToUpper(string(runes[0])))
	}
	return b.String()
}

// AvatarColor returns the display color or the neutral default.
func AvatarColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return DefaultAvatarColor
	}
	return color
}
