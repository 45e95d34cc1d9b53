package app

import (
	"context"

	"github.com/hylla/tavla/internal/domain"
)

// TaskStore is the remote persistence collaborator for tasks. Every call may
// fail; the board service decides what survives a failure.
type TaskStore interface {
	ListTasks(context.Context) ([]domain.Task, error)
	CreateTask(context.Context, domain.Task) error
	SaveTask(context.Context, domain.Task) error
	DeleteTask(context.Context, string) error
}

// ContactStore is the remote persistence collaborator for the contact
// directory. The board only reads it.
type ContactStore interface {
	ListContacts(context.Context) ([]domain.Contact, error)
}
