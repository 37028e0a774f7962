package workspace

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound covers both missing rows and rows owned by someone else.
var ErrNotFound = errors.New("workspace item not found")

// Repository methods take the owner id so that ownership is part of every query.
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	ListProjects(ctx context.Context, userID uuid.UUID) ([]*Project, error)
	FindProject(ctx context.Context, userID, projectID uuid.UUID) (*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error

	CreateTask(ctx context.Context, t *Task) error
	ListTasks(ctx context.Context, projectID uuid.UUID) ([]*Task, error)
	FindTask(ctx context.Context, projectID, taskID uuid.UUID) (*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error

	CreateNote(ctx context.Context, n *Note) error
	ListNotes(ctx context.Context, projectID uuid.UUID) ([]*Note, error)
	DeleteNote(ctx context.Context, projectID, noteID uuid.UUID) error
}
