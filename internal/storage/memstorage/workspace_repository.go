package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/workspace"
)

type WorkspaceRepository struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*workspace.Project
	tasks    map[uuid.UUID]*workspace.Task
	notes    map[uuid.UUID]*workspace.Note
}

func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{
		projects: make(map[uuid.UUID]*workspace.Project),
		tasks:    make(map[uuid.UUID]*workspace.Task),
		notes:    make(map[uuid.UUID]*workspace.Note),
	}
}

var _ workspace.Repository = (*WorkspaceRepository)(nil)

func (r *WorkspaceRepository) CreateProject(ctx context.Context, p *workspace.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p.ID, p.CreatedAt, p.UpdatedAt = uuid.New(), now, now
	stored := *p
	r.projects[p.ID] = &stored
	return nil
}

func (r *WorkspaceRepository) ListProjects(ctx context.Context, userID uuid.UUID) ([]*workspace.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*workspace.Project, 0)
	for _, p := range r.projects {
		if p.UserID == userID {
			pCopy := *p
			out = append(out, &pCopy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *WorkspaceRepository) FindProject(ctx context.Context, userID, projectID uuid.UUID) (*workspace.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, workspace.ErrNotFound
	}
	pCopy := *p
	return &pCopy, nil
}

func (r *WorkspaceRepository) UpdateProject(ctx context.Context, p *workspace.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.projects[p.ID]
	if !ok || existing.UserID != p.UserID {
		return workspace.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	p.CreatedAt = existing.CreatedAt
	stored := *p
	r.projects[p.ID] = &stored
	return nil
}

func (r *WorkspaceRepository) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[projectID]
	if !ok || p.UserID != userID {
		return workspace.ErrNotFound
	}
	delete(r.projects, projectID)
	for id, t := range r.tasks {
		if t.ProjectID == projectID {
			delete(r.tasks, id)
		}
	}
	for id, n := range r.notes {
		if n.ProjectID == projectID {
			delete(r.notes, id)
		}
	}
	return nil
}

func (r *WorkspaceRepository) CreateTask(ctx context.Context, t *workspace.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	t.ID, t.CreatedAt, t.UpdatedAt = uuid.New(), now, now
	stored := *t
	r.tasks[t.ID] = &stored
	return nil
}

func (r *WorkspaceRepository) ListTasks(ctx context.Context, projectID uuid.UUID) ([]*workspace.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*workspace.Task, 0)
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			tCopy := *t
			out = append(out, &tCopy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *WorkspaceRepository) FindTask(ctx context.Context, projectID, taskID uuid.UUID) (*workspace.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[taskID]
	if !ok || t.ProjectID != projectID {
		return nil, workspace.ErrNotFound
	}
	tCopy := *t
	return &tCopy, nil
}

func (r *WorkspaceRepository) UpdateTask(ctx context.Context, t *workspace.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[t.ID]
	if !ok || existing.ProjectID != t.ProjectID {
		return workspace.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	stored := *t
	r.tasks[t.ID] = &stored
	return nil
}

func (r *WorkspaceRepository) DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok || t.ProjectID != projectID {
		return workspace.ErrNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

func (r *WorkspaceRepository) CreateNote(ctx context.Context, n *workspace.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID, n.CreatedAt = uuid.New(), time.Now()
	stored := *n
	r.notes[n.ID] = &stored
	return nil
}

func (r *WorkspaceRepository) ListNotes(ctx context.Context, projectID uuid.UUID) ([]*workspace.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*workspace.Note, 0)
	for _, n := range r.notes {
		if n.ProjectID == projectID {
			nCopy := *n
			out = append(out, &nCopy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *WorkspaceRepository) DeleteNote(ctx context.Context, projectID, noteID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[noteID]
	if !ok || n.ProjectID != projectID {
		return workspace.ErrNotFound
	}
	delete(r.notes, noteID)
	return nil
}
