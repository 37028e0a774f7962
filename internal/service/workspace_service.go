package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/workspace"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"go.uber.org/zap"
)

// WorkspaceService scopes every project, task and note to its owner. Rows of
// other users are indistinguishable from missing ones.
type WorkspaceService struct {
	repo   workspace.Repository
	logger *zap.Logger
}

func NewWorkspaceService(repo workspace.Repository, logger *zap.Logger) *WorkspaceService {
	return &WorkspaceService{
		repo:   repo,
		logger: logger.Named("WorkspaceService"),
	}
}

func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, workspace.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ierr.ErrNotFound, what, id)
	}
	return fmt.Errorf("repository error on %s %s: %w", what, id, err)
}

func (s *WorkspaceService) CreateProject(ctx context.Context, userID uuid.UUID, req dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	p := &workspace.Project{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		NicheCode:   req.NicheCode,
		Status:      workspace.ProjectIdea,
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		s.logger.Error("Failed to create project", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("repository error creating project: %w", err)
	}
	return dto.NewProjectResponse(p), nil
}

func (s *WorkspaceService) ListProjects(ctx context.Context, userID uuid.UUID) ([]*dto.ProjectResponse, error) {
	projects, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repository error listing projects: %w", err)
	}
	out := make([]*dto.ProjectResponse, len(projects))
	for i, p := range projects {
		out[i] = dto.NewProjectResponse(p)
	}
	return out, nil
}

func (s *WorkspaceService) GetProject(ctx context.Context, userID, projectID uuid.UUID) (*dto.ProjectDetailResponse, error) {
	p, err := s.repo.FindProject(ctx, userID, projectID)
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	tasks, err := s.repo.ListTasks(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("repository error listing tasks: %w", err)
	}
	notes, err := s.repo.ListNotes(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("repository error listing notes: %w", err)
	}

	resp := &dto.ProjectDetailResponse{
		ProjectResponse: dto.NewProjectResponse(p),
		Tasks:           make([]*dto.TaskResponse, len(tasks)),
		Notes:           make([]*dto.NoteResponse, len(notes)),
	}
	for i, t := range tasks {
		resp.Tasks[i] = dto.NewTaskResponse(t)
	}
	for i, n := range notes {
		resp.Notes[i] = dto.NewNoteResponse(n)
	}
	return resp, nil
}

func (s *WorkspaceService) UpdateProject(ctx context.Context, userID, projectID uuid.UUID, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	p, err := s.repo.FindProject(ctx, userID, projectID)
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.NicheCode != nil {
		if *req.NicheCode == "" {
			p.NicheCode = nil
		} else {
			p.NicheCode = req.NicheCode
		}
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, notFound(err, "project", projectID)
	}
	return dto.NewProjectResponse(p), nil
}

func (s *WorkspaceService) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	if err := s.repo.DeleteProject(ctx, userID, projectID); err != nil {
		return notFound(err, "project", projectID)
	}
	s.logger.Info("Project deleted", zap.String("project_id", projectID.String()))
	return nil
}

// ownedProject loads the project only to prove ownership before touching its children.
func (s *WorkspaceService) ownedProject(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.repo.FindProject(ctx, userID, projectID); err != nil {
		return notFound(err, "project", projectID)
	}
	return nil
}

func (s *WorkspaceService) ListTasks(ctx context.Context, userID, projectID uuid.UUID) ([]*dto.TaskResponse, error) {
	if err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("repository error listing tasks: %w", err)
	}
	out := make([]*dto.TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = dto.NewTaskResponse(t)
	}
	return out, nil
}

func (s *WorkspaceService) CreateTask(ctx context.Context, userID, projectID uuid.UUID, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	t := &workspace.Task{ProjectID: projectID, Title: req.Title, DueAt: req.DueAt}
	if req.Position != nil {
		t.Position = *req.Position
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("repository error creating task: %w", err)
	}
	return dto.NewTaskResponse(t), nil
}

func (s *WorkspaceService) UpdateTask(ctx context.Context, userID, projectID, taskID uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	t, err := s.repo.FindTask(ctx, projectID, taskID)
	if err != nil {
		return nil, notFound(err, "task", taskID)
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Done != nil {
		t.Done = *req.Done
	}
	if req.DueAt != nil {
		t.DueAt = req.DueAt
	}
	if req.Position != nil {
		t.Position = *req.Position
	}
	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, notFound(err, "task", taskID)
	}
	return dto.NewTaskResponse(t), nil
}

func (s *WorkspaceService) DeleteTask(ctx context.Context, userID, projectID, taskID uuid.UUID) error {
	if err := s.ownedProject(ctx, userID, projectID); err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, projectID, taskID); err != nil {
		return notFound(err, "task", taskID)
	}
	return nil
}

func (s *WorkspaceService) ListNotes(ctx context.Context, userID, projectID uuid.UUID) ([]*dto.NoteResponse, error) {
	if err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("repository error listing notes: %w", err)
	}
	out := make([]*dto.NoteResponse, len(notes))
	for i, n := range notes {
		out[i] = dto.NewNoteResponse(n)
	}
	return out, nil
}

func (s *WorkspaceService) CreateNote(ctx context.Context, userID, projectID uuid.UUID, req dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	n := &workspace.Note{ProjectID: projectID, Body: req.Body}
	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, fmt.Errorf("repository error creating note: %w", err)
	}
	return dto.NewNoteResponse(n), nil
}

func (s *WorkspaceService) DeleteNote(ctx context.Context, userID, projectID, noteID uuid.UUID) error {
	if err := s.ownedProject(ctx, userID, projectID); err != nil {
		return err
	}
	if err := s.repo.DeleteNote(ctx, projectID, noteID); err != nil {
		return notFound(err, "note", noteID)
	}
	return nil
}
