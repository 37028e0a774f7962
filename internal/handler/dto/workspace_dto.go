package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/domain/workspace"
)

type CreateProjectRequest struct {
	Name        string                   `json:"name" binding:"required,max=120"`
	Description string                   `json:"description" binding:"omitempty,max=4000"`
	NicheCode   *string                  `json:"niche_code" binding:"omitempty,max=32"`
	Status      *workspace.ProjectStatus `json:"status" binding:"omitempty,oneof=idea research building launched abandoned"`
}

type UpdateProjectRequest struct {
	Name        *string                  `json:"name" binding:"omitempty,min=1,max=120"`
	Description *string                  `json:"description" binding:"omitempty,max=4000"`
	NicheCode   *string                  `json:"niche_code" binding:"omitempty,max=32"`
	Status      *workspace.ProjectStatus `json:"status" binding:"omitempty,oneof=idea research building launched abandoned"`
}

type ProjectResponse struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	NicheCode   *string                 `json:"niche_code,omitempty"`
	Status      workspace.ProjectStatus `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func NewProjectResponse(p *workspace.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		NicheCode:   p.NicheCode,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type ProjectDetailResponse struct {
	*ProjectResponse
	Tasks []*TaskResponse `json:"tasks"`
	Notes []*NoteResponse `json:"notes"`
}

type CreateTaskRequest struct {
	Title    string     `json:"title" binding:"required,max=200"`
	DueAt    *time.Time `json:"due_at"`
	Position *int       `json:"position" binding:"omitempty,gte=0"`
}

type UpdateTaskRequest struct {
	Title    *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Done     *bool      `json:"done"`
	DueAt    *time.Time `json:"due_at"`
	Position *int       `json:"position" binding:"omitempty,gte=0"`
}

type TaskResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	Position  int        `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewTaskResponse(t *workspace.Task) *TaskResponse {
	return &TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Done:      t.Done,
		DueAt:     t.DueAt,
		Position:  t.Position,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type CreateNoteRequest struct {
	Body string `json:"body" binding:"required,max=10000"`
}

type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNoteResponse(n *workspace.Note) *NoteResponse {
	return &NoteResponse{ID: n.ID, Body: n.Body, CreatedAt: n.CreatedAt}
}
