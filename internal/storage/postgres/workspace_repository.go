package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/niches-hunter-api/internal/domain/workspace"
	"go.uber.org/zap"
)

const (
	projectColumns = `id, user_id, name, description, niche_code, status, created_at, updated_at`
	taskColumns    = `id, project_id, title, done, due_at, position, created_at, updated_at`
)

type WorkspaceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWorkspaceRepository(db *pgxpool.Pool, logger *zap.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{
		db:     db,
		logger: logger.Named("WorkspaceRepository"),
	}
}

var _ workspace.Repository = (*WorkspaceRepository)(nil)

func (r *WorkspaceRepository) CreateProject(ctx context.Context, p *workspace.Project) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO projects (user_id, name, description, niche_code, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Name, p.Description, p.NicheCode, string(p.Status)).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create project", zap.String("user_id", p.UserID.String()), zap.Error(err))
		return fmt.Errorf("db error creating project: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) ListProjects(ctx context.Context, userID uuid.UUID) ([]*workspace.Project, error) {
	rows, err := r.db.Query(ctx, `SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error listing projects: %w", err)
	}
	defer rows.Close()

	out := make([]*workspace.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("db error scanning project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepository) FindProject(ctx context.Context, userID, projectID uuid.UUID) (*workspace.Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2`, projectID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workspace.ErrNotFound
		}
		return nil, fmt.Errorf("db error finding project: %w", err)
	}
	return p, nil
}

func (r *WorkspaceRepository) UpdateProject(ctx context.Context, p *workspace.Project) error {
	err := r.db.QueryRow(ctx, `
		UPDATE projects
		   SET name = $3, description = $4, niche_code = $5, status = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`, p.ID, p.UserID, p.Name, p.Description, p.NicheCode, string(p.Status)).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workspace.ErrNotFound
		}
		return fmt.Errorf("db error updating project: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return fmt.Errorf("db error deleting project: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return workspace.ErrNotFound
	}
	return nil
}

func (r *WorkspaceRepository) CreateTask(ctx context.Context, t *workspace.Task) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO project_tasks (project_id, title, done, due_at, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, t.ProjectID, t.Title, t.Done, t.DueAt, t.Position).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error creating task: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) ListTasks(ctx context.Context, projectID uuid.UUID) ([]*workspace.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM project_tasks WHERE project_id = $1 ORDER BY position, created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error listing tasks: %w", err)
	}
	defer rows.Close()

	out := make([]*workspace.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error scanning task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepository) FindTask(ctx context.Context, projectID, taskID uuid.UUID) (*workspace.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM project_tasks WHERE id = $1 AND project_id = $2`, taskID, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workspace.ErrNotFound
		}
		return nil, fmt.Errorf("db error finding task: %w", err)
	}
	return t, nil
}

func (r *WorkspaceRepository) UpdateTask(ctx context.Context, t *workspace.Task) error {
	err := r.db.QueryRow(ctx, `
		UPDATE project_tasks
		   SET title = $3, done = $4, due_at = $5, position = $6, updated_at = NOW()
		 WHERE id = $1 AND project_id = $2
		RETURNING updated_at
	`, t.ID, t.ProjectID, t.Title, t.Done, t.DueAt, t.Position).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workspace.ErrNotFound
		}
		return fmt.Errorf("db error updating task: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM project_tasks WHERE id = $1 AND project_id = $2`, taskID, projectID)
	if err != nil {
		return fmt.Errorf("db error deleting task: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return workspace.ErrNotFound
	}
	return nil
}

func (r *WorkspaceRepository) CreateNote(ctx context.Context, n *workspace.Note) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO project_notes (project_id, body)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, n.ProjectID, n.Body).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error creating note: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) ListNotes(ctx context.Context, projectID uuid.UUID) ([]*workspace.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, project_id, body, created_at FROM project_notes WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error listing notes: %w", err)
	}
	defer rows.Close()

	out := make([]*workspace.Note, 0)
	for rows.Next() {
		var n workspace.Note
		if err := rows.Scan(&n.ID, &n.ProjectID, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error scanning note: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepository) DeleteNote(ctx context.Context, projectID, noteID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM project_notes WHERE id = $1 AND project_id = $2`, noteID, projectID)
	if err != nil {
		return fmt.Errorf("db error deleting note: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return workspace.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*workspace.Project, error) {
	var p workspace.Project
	var nicheCode sql.NullString
	var status string
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &nicheCode, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if nicheCode.Valid {
		p.NicheCode = &nicheCode.String
	}
	p.Status = workspace.ProjectStatus(status)
	return &p, nil
}

func scanTask(row pgx.Row) (*workspace.Task, error) {
	var t workspace.Task
	var dueAt sql.NullTime
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Done, &dueAt, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if dueAt.Valid {
		t.DueAt = &dueAt.Time
	}
	return &t, nil
}
