package workspace

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectIdea      ProjectStatus = "idea"
	ProjectResearch  ProjectStatus = "research"
	ProjectBuilding  ProjectStatus = "building"
	ProjectLaunched  ProjectStatus = "launched"
	ProjectAbandoned ProjectStatus = "abandoned"
)

type Project struct {
	ID          uuid.UUID     `db:"id"`
	UserID      uuid.UUID     `db:"user_id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	NicheCode   *string       `db:"niche_code"`
	Status      ProjectStatus `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

type Task struct {
	ID        uuid.UUID  `db:"id"`
	ProjectID uuid.UUID  `db:"project_id"`
	Title     string     `db:"title"`
	Done      bool       `db:"done"`
	DueAt     *time.Time `db:"due_at"`
	Position  int        `db:"position"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

type Note struct {
	ID        uuid.UUID `db:"id"`
	ProjectID uuid.UUID `db:"project_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}
