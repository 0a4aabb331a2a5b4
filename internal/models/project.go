package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is a closed set of project lifecycle states.
type ProjectStatus string

const (
	ProjectPlanned ProjectStatus = "PLANNED"
	ProjectActive  ProjectStatus = "ACTIVE"
	ProjectDone    ProjectStatus = "DONE"
)

// Valid reports whether s is one of the defined project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanned, ProjectActive, ProjectDone:
		return true
	}
	return false
}

// Project belongs to exactly one organization. TaskCount and
// CompletionRate are computed per read, never stored.
type Project struct {
	ID             uuid.UUID     `json:"id"`
	OrganizationID uuid.UUID     `json:"organization_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         ProjectStatus `json:"status"`
	DueDate        *time.Time    `json:"due_date,omitempty"`
	TaskCount      int           `json:"task_count"`
	CompletionRate float64       `json:"completion_rate"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
