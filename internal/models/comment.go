package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskComment is a comment on a task. AuthorEmail is a free-form
// string; there is no user identity in this system.
type TaskComment struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task_id"`
	Content     string    `json:"content"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
}
