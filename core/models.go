package core

import "time"

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task is the local shape. The backend speaks snake_case with an is_complete
// flag; the translation lives in the backend adapter. Description stays a
// pointer: a record without a description is not the same as one with "".
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type TaskPatch struct {
	Title       *string
	Description *string
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil
}

type ListFilter struct {
	Skip       int
	Limit      int
	IsComplete *bool
}

type Stats struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Session is the authenticated identity plus the bearer token minted for it.
// Token may be empty when the identity provider resolved a session but the
// mint failed; privileged callers treat that the same as no session.
type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
