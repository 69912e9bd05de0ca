package model

import (
	"time"
)

// DefaultProjectColor is used when a project is created without a color.
const DefaultProjectColor = "#007bff"

// Project represents a named group of tasks
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Computed fields (not stored)
	TaskCount      int `json:"taskCount"`
	CompletedCount int `json:"completedCount"`
}
