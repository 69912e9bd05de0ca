package api

import (
	"encoding/json"
	"time"

	"github.com/dori/taskmate/internal/auth"
	"github.com/dori/taskmate/internal/model"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse represents a user response.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User UserResponse `json:"user"`
	*auth.TokenPair
}

// TaskRequest is the body of task create and update requests. Absent fields
// are nil. ProjectID also tells an explicit null apart from an absent field.
type TaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	Priority    *string         `json:"priority"`
	DueDate     *string         `json:"dueDate"`
	Archived    *bool           `json:"archived"`
	Subtasks    []model.Subtask `json:"subtasks"`
	Tags        []string        `json:"tags"`
	Project     *string         `json:"project"`
	ProjectID   NullableString  `json:"projectId,omitzero"`
}

// NullableString is a JSON string field that may be absent, null or set.
type NullableString struct {
	Set   bool
	Value *string
}

// NullString returns a NullableString holding an explicit null.
func NullString() NullableString {
	return NullableString{Set: true}
}

// StringValue returns a NullableString holding s.
func StringValue(s string) NullableString {
	return NullableString{Set: true, Value: &s}
}

// IsZero reports whether the field was absent.
func (n NullableString) IsZero() bool {
	return !n.Set
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// ProjectRequest is the body of project create and update requests.
type ProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// MessageResponse carries a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
