package api

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dori/taskmate/internal/auth"
	"github.com/dori/taskmate/internal/query"
	"github.com/dori/taskmate/internal/tracker"
	"github.com/gofiber/fiber/v2"
)

// Accounts is the authentication surface the handlers need.
type Accounts interface {
	auth.Resolver
	Register(ctx context.Context, email, password, confirm string) (*auth.User, error)
	Login(ctx context.Context, email, password string) (*auth.User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	IssueTokens(user *auth.User) (*auth.TokenPair, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	accounts     Accounts
	tracker      *tracker.Service
	store        Pinger
	log          *slog.Logger
	secureCookie bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(accounts Accounts, svc *tracker.Service, store Pinger, log *slog.Logger, secureCookie bool) *Handlers {
	return &Handlers{
		accounts:     accounts,
		tracker:      svc,
		store:        store,
		log:          log,
		secureCookie: secureCookie,
	}
}

// Health reports store reachability.
func (h *Handlers) Health(c *fiber.Ctx) error {
	if err := h.store.PingContext(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
		})
	}
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	user, err := h.accounts.Register(c.UserContext(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return h.writeError(c, err, "User")
	}
	tokens, err := h.accounts.IssueTokens(user)
	if err != nil {
		return h.writeError(c, err, "User")
	}

	h.setTokenCookie(c, tokens)
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		User:      userResponse(user),
		TokenPair: tokens,
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	user, tokens, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.writeError(c, err, "User")
	}

	h.setTokenCookie(c, tokens)
	return c.JSON(AuthResponse{
		User:      userResponse(user),
		TokenPair: tokens,
	})
}

// Refresh handles token refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	tokens, err := h.accounts.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.writeError(c, err, "User")
	}

	h.setTokenCookie(c, tokens)
	return c.JSON(tokens)
}

// Logout clears the token cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	c.ClearCookie(TokenCookie)
	return c.JSON(MessageResponse{Message: "Logged out"})
}

// Me returns the authenticated caller.
func (h *Handlers) Me(c *fiber.Ctx) error {
	return c.JSON(Caller(c))
}

func (h *Handlers) setTokenCookie(c *fiber.Ctx, tokens *auth.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func userResponse(u *auth.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// ListTasks handles GET /api/tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	opts := tracker.ListOptions{
		Filter: query.Filter{
			Status:    query.Status(c.Query("status")),
			ProjectID: c.Query("projectId"),
			Search:    c.Query("search"),
		},
		Sort: query.ParseSortKey(c.Query("sortBy")),
	}

	tasks, err := h.tracker.ListTasks(c.UserContext(), callerID(c), opts)
	if err != nil {
		return h.writeError(c, err, "Task")
	}
	return c.JSON(tasks)
}

// GetTask handles GET /api/tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	task, err := h.tracker.GetTask(c.UserContext(), callerID(c), c.Params("id"))
	if err != nil {
		return h.writeError(c, err, "Task")
	}
	return c.JSON(task)
}

// CreateTask handles POST /api/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	in, err := h.taskInput(c)
	if err != nil {
		return h.writeError(c, err, "Task")
	}

	task, err := h.tracker.CreateTask(c.UserContext(), callerID(c), in)
	if err != nil {
		return h.writeError(c, err, "Task")
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask handles PUT /api/tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	in, err := h.taskInput(c)
	if err != nil {
		return h.writeError(c, err, "Task")
	}

	task, err := h.tracker.UpdateTask(c.UserContext(), callerID(c), c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err, "Task")
	}
	return c.JSON(task)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.tracker.DeleteTask(c.UserContext(), callerID(c), c.Params("id")); err != nil {
		return h.writeError(c, err, "Task")
	}
	return c.JSON(MessageResponse{Message: "Task deleted"})
}

func (h *Handlers) taskInput(c *fiber.Ctx) (tracker.TaskInput, error) {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return tracker.TaskInput{}, &tracker.ValidationError{Field: "body", Message: "invalid request body"}
	}

	in := tracker.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Archived:    req.Archived,
		Subtasks:    req.Subtasks,
		Tags:        req.Tags,
		Project:     req.Project,
	}
	if req.ProjectID.Set {
		// null detaches, like an empty id
		in.ProjectID = req.ProjectID.Value
		if in.ProjectID == nil {
			in.ProjectID = new(string)
		}
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return tracker.TaskInput{}, &tracker.ValidationError{Field: "dueDate", Message: "dueDate must be YYYY-MM-DD or RFC 3339"}
		}
		in.DueDate = &due
	}
	return in, nil
}

// parseDate accepts a calendar date, taken as midnight UTC, or an RFC 3339
// timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ListProjects handles GET /api/projects.
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	projects, err := h.tracker.ListProjects(c.UserContext(), callerID(c))
	if err != nil {
		return h.writeError(c, err, "Project")
	}
	return c.JSON(projects)
}

// GetProject handles GET /api/projects/:id.
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	project, err := h.tracker.GetProject(c.UserContext(), callerID(c), c.Params("id"))
	if err != nil {
		return h.writeError(c, err, "Project")
	}
	return c.JSON(project)
}

// CreateProject handles POST /api/projects.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	project, err := h.tracker.CreateProject(c.UserContext(), callerID(c), projectInput(req))
	if err != nil {
		return h.writeError(c, err, "Project")
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject handles PUT /api/projects/:id.
func (h *Handlers) UpdateProject(c *fiber.Ctx) error {
	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	project, err := h.tracker.UpdateProject(c.UserContext(), callerID(c), c.Params("id"), projectInput(req))
	if err != nil {
		return h.writeError(c, err, "Project")
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id. Tasks that referenced the
// project are kept and detached from it.
func (h *Handlers) DeleteProject(c *fiber.Ctx) error {
	if err := h.tracker.DeleteProject(c.UserContext(), callerID(c), c.Params("id")); err != nil {
		return h.writeError(c, err, "Project")
	}
	return c.JSON(MessageResponse{Message: "Project deleted"})
}

func projectInput(req ProjectRequest) tracker.ProjectInput {
	return tracker.ProjectInput{Name: req.Name, Description: req.Description, Color: req.Color}
}

// Stats handles GET /api/stats.
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.tracker.Stats(c.UserContext(), callerID(c))
	if err != nil {
		return h.writeError(c, err, "Task")
	}
	return c.JSON(stats)
}

// Calendar handles GET /api/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handlers) Calendar(c *fiber.Ctx) error {
	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		return h.writeError(c, &tracker.ValidationError{Field: "from", Message: "from must be YYYY-MM-DD"}, "Task")
	}
	to, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		return h.writeError(c, &tracker.ValidationError{Field: "to", Message: "to must be YYYY-MM-DD"}, "Task")
	}

	tasks, err := h.tracker.Calendar(c.UserContext(), callerID(c), from, to)
	if err != nil {
		return h.writeError(c, err, "Task")
	}
	return c.JSON(tasks)
}
