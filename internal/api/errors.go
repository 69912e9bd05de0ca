package api

import (
	"errors"
	"log/slog"

	"github.com/dori/taskmate/internal/auth"
	"github.com/dori/taskmate/internal/query"
	"github.com/dori/taskmate/internal/tracker"
	"github.com/gofiber/fiber/v2"
)

// writeError maps a service error onto a status code and JSON body. subject
// names the entity in not-found messages, e.g. "Task".
func (h *Handlers) writeError(c *fiber.Ctx, err error, subject string) error {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: verr.Message,
			Field:   verr.Field,
		})

	case errors.Is(err, tracker.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: subject + " not found",
		})

	case errors.Is(err, query.ErrUnscoped),
		errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: err.Error(),
		})

	case errors.Is(err, auth.ErrUserExists):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})

	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrPasswordMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})

	case unavailable(err):
		return storeUnavailable(c, h.log, err)
	}

	h.log.Error("request failed", slog.String("path", c.Path()), slog.Any("error", err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An unexpected error occurred",
	})
}

// unavailable reports whether err is a storage failure rather than a problem
// with the request.
func unavailable(err error) bool {
	return errors.Is(err, tracker.ErrDataAccess) || errors.Is(err, auth.ErrStoreUnavailable)
}

func storeUnavailable(c *fiber.Ctx, log *slog.Logger, err error) error {
	log.Error("storage failure", slog.String("path", c.Path()), slog.Any("error", err))
	return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
		Error:   "service_unavailable",
		Message: "Storage is temporarily unavailable",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// errorHandler renders errors returned by fiber itself, such as unknown
// routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
