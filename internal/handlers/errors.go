package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// writeError maps service errors to HTTP responses. Anything unrecognised is
// logged and reported as a 500 without details.
func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case services.IsValidation(err):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		status, message = fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbidden):
		status, message = fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrReportNotFound), errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrIntentNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNotApproved),
		errors.Is(err, services.ErrStillActive),
		errors.Is(err, services.ErrRepostLimit):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrPaymentUnavailable):
		status, message = fiber.StatusServiceUnavailable, "Payment is temporarily unavailable, try again later"
	default:
		slog.ErrorContext(c.UserContext(), "request failed",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// queryInt reads an optional integer query parameter.
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}

// pagination rejects non-numeric limit and offset; numeric values out of
// range fall back to the defaults.
func pagination(c *fiber.Ctx) (int, int, error) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return 0, 0, err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, nil
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// fingerprint reads the submitter fingerprint from the header or the query.
func fingerprint(c *fiber.Ctx) string {
	if fp := c.Get("X-Fingerprint"); fp != "" {
		return fp
	}
	return c.Query("fingerprint")
}

// phone reads the owner phone from the header or the query.
func phone(c *fiber.Ctx) string {
	if p := c.Get("X-Phone"); p != "" {
		return p
	}
	return c.Query("phone")
}
