package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/payments"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	paymentService *services.PaymentService
	verifier       payments.WebhookVerifier
}

func NewWebhookHandler(paymentService *services.PaymentService, verifier payments.WebhookVerifier) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		verifier:       verifier,
	}
}

// HandleStripe verifies the signature over the raw body before anything is
// parsed. Duplicates, unknown sessions, unreadable signed events and event
// types we do not act on are acknowledged with 200 so the processor stops
// retrying; only storage failures return 5xx.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	if h.verifier == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	event, err := h.verifier.ParseWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payments.ErrIgnoredEvent) {
			return c.JSON(fiber.Map{"received": true})
		}
		if errors.Is(err, payments.ErrMalformedEvent) {
			slog.Error("signed webhook event could not be parsed",
				"component", "payments",
				"request_id", requestID(c),
				"error", err,
			)
			return c.JSON(fiber.Map{"received": true, "outcome": "payload_invalid"})
		}
		slog.Warn("webhook rejected", "component", "payments", "request_id", requestID(c), "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook signature",
		})
	}

	outcome, err := h.paymentService.HandleEvent(c.UserContext(), event)
	if err != nil {
		if errors.Is(err, payments.ErrIgnoredEvent) {
			return c.JSON(fiber.Map{"received": true})
		}
		if services.IsValidation(err) {
			return badRequest(c, err.Error())
		}
		slog.Error("webhook processing failed",
			"component", "payments",
			"request_id", requestID(c),
			"session_id", event.SessionID,
			"event_type", string(event.Type),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	return c.JSON(fiber.Map{"received": true, "outcome": outcome})
}
