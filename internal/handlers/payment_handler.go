package handlers

import (
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Status lets the submitter poll a checkout after the redirect. Only the
// payment state and the resulting post id are exposed.
func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	intent, err := h.paymentService.Intent(c.UserContext(), c.Params("session"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"status":  intent.Status,
		"post_id": intent.PostID,
	})
}
