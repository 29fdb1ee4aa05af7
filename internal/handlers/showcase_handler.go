package handlers

import (
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ShowcaseHandler struct {
	showcaseService *services.ShowcaseService
}

func NewShowcaseHandler(showcaseService *services.ShowcaseService) *ShowcaseHandler {
	return &ShowcaseHandler{showcaseService: showcaseService}
}

func (h *ShowcaseHandler) ListActive(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	category := models.PostCategory(c.Query("category"))
	if category != "" && !category.Valid() {
		return badRequest(c, "Invalid category")
	}

	posts, total, err := h.showcaseService.ListActive(c.UserContext(), category, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts":  posts,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *ShowcaseHandler) Eligibility(c *fiber.Ctx) error {
	first, err := h.showcaseService.IsFirstSubmission(c.UserContext(), phone(c))
	if err != nil {
		return writeError(c, err)
	}
	opts := h.showcaseService.Options()
	return c.JSON(dto.EligibilityResponse{
		FirstSubmission: first,
		PriceCents:      opts.PriceCents,
		Currency:        opts.Currency,
	})
}

// Submit answers 201 with the post when the free listing was granted, or 202
// with the checkout session the client must complete.
func (h *ShowcaseHandler) Submit(c *fiber.Ctx) error {
	var req dto.ShowcaseSubmission
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.showcaseService.Submit(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}

	if result.PaymentRequired {
		return c.Status(fiber.StatusAccepted).JSON(dto.PaymentRequiredResponse{
			PaymentRequired: true,
			SessionID:       result.SessionID,
			ClientSecret:    result.ClientSecret,
			AmountCents:     result.AmountCents,
			Currency:        result.Currency,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": result.Post})
}

func (h *ShowcaseHandler) ListMine(c *fiber.Ctx) error {
	posts, err := h.showcaseService.ListByOwner(c.UserContext(), phone(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (h *ShowcaseHandler) Edit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}
	var req dto.EditPostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.showcaseService.Edit(c.UserContext(), id, phone(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(post)
}

func (h *ShowcaseHandler) Repost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}
	post, err := h.showcaseService.RepostAsOwner(c.UserContext(), id, phone(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(post)
}

func (h *ShowcaseHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}
	if err := h.showcaseService.DeleteAsOwner(c.UserContext(), id, phone(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
