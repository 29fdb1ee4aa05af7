package handlers

import (
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService *services.ReportService
	scorer        *services.RiskScorer
}

func NewReportHandler(reportService *services.ReportService, scorer *services.RiskScorer) *ReportHandler {
	return &ReportHandler{reportService: reportService, scorer: scorer}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Fingerprint == "" {
		req.Fingerprint = fingerprint(c)
	}

	report, err := h.reportService.Submit(c.UserContext(), req.Body, models.ReportCategory(req.Category), req.Fingerprint)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) ListApproved(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	category := models.ReportCategory(c.Query("category"))
	if category != "" && !category.Valid() {
		return badRequest(c, "Invalid category")
	}

	reports, total, err := h.reportService.ListApproved(c.UserContext(), category, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ReportHandler) ListMine(c *fiber.Ctx) error {
	reports, err := h.reportService.ListBySubmitter(c.UserContext(), fingerprint(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}
	if err := h.reportService.DeleteAsSubmitter(c.UserContext(), id, fingerprint(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Report deleted successfully"})
}

// Assess scores free text without storing anything, so the submission form
// can preview how a report will be triaged.
func (h *ReportHandler) Assess(c *fiber.Ctx) error {
	var req dto.AssessRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	category := models.ReportCategory(req.Category)
	if category != "" && !category.Valid() {
		return badRequest(c, "Invalid category")
	}
	return c.JSON(h.scorer.Assess(req.Text, category))
}
