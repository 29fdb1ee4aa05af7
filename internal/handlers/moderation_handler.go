package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const maxBulkItems = 200

// ModerationHandler serves the admin panel for reports and showcase posts.
type ModerationHandler struct {
	reportService   *services.ReportService
	showcaseService *services.ShowcaseService
	statsService    *services.StatsService
}

func NewModerationHandler(reportService *services.ReportService, showcaseService *services.ShowcaseService, statsService *services.StatsService) *ModerationHandler {
	return &ModerationHandler{
		reportService:   reportService,
		showcaseService: showcaseService,
		statsService:    statsService,
	}
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	minPriority, err := queryInt(c, "min_priority", 0)
	if err != nil || minPriority < 0 || minPriority > 3 {
		return badRequest(c, "Invalid min_priority")
	}

	items, total, err := h.reportService.ListModerationQueue(c.UserContext(), services.QueueFilter{
		Status:      models.ReportStatus(c.Query("status")),
		Category:    models.ReportCategory(c.Query("category")),
		MinPriority: minPriority,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"reports": items,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ModerationHandler) GetReport(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}
	item, err := h.reportService.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.ActionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.reportService.SetStatus(c.UserContext(), id, models.ReportStatus(req.Status), req.AdminNote); err != nil {
		return writeError(c, err)
	}

	slog.Info("report moderated", "component", "moderation", "entity_id", id.String(),
		"status", req.Status, "actor", actor(c), "request_id", requestID(c))
	return c.JSON(fiber.Map{"message": "Report updated successfully"})
}

func (h *ModerationHandler) DeleteReport(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}
	if err := h.reportService.DeleteAsModerator(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Report deleted successfully"})
}

// BulkReports applies one action to many reports. Each item succeeds or
// fails on its own; the response lists every outcome.
func (h *ModerationHandler) BulkReports(c *fiber.Ctx) error {
	var req dto.BulkActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := checkBulk(&req); msg != "" {
		return badRequest(c, msg)
	}

	var results []services.BulkResult
	switch req.Action {
	case "status":
		results = h.reportService.BulkSetStatus(c.UserContext(), req.IDs, models.ReportStatus(req.Status), req.AdminNote)
	case "delete":
		results = h.reportService.BulkDelete(c.UserContext(), req.IDs)
	}
	return c.JSON(bulkResponse(results))
}

func (h *ModerationHandler) ListPosts(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	posts, total, err := h.showcaseService.ListForModeration(c.UserContext(), models.PostStatus(c.Query("status")), limit, offset)
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

func (h *ModerationHandler) SetPostStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}
	var req dto.PostStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.showcaseService.SetStatus(c.UserContext(), id, models.PostStatus(req.Status)); err != nil {
		return writeError(c, err)
	}

	slog.Info("post moderated", "component", "moderation", "entity_id", id.String(),
		"status", req.Status, "actor", actor(c), "request_id", requestID(c))

	post, err := h.showcaseService.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(post)
}

func (h *ModerationHandler) BulkPosts(c *fiber.Ctx) error {
	var req dto.BulkActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := checkBulk(&req); msg != "" {
		return badRequest(c, msg)
	}

	var results []services.BulkResult
	switch req.Action {
	case "status":
		results = h.showcaseService.BulkSetStatus(c.UserContext(), req.IDs, models.PostStatus(req.Status))
	case "delete":
		results = h.showcaseService.BulkDelete(c.UserContext(), req.IDs)
	}
	return c.JSON(bulkResponse(results))
}

func (h *ModerationHandler) RepostPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}
	post, err := h.showcaseService.RepostAsModerator(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(post)
}

func (h *ModerationHandler) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}
	if err := h.showcaseService.DeleteAsModerator(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

func (h *ModerationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.statsService.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

func checkBulk(req *dto.BulkActionRequest) string {
	if len(req.IDs) == 0 {
		return "ids are required"
	}
	if len(req.IDs) > maxBulkItems {
		return "too many ids in one request"
	}
	if req.Action != "status" && req.Action != "delete" {
		return "action must be status or delete"
	}
	return ""
}

func bulkResponse(results []services.BulkResult) fiber.Map {
	succeeded := 0
	for _, r := range results {
		if r.OK {
			succeeded++
		}
	}
	return fiber.Map{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	}
}

func actor(c *fiber.Ctx) string {
	a, _ := c.Locals("actor").(string)
	return a
}
