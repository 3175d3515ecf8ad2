package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"deepwork/report-generator/internal/models"
	"deepwork/report-generator/internal/services"
)

type SearchHandler struct {
	reportService services.ReportService
}

func NewSearchHandler(reportService services.ReportService) *SearchHandler {
	return &SearchHandler{reportService: reportService}
}

// HandleSearchSimilar handles GET /reports/similar?q=...&limit=N over the
// archived narrative index.
func (h *SearchHandler) HandleSearchSimilar(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query parameter 'q' is required",
		})
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	results, err := h.reportService.SearchSimilar(c.UserContext(), query, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(models.SimilarReportsResponse{
		Query:   query,
		Results: results,
	})
}
