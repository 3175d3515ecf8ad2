package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"deepwork/report-generator/internal/services"
)

type ReportHandler struct {
	parser        services.SessionParserService
	reportService services.ReportService
	maxFileSize   int64
}

func NewReportHandler(
	parser services.SessionParserService,
	reportService services.ReportService,
	maxFileSize int64,
) *ReportHandler {
	return &ReportHandler{
		parser:        parser,
		reportService: reportService,
		maxFileSize:   maxFileSize,
	}
}

// HandleGenerateReport handles POST /reports: CSV upload in, PDF attachment
// out, one synchronous pipeline run.
func (h *ReportHandler) HandleGenerateReport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing 'file' upload with session CSV",
		})
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid file format, please upload a .csv file",
		})
	}

	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer src.Close()

	rec, err := h.parser.ParseSession(src)
	if err != nil {
		return respondServiceError(c, err)
	}

	gen, err := h.reportService.GenerateReport(c.UserContext(), rec)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Archiving and indexing must not cost the caller their document.
	if !gen.FromCache {
		if _, err := h.reportService.ArchiveReport(c.UserContext(), rec, gen); err != nil {
			log.Printf("⚠️  Failed to archive report for %s: %v", rec.PersonName, err)
		}
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(gen.Filename)))

	return c.Send(gen.PDF)
}

// respondServiceError maps the service failure classes onto HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInputFormat),
		errors.Is(err, services.ErrEmptyInput),
		errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrGeneration):
		status = fiber.StatusBadGateway
	case errors.Is(err, services.ErrRender):
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
