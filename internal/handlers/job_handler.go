package handlers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"deepwork/report-generator/internal/models"
	"deepwork/report-generator/internal/repositories"
	"deepwork/report-generator/internal/services"
)

type JobHandler struct {
	parser      services.SessionParserService
	reportRepo  repositories.ReportRepository
	worker      services.Worker
	maxFileSize int64
}

func NewJobHandler(
	parser services.SessionParserService,
	reportRepo repositories.ReportRepository,
	worker services.Worker,
	maxFileSize int64,
) *JobHandler {
	return &JobHandler{
		parser:      parser,
		reportRepo:  reportRepo,
		worker:      worker,
		maxFileSize: maxFileSize,
	}
}

// HandleCreateJob handles POST /jobs: validates the CSV up front, archives a
// queued job and returns its ID immediately.
func (h *JobHandler) HandleCreateJob(c *fiber.Ctx) error {
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

	payload, err := json.Marshal(rec)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to serialize session record",
		})
	}

	report := &models.Report{
		ID:          uuid.New(),
		PersonName:  rec.PersonName,
		SessionName: rec.SessionName,
		Kind:        int(rec.Kind),
		Status:      models.StatusQueued,
		Payload:     string(payload),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.reportRepo.Create(report); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create report job",
		})
	}

	h.worker.EnqueueJob(report.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.JobResponse{
		ID:     report.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleGetJob handles GET /jobs/:id.
func (h *JobHandler) HandleGetJob(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID format",
		})
	}

	report, err := h.reportRepo.FindByID(reportID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "report job not found",
		})
	}

	response := models.JobStatusResponse{
		ID:          report.ID.String(),
		Status:      string(report.Status),
		PersonName:  report.PersonName,
		SessionName: report.SessionName,
	}

	if report.Status == models.StatusCompleted {
		response.DownloadURL = fmt.Sprintf("/api/v1/jobs/%s/download", report.ID)
	}

	if report.Status == models.StatusFailed {
		response.ErrorMessage = report.ErrorMessage
	}

	return c.JSON(response)
}

// HandleDownload handles GET /jobs/:id/download, streaming the stored PDF.
func (h *JobHandler) HandleDownload(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID format",
		})
	}

	report, err := h.reportRepo.FindByID(reportID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "report job not found",
		})
	}

	if report.Status != models.StatusCompleted || report.PDFPath == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  "report is not ready for download",
			"status": report.Status,
		})
	}

	filename := fmt.Sprintf("%s_%s_Rapor.pdf", report.PersonName, report.SessionName)
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))

	return c.SendFile(*report.PDFPath)
}
