package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/report-generator/internal/models"
	"deepwork/report-generator/internal/services"
)

type mockParser struct {
	ParseSessionFunc func(r io.Reader) (*models.SessionRecord, error)
}

func (m *mockParser) ParseSession(r io.Reader) (*models.SessionRecord, error) {
	return m.ParseSessionFunc(r)
}

type mockReportService struct {
	GenerateReportFunc func(ctx context.Context, rec *models.SessionRecord) (*services.GeneratedReport, error)
	ArchiveReportFunc  func(ctx context.Context, rec *models.SessionRecord, gen *services.GeneratedReport) (uuid.UUID, error)
	SearchSimilarFunc  func(ctx context.Context, query string, limit int) ([]models.SimilarReport, error)
}

func (m *mockReportService) GenerateReport(ctx context.Context, rec *models.SessionRecord) (*services.GeneratedReport, error) {
	return m.GenerateReportFunc(ctx, rec)
}

func (m *mockReportService) ArchiveReport(ctx context.Context, rec *models.SessionRecord, gen *services.GeneratedReport) (uuid.UUID, error) {
	if m.ArchiveReportFunc != nil {
		return m.ArchiveReportFunc(ctx, rec, gen)
	}
	return uuid.New(), nil
}

func (m *mockReportService) ProcessJob(ctx context.Context, reportID uuid.UUID) error { return nil }

func (m *mockReportService) SearchSimilar(ctx context.Context, query string, limit int) ([]models.SimilarReport, error) {
	if m.SearchSimilarFunc != nil {
		return m.SearchSimilarFunc(ctx, query, limit)
	}
	return nil, nil
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/reports", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func testRecord() *models.SessionRecord {
	return &models.SessionRecord{
		PersonName:  "Ali Demir",
		SessionName: "Backend Mülakatı",
		Score:       82.5,
		Kind:        models.KindCandidate,
	}
}

func newReportApp(parser services.SessionParserService, svc services.ReportService) *fiber.App {
	app := fiber.New()
	handler := NewReportHandler(parser, svc, 1024*1024)
	app.Post("/reports", handler.HandleGenerateReport)
	return app
}

func TestHandleGenerateReport(t *testing.T) {
	okParser := &mockParser{
		ParseSessionFunc: func(r io.Reader) (*models.SessionRecord, error) {
			return testRecord(), nil
		},
	}

	t.Run("returns the rendered PDF as an attachment", func(t *testing.T) {
		archived := false
		svc := &mockReportService{
			GenerateReportFunc: func(ctx context.Context, rec *models.SessionRecord) (*services.GeneratedReport, error) {
				return &services.GeneratedReport{
					Filename: rec.ReportFilename(),
					PDF:      []byte("%PDF-1.4 fake"),
				}, nil
			},
			ArchiveReportFunc: func(ctx context.Context, rec *models.SessionRecord, gen *services.GeneratedReport) (uuid.UUID, error) {
				archived = true
				return uuid.New(), nil
			},
		}
		app := newReportApp(okParser, svc)

		resp, err := app.Test(uploadRequest(t, "session.csv", "kisi_adi\nAli"), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment; filename*=UTF-8''")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 fake", string(body))
		assert.True(t, archived)
	})

	t.Run("skips archiving for cache hits", func(t *testing.T) {
		archived := false
		svc := &mockReportService{
			GenerateReportFunc: func(ctx context.Context, rec *models.SessionRecord) (*services.GeneratedReport, error) {
				return &services.GeneratedReport{
					Filename:  rec.ReportFilename(),
					PDF:       []byte("cached"),
					FromCache: true,
				}, nil
			},
			ArchiveReportFunc: func(ctx context.Context, rec *models.SessionRecord, gen *services.GeneratedReport) (uuid.UUID, error) {
				archived = true
				return uuid.New(), nil
			},
		}
		app := newReportApp(okParser, svc)

		resp, err := app.Test(uploadRequest(t, "session.csv", "data"), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, archived)
	})

	t.Run("rejects requests without a file", func(t *testing.T) {
		app := newReportApp(okParser, &mockReportService{})

		req := httptest.NewRequest(http.MethodPost, "/reports", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects non-CSV uploads", func(t *testing.T) {
		app := newReportApp(okParser, &mockReportService{})

		resp, err := app.Test(uploadRequest(t, "session.xlsx", "data"), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("maps validation failures to 400", func(t *testing.T) {
		parser := &mockParser{
			ParseSessionFunc: func(r io.Reader) (*models.SessionRecord, error) {
				return nil, services.ErrValidation
			},
		}
		app := newReportApp(parser, &mockReportService{})

		resp, err := app.Test(uploadRequest(t, "session.csv", "data"), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("maps generation failures to 502", func(t *testing.T) {
		svc := &mockReportService{
			GenerateReportFunc: func(ctx context.Context, rec *models.SessionRecord) (*services.GeneratedReport, error) {
				return nil, services.ErrGeneration
			},
		}
		app := newReportApp(okParser, svc)

		resp, err := app.Test(uploadRequest(t, "session.csv", "data"), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("maps render failures to 500", func(t *testing.T) {
		svc := &mockReportService{
			GenerateReportFunc: func(ctx context.Context, rec *models.SessionRecord) (*services.GeneratedReport, error) {
				return nil, services.ErrRender
			},
		}
		app := newReportApp(okParser, svc)

		resp, err := app.Test(uploadRequest(t, "session.csv", "data"), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}
