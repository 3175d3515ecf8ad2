package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/report-generator/internal/models"
)

type mockGenerator struct {
	GenerateTextFunc func(ctx context.Context, prompt string, temperature float32) (string, error)
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.GenerateTextFunc(ctx, prompt, temperature)
}

func (m *mockGenerator) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return m.GenerateTextFunc(ctx, prompt, temperature)
}

type mockRenderer struct {
	RenderHTMLFunc func(ctx context.Context, html string) ([]byte, error)
}

func (m *mockRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	return m.RenderHTMLFunc(ctx, html)
}

type mockAssets struct {
	logo      string
	savedPDFs map[string][]byte
}

func newMockAssets() *mockAssets {
	return &mockAssets{savedPDFs: make(map[string][]byte)}
}

func (m *mockAssets) LogoBase64() string { return m.logo }

func (m *mockAssets) SavePDF(filename string, data []byte) (string, error) {
	m.savedPDFs[filename] = data
	return "/output/" + filename, nil
}

func (m *mockAssets) SaveDebugHTML(filename, html string) {}

func (m *mockAssets) EnsureOutputDir() error { return nil }

type mockRepo struct {
	CreateFunc       func(report *models.Report) error
	FindByIDFunc     func(id uuid.UUID) (*models.Report, error)
	UpdateStatusFunc func(id uuid.UUID, status models.ReportStatus) error
	UpdateResultFunc func(id uuid.UUID, pdfPath string, suitabilityScore float64) error
	UpdateErrorFunc  func(id uuid.UUID, errorMsg string) error
}

func (m *mockRepo) Create(report *models.Report) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(report)
	}
	return nil
}

func (m *mockRepo) FindByID(id uuid.UUID) (*models.Report, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, fmt.Errorf("report not found")
}

func (m *mockRepo) UpdateStatus(id uuid.UUID, status models.ReportStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(id, status)
	}
	return nil
}

func (m *mockRepo) UpdateResult(id uuid.UUID, pdfPath string, suitabilityScore float64) error {
	if m.UpdateResultFunc != nil {
		return m.UpdateResultFunc(id, pdfPath, suitabilityScore)
	}
	return nil
}

func (m *mockRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	if m.UpdateErrorFunc != nil {
		return m.UpdateErrorFunc(id, errorMsg)
	}
	return nil
}

func (m *mockRepo) FindPendingJobs(limit int) ([]models.Report, error) { return nil, nil }

func (m *mockRepo) FindCompleted(limit int) ([]models.Report, error) { return nil, nil }

type mockEmbedder struct {
	GenerateEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return m.GenerateEmbeddingFunc(ctx, text)
}

type mockNarrativeIndex struct {
	UpsertNarrativeFunc func(ctx context.Context, reportID, personName, text string, embedding []float32) error
	SearchSimilarFunc   func(ctx context.Context, queryEmbedding []float32, limit int) ([]NarrativeMatch, error)
}

func (m *mockNarrativeIndex) InitCollection() error { return nil }

func (m *mockNarrativeIndex) UpsertNarrative(ctx context.Context, reportID, personName, text string, embedding []float32) error {
	if m.UpsertNarrativeFunc != nil {
		return m.UpsertNarrativeFunc(ctx, reportID, personName, text, embedding)
	}
	return nil
}

func (m *mockNarrativeIndex) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]NarrativeMatch, error) {
	if m.SearchSimilarFunc != nil {
		return m.SearchSimilarFunc(ctx, queryEmbedding, limit)
	}
	return nil, nil
}

func (m *mockNarrativeIndex) DeleteNarrative(ctx context.Context, reportID string) error { return nil }

func staticGenerator(output string) *mockGenerator {
	return &mockGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			return output, nil
		},
	}
}

func staticRenderer(pdf []byte) *mockRenderer {
	return &mockRenderer{
		RenderHTMLFunc: func(ctx context.Context, html string) ([]byte, error) {
			return pdf, nil
		},
	}
}

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()
	fakePDF := []byte("%PDF-1.4 fake")

	t.Run("produces a complete report", func(t *testing.T) {
		var renderedHTML string
		renderer := &mockRenderer{
			RenderHTMLFunc: func(ctx context.Context, html string) ([]byte, error) {
				renderedHTML = html
				return fakePDF, nil
			},
		}
		svc := NewReportService(
			&mockRepo{}, staticGenerator("```html\n"+assemblerTestDoc+"\n```"),
			nil, nil, renderer, newMockAssets(), nil, 0.4, 3,
		)

		rec := promptTestRecord(models.KindCandidate)
		gen, err := svc.GenerateReport(ctx, rec)
		require.NoError(t, err)

		assert.Equal(t, "Ali Demir_Backend Mülakatı_Rapor.pdf", gen.Filename)
		assert.Equal(t, fakePDF, gen.PDF)
		assert.Equal(t, 82.5, gen.SuitabilityScore)
		assert.False(t, gen.FromCache)

		// The renderer received the assembled document, charts included.
		assert.Contains(t, renderedHTML, "<svg")
		assert.Contains(t, renderedHTML, "Aday Duygu Analizi")
		assert.Equal(t, renderedHTML, gen.HTML)
	})

	t.Run("customer reports lose the suitability section", func(t *testing.T) {
		svc := NewReportService(
			&mockRepo{}, staticGenerator(assemblerTestDoc),
			nil, nil, staticRenderer(fakePDF), newMockAssets(), nil, 0.4, 3,
		)

		gen, err := svc.GenerateReport(ctx, promptTestRecord(models.KindCustomer))
		require.NoError(t, err)
		assert.NotContains(t, gen.HTML, SuitabilityToken)
	})

	t.Run("generation failure maps to ErrGeneration", func(t *testing.T) {
		generator := &mockGenerator{
			GenerateTextFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
				return "", fmt.Errorf("model overloaded")
			},
		}
		svc := NewReportService(
			&mockRepo{}, generator,
			nil, nil, staticRenderer(fakePDF), newMockAssets(), nil, 0.4, 3,
		)

		_, err := svc.GenerateReport(ctx, promptTestRecord(models.KindCandidate))
		assert.ErrorIs(t, err, ErrGeneration)
	})

	t.Run("render failure propagates unchanged", func(t *testing.T) {
		renderer := &mockRenderer{
			RenderHTMLFunc: func(ctx context.Context, html string) ([]byte, error) {
				return nil, fmt.Errorf("%w: wkhtmltopdf exited with status 1", ErrRender)
			},
		}
		svc := NewReportService(
			&mockRepo{}, staticGenerator(assemblerTestDoc),
			nil, nil, renderer, newMockAssets(), nil, 0.4, 3,
		)

		_, err := svc.GenerateReport(ctx, promptTestRecord(models.KindCandidate))
		assert.ErrorIs(t, err, ErrRender)
	})
}

func TestArchiveReport(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the PDF and a completed row", func(t *testing.T) {
		var created *models.Report
		repo := &mockRepo{
			CreateFunc: func(report *models.Report) error {
				created = report
				return nil
			},
		}
		assets := newMockAssets()
		svc := NewReportService(
			repo, staticGenerator(assemblerTestDoc),
			nil, nil, staticRenderer([]byte("pdf")), assets, nil, 0.4, 3,
		)

		rec := promptTestRecord(models.KindCandidate)
		gen := &GeneratedReport{
			Filename:         rec.ReportFilename(),
			HTML:             "<html><body>metin</body></html>",
			PDF:              []byte("pdf"),
			SuitabilityScore: rec.Score,
		}

		id, err := svc.ArchiveReport(ctx, rec, gen)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		require.NotNil(t, created)
		assert.Equal(t, id, created.ID)
		assert.Equal(t, models.StatusCompleted, created.Status)
		assert.Equal(t, "Ali Demir", created.PersonName)
		require.NotNil(t, created.PDFPath)
		assert.Contains(t, *created.PDFPath, id.String())

		var payload models.SessionRecord
		require.NoError(t, json.Unmarshal([]byte(created.Payload), &payload))
		assert.Equal(t, rec.PersonName, payload.PersonName)

		assert.Len(t, assets.savedPDFs, 1)
	})

	t.Run("indexes the narrative when an embedder is wired", func(t *testing.T) {
		var indexedText string
		embedder := &mockEmbedder{
			GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
				return []float32{0.1, 0.2}, nil
			},
		}
		index := &mockNarrativeIndex{
			UpsertNarrativeFunc: func(ctx context.Context, reportID, personName, text string, embedding []float32) error {
				indexedText = text
				return nil
			},
		}
		svc := NewReportService(
			&mockRepo{CreateFunc: func(report *models.Report) error { return nil }},
			staticGenerator(assemblerTestDoc),
			embedder, index, staticRenderer([]byte("pdf")), newMockAssets(), nil, 0.4, 3,
		)

		rec := promptTestRecord(models.KindCandidate)
		gen := &GeneratedReport{
			Filename: rec.ReportFilename(),
			HTML:     "<html><body><p>Genel değerlendirme metni.</p></body></html>",
			PDF:      []byte("pdf"),
		}

		_, err := svc.ArchiveReport(ctx, rec, gen)
		require.NoError(t, err)
		assert.Equal(t, "Genel değerlendirme metni.", indexedText)
	})
}

func TestProcessJob(t *testing.T) {
	ctx := context.Background()
	jobID := uuid.New()

	queuedReport := func(kind models.ReportKind) *models.Report {
		rec := promptTestRecord(kind)
		payload, _ := json.Marshal(rec)
		return &models.Report{
			ID:          jobID,
			PersonName:  rec.PersonName,
			SessionName: rec.SessionName,
			Kind:        int(kind),
			Status:      models.StatusQueued,
			Payload:     string(payload),
		}
	}

	t.Run("runs a queued job to completion", func(t *testing.T) {
		var statuses []models.ReportStatus
		var resultPath string
		var resultScore float64
		repo := &mockRepo{
			FindByIDFunc: func(id uuid.UUID) (*models.Report, error) {
				return queuedReport(models.KindCandidate), nil
			},
			UpdateStatusFunc: func(id uuid.UUID, status models.ReportStatus) error {
				statuses = append(statuses, status)
				return nil
			},
			UpdateResultFunc: func(id uuid.UUID, pdfPath string, suitabilityScore float64) error {
				resultPath = pdfPath
				resultScore = suitabilityScore
				return nil
			},
		}
		assets := newMockAssets()
		svc := NewReportService(
			repo, staticGenerator(assemblerTestDoc),
			nil, nil, staticRenderer([]byte("pdf")), assets, nil, 0.4, 3,
		)

		require.NoError(t, svc.ProcessJob(ctx, jobID))

		assert.Equal(t, []models.ReportStatus{models.StatusProcessing}, statuses)
		assert.Contains(t, resultPath, jobID.String())
		assert.Equal(t, 82.5, resultScore)
		assert.Len(t, assets.savedPDFs, 1)
	})

	t.Run("records the failure on generation errors", func(t *testing.T) {
		var recordedErr string
		repo := &mockRepo{
			FindByIDFunc: func(id uuid.UUID) (*models.Report, error) {
				return queuedReport(models.KindCandidate), nil
			},
			UpdateErrorFunc: func(id uuid.UUID, errorMsg string) error {
				recordedErr = errorMsg
				return nil
			},
		}
		generator := &mockGenerator{
			GenerateTextFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
				return "", fmt.Errorf("model overloaded")
			},
		}
		svc := NewReportService(
			repo, generator,
			nil, nil, staticRenderer([]byte("pdf")), newMockAssets(), nil, 0.4, 3,
		)

		err := svc.ProcessJob(ctx, jobID)
		require.Error(t, err)
		assert.Contains(t, recordedErr, "model overloaded")
	})

	t.Run("records the failure on unreadable payloads", func(t *testing.T) {
		var recordedErr string
		repo := &mockRepo{
			FindByIDFunc: func(id uuid.UUID) (*models.Report, error) {
				return &models.Report{ID: jobID, Payload: "not json"}, nil
			},
			UpdateErrorFunc: func(id uuid.UUID, errorMsg string) error {
				recordedErr = errorMsg
				return nil
			},
		}
		svc := NewReportService(
			repo, staticGenerator(assemblerTestDoc),
			nil, nil, staticRenderer([]byte("pdf")), newMockAssets(), nil, 0.4, 3,
		)

		err := svc.ProcessJob(ctx, jobID)
		require.Error(t, err)
		assert.Contains(t, recordedErr, "unreadable job payload")
	})
}

func TestSearchSimilar(t *testing.T) {
	ctx := context.Background()

	t.Run("unavailable without an embedder", func(t *testing.T) {
		svc := NewReportService(
			&mockRepo{}, staticGenerator(""),
			nil, nil, staticRenderer(nil), newMockAssets(), nil, 0.4, 3,
		)

		_, err := svc.SearchSimilar(ctx, "deneyimli aday", 5)
		assert.Error(t, err)
	})

	t.Run("maps matches and truncates long excerpts", func(t *testing.T) {
		long := strings.Repeat("ç", 400)
		embedder := &mockEmbedder{
			GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
				return []float32{0.5}, nil
			},
		}
		index := &mockNarrativeIndex{
			SearchSimilarFunc: func(ctx context.Context, queryEmbedding []float32, limit int) ([]NarrativeMatch, error) {
				return []NarrativeMatch{
					{ReportID: "abc", PersonName: "Ali Demir", Score: 0.92, Text: long},
					{ReportID: "def", PersonName: "Ayşe Yılmaz", Score: 0.81, Text: "kısa özet"},
				}, nil
			},
		}
		svc := NewReportService(
			&mockRepo{}, staticGenerator(""),
			embedder, index, staticRenderer(nil), newMockAssets(), nil, 0.4, 3,
		)

		results, err := svc.SearchSimilar(ctx, "deneyimli aday", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "abc", results[0].ReportID)
		assert.Equal(t, float32(0.92), results[0].Score)
		assert.Equal(t, 280, len([]rune(results[0].Excerpt)))
		assert.Equal(t, "kısa özet", results[1].Excerpt)
	})
}
