package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"deepwork/report-generator/internal/models"
	"deepwork/report-generator/internal/repositories"
)

// GeneratedReport is the outcome of one pipeline run.
type GeneratedReport struct {
	Filename         string
	HTML             string
	PDF              []byte
	SuitabilityScore float64
	FromCache        bool
}

type ReportService interface {
	// GenerateReport runs the full synchronous pipeline for one record:
	// prompt, generation, charts, assembly, rendering.
	GenerateReport(ctx context.Context, rec *models.SessionRecord) (*GeneratedReport, error)

	// ArchiveReport persists the produced document and indexes its
	// narrative for similarity search.
	ArchiveReport(ctx context.Context, rec *models.SessionRecord, gen *GeneratedReport) (uuid.UUID, error)

	// ProcessJob executes a queued report job end to end.
	ProcessJob(ctx context.Context, reportID uuid.UUID) error

	// SearchSimilar finds archived reports whose narratives resemble the
	// query text.
	SearchSimilar(ctx context.Context, query string, limit int) ([]models.SimilarReport, error)
}

type reportService struct {
	reportRepo    repositories.ReportRepository
	generator     TextGenerator
	embedder      Embedder
	narrativeIdx  NarrativeIndexService
	renderer      PDFRenderService
	assets        AssetService
	cache         *PDFCache
	promptBuilder *PromptBuilder
	charts        *ChartRenderer
	assembler     *Assembler
	temperature   float32
	maxRetries    int
}

func NewReportService(
	reportRepo repositories.ReportRepository,
	generator TextGenerator,
	embedder Embedder,
	narrativeIdx NarrativeIndexService,
	renderer PDFRenderService,
	assets AssetService,
	cache *PDFCache,
	temperature float32,
	maxRetries int,
) ReportService {
	return &reportService{
		reportRepo:    reportRepo,
		generator:     generator,
		embedder:      embedder,
		narrativeIdx:  narrativeIdx,
		renderer:      renderer,
		assets:        assets,
		cache:         cache,
		promptBuilder: NewPromptBuilder(),
		charts:        NewChartRenderer(),
		assembler:     NewAssembler(),
		temperature:   temperature,
		maxRetries:    maxRetries,
	}
}

func (s *reportService) GenerateReport(ctx context.Context, rec *models.SessionRecord) (*GeneratedReport, error) {
	filename := rec.ReportFilename()

	cacheKey := s.cache.Key(rec)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		log.Printf("⚡ Serving cached report for %s", filename)
		return &GeneratedReport{
			Filename:         filename,
			PDF:              cached,
			SuitabilityScore: rec.Score,
			FromCache:        true,
		}, nil
	}

	// Step 1: Generate the narrative document
	log.Printf("🤖 Generating report narrative for %s...", rec.PersonName)
	prompt := s.promptBuilder.BuildReportPrompt(rec)
	raw, err := s.generator.GenerateTextWithRetry(ctx, prompt, s.temperature, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	// Step 2: Render charts
	absChart := s.charts.RenderAbsolute(rec.Emotions)
	diffChart := s.charts.RenderDifferential(rec.Emotions)

	// Step 3: Assemble the final document
	assembled, err := s.assembler.Assemble(AssemblyInput{
		GeneratedHTML:     raw,
		AbsoluteChart:     absChart,
		DifferentialChart: diffChart,
		LogoBase64:        s.assets.LogoBase64(),
		Kind:              rec.Kind,
	})
	if err != nil {
		return nil, err
	}

	s.assets.SaveDebugHTML(strings.TrimSuffix(filename, ".pdf")+"_Debug.html", assembled)

	// Step 4: Render to PDF
	log.Printf("📄 Rendering PDF for %s...", rec.PersonName)
	pdfBytes, err := s.renderer.RenderHTML(ctx, assembled)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, pdfBytes); err != nil {
		log.Printf("⚠️  Failed to cache rendered report: %v", err)
	}

	return &GeneratedReport{
		Filename:         filename,
		HTML:             assembled,
		PDF:              pdfBytes,
		SuitabilityScore: rec.Score,
	}, nil
}

func (s *reportService) ArchiveReport(ctx context.Context, rec *models.SessionRecord, gen *GeneratedReport) (uuid.UUID, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal session record: %w", err)
	}

	id := uuid.New()
	pdfPath, err := s.assets.SavePDF(fmt.Sprintf("%s_%s", id, gen.Filename), gen.PDF)
	if err != nil {
		return uuid.Nil, err
	}

	report := &models.Report{
		ID:               id,
		PersonName:       rec.PersonName,
		SessionName:      rec.SessionName,
		Kind:             int(rec.Kind),
		Status:           models.StatusCompleted,
		Payload:          string(payload),
		SuitabilityScore: &gen.SuitabilityScore,
		PDFPath:          &pdfPath,
	}
	if err := s.reportRepo.Create(report); err != nil {
		return uuid.Nil, err
	}

	s.indexNarrative(ctx, report, gen.HTML)

	return id, nil
}

func (s *reportService) ProcessJob(ctx context.Context, reportID uuid.UUID) error {
	if err := s.reportRepo.UpdateStatus(reportID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🔄 Starting report job %s", reportID)

	report, err := s.reportRepo.FindByID(reportID)
	if err != nil {
		s.reportRepo.UpdateError(reportID, err.Error())
		return fmt.Errorf("failed to get report: %w", err)
	}

	var rec models.SessionRecord
	if err := json.Unmarshal([]byte(report.Payload), &rec); err != nil {
		s.reportRepo.UpdateError(reportID, fmt.Sprintf("unreadable job payload: %v", err))
		return fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	gen, err := s.GenerateReport(ctx, &rec)
	if err != nil {
		s.reportRepo.UpdateError(reportID, err.Error())
		return fmt.Errorf("failed to generate report: %w", err)
	}

	pdfPath, err := s.assets.SavePDF(fmt.Sprintf("%s_%s", reportID, gen.Filename), gen.PDF)
	if err != nil {
		s.reportRepo.UpdateError(reportID, err.Error())
		return err
	}

	if err := s.reportRepo.UpdateResult(reportID, pdfPath, gen.SuitabilityScore); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	s.indexNarrative(ctx, report, gen.HTML)

	log.Printf("✅ Report job %s completed", reportID)
	return nil
}

// indexNarrative embeds the report's visible text and upserts it into the
// vector index. Best-effort: indexing failures degrade search, not reports.
func (s *reportService) indexNarrative(ctx context.Context, report *models.Report, html string) {
	if s.embedder == nil || s.narrativeIdx == nil || html == "" {
		return
	}

	text := s.assembler.NarrativeText(html)
	if text == "" {
		return
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		log.Printf("⚠️  Failed to embed narrative for %s: %v", report.ID, err)
		return
	}

	if err := s.narrativeIdx.UpsertNarrative(ctx, report.ID.String(), report.PersonName, text, embedding); err != nil {
		log.Printf("⚠️  Failed to index narrative for %s: %v", report.ID, err)
	}
}

func (s *reportService) SearchSimilar(ctx context.Context, query string, limit int) ([]models.SimilarReport, error) {
	if s.embedder == nil || s.narrativeIdx == nil {
		return nil, fmt.Errorf("similarity search is unavailable for the configured provider")
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.narrativeIdx.SearchSimilar(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.SimilarReport, 0, len(matches))
	for _, m := range matches {
		excerpt := m.Text
		if runes := []rune(excerpt); len(runes) > 280 {
			excerpt = string(runes[:280])
		}
		results = append(results, models.SimilarReport{
			ReportID:   m.ReportID,
			PersonName: m.PersonName,
			Score:      m.Score,
			Excerpt:    excerpt,
		})
	}

	return results, nil
}
