package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"deepwork/report-generator/internal/config"
	"deepwork/report-generator/internal/repositories"
	"deepwork/report-generator/internal/services"
)

// Rebuilds the narrative vector index from archived report PDFs. Useful
// after switching Qdrant collections or losing the index.
func main() {
	log.Println("🚀 Starting report reindexing...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if cfg.LLM.Provider != config.ProviderGemini {
		log.Fatalf("❌ Reindexing requires the Gemini provider for embeddings")
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	reportRepo := repositories.NewReportRepository(db)

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	narrativeIdx, err := services.NewNarrativeIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := narrativeIdx.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	reports, err := reportRepo.FindCompleted(500)
	if err != nil {
		log.Fatalf("❌ Failed to load completed reports: %v", err)
	}

	ctx := context.Background()
	successCount := 0
	failCount := 0

	for _, report := range reports {
		log.Printf("\n📄 Processing: %s (%s)", report.PersonName, report.ID)

		if report.PDFPath == nil {
			log.Println("   ⚠️  No stored PDF, skipping")
			failCount++
			continue
		}

		if _, err := os.Stat(*report.PDFPath); os.IsNotExist(err) {
			log.Printf("   ⚠️  PDF missing on disk: %s", *report.PDFPath)
			failCount++
			continue
		}

		text, err := extractPDFText(*report.PDFPath)
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}

		embedding, err := geminiService.GenerateEmbedding(ctx, text)
		if err != nil {
			log.Printf("   ❌ Failed to generate embedding: %v", err)
			failCount++
			continue
		}

		if err := narrativeIdx.UpsertNarrative(ctx, report.ID.String(), report.PersonName, text, embedding); err != nil {
			log.Printf("   ❌ Failed to upsert narrative: %v", err)
			failCount++
			continue
		}

		log.Println("   ✅ Reindexed")
		successCount++
	}

	log.Printf("\n🏁 Reindexing finished: %d succeeded, %d failed\n", successCount, failCount)
}

func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return strings.Join(strings.Fields(sb.String()), " "), nil
}
