package services

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// AssetService reads branding assets and stores produced artifacts: rendered
// PDFs for the async flow and optional debug HTML dumps.
type AssetService interface {
	LogoBase64() string
	SavePDF(filename string, data []byte) (string, error)
	SaveDebugHTML(filename, html string)
	EnsureOutputDir() error
}

type assetService struct {
	assetPath  string
	logoFile   string
	outputPath string
	debugHTML  bool
}

func NewAssetService(assetPath, logoFile, outputPath string, debugHTML bool) AssetService {
	return &assetService{
		assetPath:  assetPath,
		logoFile:   logoFile,
		outputPath: outputPath,
		debugHTML:  debugHTML,
	}
}

func (s *assetService) EnsureOutputDir() error {
	if err := os.MkdirAll(s.outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// LogoBase64 returns the inline-encoded logo, or empty when the asset is
// missing or unreadable. Missing branding degrades the report, it never
// fails it.
func (s *assetService) LogoBase64() string {
	path := filepath.Join(s.assetPath, s.logoFile)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️  Logo asset not readable at %s: %v", path, err)
		return ""
	}

	return base64.StdEncoding.EncodeToString(data)
}

func (s *assetService) SavePDF(filename string, data []byte) (string, error) {
	path := filepath.Join(s.outputPath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save pdf: %w", err)
	}
	return path, nil
}

// SaveDebugHTML dumps the assembled markup next to the PDFs when enabled.
// Best-effort: a failed dump is logged and otherwise ignored.
func (s *assetService) SaveDebugHTML(filename, html string) {
	if !s.debugHTML {
		return
	}
	path := filepath.Join(s.outputPath, filename)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		log.Printf("⚠️  Failed to save debug HTML %s: %v", path, err)
		return
	}
	log.Printf("💾 Debug HTML saved to %s", path)
}
