package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/ledongthuc/pdf"
)

// PDFRenderService is the document-rendering collaborator: assembled markup
// in, paginated binary document out.
type PDFRenderService interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

type pdfRenderService struct {
	basePath string
}

// NewPDFRenderService creates a renderer backed by the wkhtmltopdf binary.
// binPath overrides binary discovery when non-empty; basePath is the
// directory local font and image references resolve against.
func NewPDFRenderService(binPath, basePath string) PDFRenderService {
	if binPath != "" {
		wkhtmltopdf.SetPath(binPath)
	}
	return &pdfRenderService{basePath: basePath}
}

// RenderHTML renders the document and verifies the result actually parses
// as a PDF with at least one page before handing it back.
func (r *pdfRenderService) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	if r.basePath != "" {
		page.Allow.Set(r.basePath)
	}
	pdfg.AddPage(page)

	pdfg.MarginTop.Set(0)
	pdfg.MarginBottom.Set(0)
	pdfg.MarginLeft.Set(0)
	pdfg.MarginRight.Set(0)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	out := pdfg.Bytes()
	if err := validatePDF(out); err != nil {
		return nil, err
	}

	return out, nil
}

// validatePDF rejects output the renderer produced but a reader cannot open.
func validatePDF(b []byte) error {
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return fmt.Errorf("%w: produced document is not readable: %v", ErrRender, err)
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("%w: produced document has no pages", ErrRender)
	}
	return nil
}
