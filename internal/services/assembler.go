package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"deepwork/report-generator/internal/models"
)

// Stable insertion-point identifiers inside the generated template. The
// suitability token is owned here, not by the prompt layer, so removal never
// depends on the generator echoing anything else back.
const (
	chartPlaceholderID     = "bar-chart-placeholder"
	headerLogoID           = "header_logo"
	watermarkPlaceholderID = "watermark-placeholder"

	// SuitabilityToken marks where the suitability section lives in the
	// candidate template. Customer reports have it stripped wholesale.
	SuitabilityToken = "{{uygunluk_degerlendirmesi_bolumu}}"
)

// AssemblyInput bundles everything the assembler merges into one document.
type AssemblyInput struct {
	// GeneratedHTML is the raw generator output, possibly fence-wrapped.
	GeneratedHTML string

	// AbsoluteChart and DifferentialChart are opaque markup fragments from
	// the ChartRenderer. Either may be the no-data placeholder.
	AbsoluteChart     string
	DifferentialChart string

	// LogoBase64 is the inline-encoded logo, or empty when the asset is
	// unavailable (a degraded, non-fatal condition).
	LogoBase64 string

	Kind models.ReportKind
}

// Assembler merges chart markup, the branding image and the classification
// variant into the generated document. Every insertion point is best-effort;
// only an unparsable input document is an error.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble runs the full merge in its required order and serializes the
// resulting tree exactly once.
func (a *Assembler) Assemble(input AssemblyInput) (string, error) {
	raw := stripCodeFences(input.GeneratedHTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: unparsable generated document: %v", ErrGeneration, err)
	}

	a.insertCharts(doc, input.AbsoluteChart, input.DifferentialChart)
	a.insertLogo(doc, input.LogoBase64)

	if input.Kind == models.KindCustomer {
		removeTextToken(doc, SuitabilityToken)
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize assembled document: %w", err)
	}
	return out, nil
}

func (a *Assembler) insertCharts(doc *goquery.Document, absChart, diffChart string) {
	placeholder := doc.Find("#" + chartPlaceholderID)
	if placeholder.Length() == 0 {
		log.Printf("⚠️  Chart placeholder #%s not found; skipping chart insertion", chartPlaceholderID)
		return
	}
	// Replaces any placeholder content the generator may have left behind.
	placeholder.SetHtml(absChart + diffChart)
}

func (a *Assembler) insertLogo(doc *goquery.Document, logoBase64 string) {
	if logoBase64 == "" {
		log.Println("⚠️  Logo asset unavailable; header and watermark left empty")
		return
	}
	src := "data:image/png;base64," + logoBase64

	headerImg := doc.Find("#" + headerLogoID + " img")
	if headerImg.Length() > 0 {
		headerImg.SetAttr("src", src)
	}

	watermark := doc.Find("#" + watermarkPlaceholderID)
	if watermark.Length() > 0 {
		watermark.AppendHtml(fmt.Sprintf(`<img src="%s" alt="Deepwork Logo Filigranı"/>`, src))
	}
}

// NarrativeText extracts the visible body text of an assembled document,
// whitespace-collapsed, for embedding and archival.
func (a *Assembler) NarrativeText(document string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}

// stripCodeFences removes a wrapping markdown fence the generator sometimes
// adds around the document.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```html")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// removeTextToken deletes every occurrence of token from the document's text
// nodes. Nodes left holding only whitespace are dropped entirely. Operating
// on text nodes, not serialized markup, keeps element content that merely
// resembles the token safe.
func removeTextToken(doc *goquery.Document, token string) {
	for _, root := range doc.Nodes {
		stripTokenFromNode(root, token)
	}
}

func stripTokenFromNode(n *html.Node, token string) {
	if n.Type == html.TextNode && strings.Contains(n.Data, token) {
		n.Data = strings.ReplaceAll(n.Data, token, "")
		if strings.TrimSpace(n.Data) == "" && n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		stripTokenFromNode(c, token)
		c = next
	}
}
