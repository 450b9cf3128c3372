package output

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/vsinha/quotes/pkg/application/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultBrand is the heading printed above every quote
const DefaultBrand = "ARC-Works"

var quoteTemplate = template.Must(template.ParseFS(templateFS, "templates/quote.html"))

// QuotePrint renders a quote as a printable HTML page
type QuotePrint struct {
	Brand string
	Now   func() time.Time
}

// TemplateData contains all data for rendering the quote template
type TemplateData struct {
	Brand       string
	Doc         dto.QuoteDocument
	GeneratedAt string
}

// NewQuotePrint creates a renderer with the default brand
func NewQuotePrint() *QuotePrint {
	return &QuotePrint{
		Brand: DefaultBrand,
		Now:   time.Now,
	}
}

// Render writes doc as an HTML page to w
func (p *QuotePrint) Render(w io.Writer, doc dto.QuoteDocument) error {
	data := TemplateData{
		Brand:       p.Brand,
		Doc:         doc,
		GeneratedAt: p.Now().Format("2006-01-02 15:04:05"),
	}
	if err := quoteTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// RenderQuoteHTML renders doc with the default renderer
func RenderQuoteHTML(w io.Writer, doc dto.QuoteDocument) error {
	return NewQuotePrint().Render(w, doc)
}
