// Package pdf renders blog posts as downloadable PDF documents.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"blog-backend/internal/domains/blogpost"
)

// Renderer writes a printable rendition of a post: title, byline, body and
// the comment thread.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(p *blogpost.Post, w io.Writer) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.MultiCell(0, 10, p.Title, "", "L", false)
	doc.Ln(2)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(100, 100, 100)
	doc.CellFormat(0, 6, metaLine(p), "", 1, "L", false, 0, "")
	if names := authorNames(p); names != "" {
		doc.CellFormat(0, 6, "by "+names, "", 1, "L", false, 0, "")
	}
	doc.Ln(4)

	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 6, p.Content, "", "L", false)

	if len(p.Comments) > 0 {
		doc.Ln(8)
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 8, fmt.Sprintf("Comments (%d)", len(p.Comments)), "", 1, "L", false, 0, "")

		for _, c := range p.Comments {
			doc.Ln(2)
			doc.SetFont("Helvetica", "B", 10)
			header := c.Author
			if header == "" {
				header = "Anonymous"
			}
			if c.Rating != nil {
				header += fmt.Sprintf("  (%d/5)", *c.Rating)
			}
			doc.CellFormat(0, 6, header, "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 10)
			doc.MultiCell(0, 5, c.Comment, "", "L", false)
		}
	}

	return doc.Output(w)
}

func metaLine(p *blogpost.Post) string {
	return fmt.Sprintf("%s  |  %d %s read  |  %s",
		p.Category,
		p.ReadTime.Value,
		p.ReadTime.Unit,
		p.CreatedAt.Format("Jan 2, 2006"),
	)
}

func authorNames(p *blogpost.Post) string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		names = append(names, strings.TrimSpace(a.Name+" "+a.Surname))
	}
	return strings.Join(names, ", ")
}
