package slack

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"ResearchBriefing/internal/domain"
)

// pageWidth is A4 portrait in mm.
const pageWidth = 210

// pdfDoc wraps fpdf with the briefing's house style: navy headings, an
// accent rule under the title, cards with a blue left edge.
type pdfDoc struct {
	f  *fpdf.Fpdf
	tr func(string) string
}

func newPDFDoc() *pdfDoc {
	f := fpdf.New("P", "mm", "A4", "")
	f.SetMargins(20, 20, 22)
	f.SetAutoPageBreak(true, 20)
	f.AddPage()
	return &pdfDoc{f: f, tr: f.UnicodeTranslatorFromDescriptor("")}
}

func (d *pdfDoc) rule(r, g, b int, width float64) {
	left, _, right, _ := d.f.GetMargins()
	y := d.f.GetY()
	d.f.SetDrawColor(r, g, b)
	d.f.SetLineWidth(width)
	d.f.Line(left, y, pageWidth-right, y)
}

func (d *pdfDoc) title(text string) {
	d.f.SetFont("Helvetica", "B", 16)
	d.f.SetTextColor(15, 52, 96)
	d.f.MultiCell(0, 8, d.tr(text), "", "L", false)
	d.rule(233, 69, 96, 0.6)
	d.f.Ln(6)
}

func (d *pdfDoc) sectionHead(text string) {
	d.f.SetFont("Helvetica", "B", 12)
	d.f.SetTextColor(22, 33, 62)
	d.f.MultiCell(0, 6, d.tr(text), "", "L", false)
	d.rule(221, 221, 221, 0.2)
	d.f.Ln(3)
}

func (d *pdfDoc) card(title, link, meta, summary string) {
	left, _, _, _ := d.f.GetMargins()
	top := d.f.GetY()

	d.f.SetX(left + 3)
	d.f.SetFont("Helvetica", "B", 10)
	d.f.SetTextColor(26, 115, 232)
	d.f.WriteLinkString(5, d.tr(title), link)
	d.f.Ln(5)

	d.f.SetX(left + 3)
	d.f.SetFont("Helvetica", "", 8)
	d.f.SetTextColor(85, 85, 85)
	d.f.MultiCell(0, 4, d.tr(meta), "", "L", false)

	if summary != "" {
		d.f.SetX(left + 3)
		d.f.SetFont("Helvetica", "", 8.5)
		d.f.SetTextColor(68, 68, 68)
		d.f.MultiCell(0, 4, d.tr(summary), "", "L", false)
	}

	d.f.SetDrawColor(26, 115, 232)
	d.f.SetLineWidth(0.8)
	d.f.Line(left+1, top, left+1, d.f.GetY())
	d.f.Ln(3)
}

func (d *pdfDoc) overflow(text string) {
	d.f.SetFont("Helvetica", "I", 8)
	d.f.SetTextColor(136, 136, 136)
	d.f.MultiCell(0, 4, d.tr(text), "", "L", false)
	d.f.Ln(2)
}

func (d *pdfDoc) footer(text string) {
	d.f.Ln(4)
	d.rule(204, 204, 204, 0.2)
	d.f.Ln(2)
	d.f.SetFont("Helvetica", "", 8)
	d.f.SetTextColor(119, 119, 119)
	d.f.MultiCell(0, 4, d.tr(text), "", "L", false)
}

func (d *pdfDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.f.Output(&buf); err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders the briefing as a styled A4 document mirroring the message
// sections. An all-empty snapshot still yields the header and the
// zero-count footer.
func (r *Renderer) PDF(day time.Time, snap domain.Snapshot) ([]byte, error) {
	doc := newPDFDoc()
	doc.title(fmt.Sprintf("Daily AI Research Briefing — %s (%s)",
		day.Format("2006-01-02"), day.Format("MST")))

	if len(snap.BlogPosts) > 0 {
		doc.sectionHead(fmt.Sprintf("High Priority — Tech Blog Posts (%d)", len(snap.BlogPosts)))
		for _, post := range capBlog(snap.BlogPosts) {
			meta := post.Source
			if !post.Published.IsZero() {
				meta += " · " + post.Published.Format("2006-01-02")
			}
			if len(post.ArxivIDs) > 0 {
				ids := post.ArxivIDs
				if len(ids) > maxArxivLinks {
					ids = ids[:maxArxivLinks]
				}
				meta += " · arXiv: " + strings.Join(ids, ", ")
			}
			doc.card(post.Title, post.URL, meta, truncate(post.Summary, previewLen))
		}
		if overflow := len(snap.BlogPosts) - maxItemsPerSection; overflow > 0 {
			doc.overflow(fmt.Sprintf("+%d more blog posts", overflow))
		}
	}

	if len(snap.ArxivPapers) > 0 {
		doc.sectionHead(fmt.Sprintf("Notable arXiv Papers (%d)", len(snap.ArxivPapers)))
		for _, paper := range capPapers(snap.ArxivPapers) {
			meta := paper.ArxivID + " · " + strings.Join(r.displayAll(paper.Matched), ", ")
			doc.card(paper.Title, paper.Link, meta, truncate(paper.Summary, previewLen))
		}
		if overflow := len(snap.ArxivPapers) - maxItemsPerSection; overflow > 0 {
			doc.overflow(fmt.Sprintf("+%d more arXiv papers", overflow))
		}
	}

	if len(snap.LinkedPapers) > 0 {
		doc.sectionHead(fmt.Sprintf("Blog / arXiv Updates (%d)", len(snap.LinkedPapers)))
		for _, item := range capLinked(snap.LinkedPapers) {
			blogRef := item.Blog.BlogSource
			if item.Blog.BlogTitle != "" {
				blogRef = item.Blog.BlogTitle
			}
			meta := fmt.Sprintf("%s · %s (%s)", item.Paper.ArxivID, blogRef, item.Blog.BlogSource)
			doc.card(item.Paper.Title, item.Paper.Link, meta, truncate(item.Paper.Summary, previewLen))
		}
		if overflow := len(snap.LinkedPapers) - maxItemsPerSection; overflow > 0 {
			doc.overflow(fmt.Sprintf("+%d more linked papers", overflow))
		}
	}

	doc.footer(fmt.Sprintf("%s · Past %dh · %d blogs, %d arXiv, %d linked · %d total",
		strings.Join(r.categories, ", "), r.fetchHours,
		len(snap.BlogPosts), len(snap.ArxivPapers), len(snap.LinkedPapers), snap.Total()))

	return doc.bytes()
}
