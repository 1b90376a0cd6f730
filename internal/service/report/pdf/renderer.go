package pdf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/gigflick/resume-analyzer/internal/service/report/types"
	"github.com/gigflick/resume-analyzer/internal/store/model"
)

const (
	fontFamily  = "Helvetica"
	pageMargin  = 15.0
	lineHeight  = 6.0
	scoreColumn = 30.0
)

type Renderer struct {
	compress bool
}

type Option func(*Renderer)

// WithCompression toggles stream compression, on by default.
func WithCompression(on bool) Option {
	return func(r *Renderer) {
		r.compress = on
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{compress: true}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Renderer) SupportedFormat() types.ReportFormat {
	return types.ReportFormatPDF
}

func (r *Renderer) Render(data *types.ReportData) ([]byte, error) {
	if data == nil || data.Results == nil {
		return nil, types.ErrNoResults
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetCompression(r.compress)
	doc.SetTitle("Resume Analysis Report", true)
	doc.SetCreator("resume-analyzer", true)

	// core fonts are cp1252
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-pageMargin)
		doc.SetFont(fontFamily, "I", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	w := &writer{doc: doc, tr: tr}

	w.title("Resume Analysis Report")
	w.meta(fmt.Sprintf("File: %s", data.FileName))
	w.meta(fmt.Sprintf("Uploaded: %s", data.UploadedAt))
	w.meta(fmt.Sprintf("Generated: %s %s", data.Timestamps.Generated, data.Timestamps.GeneratedTime))
	doc.Ln(4)

	results := data.Results
	w.heading("Overall Score")
	w.score(results.OverallScore, data.Rating)

	w.heading("Overview")
	w.paragraph(results.Overview)

	w.heading("Strengths")
	w.bullets(results.Strengths)

	w.heading("Areas for Improvement")
	w.bullets(results.Weaknesses)

	w.heading("Section Analysis")
	w.sectionTable(results.Sections)
	if note := types.MissingScoresNote(data); note != "" {
		w.meta(note)
	}

	w.heading("Detailed Section Analysis")
	for _, section := range results.Sections {
		w.subheading(fmt.Sprintf("%s - Score: %d/100", section.Name, section.Score))
		w.paragraph(section.Content)
		w.label("Suggestions:")
		w.bullets(section.Suggestions)
	}

	if data.Options.IncludeAccessibility && results.Accessibility != nil {
		w.accessibility(results.Accessibility)
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type writer struct {
	doc *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) title(text string) {
	w.doc.SetFont(fontFamily, "B", 20)
	w.doc.SetTextColor(33, 37, 41)
	w.doc.CellFormat(0, 12, w.tr(text), "", 1, "C", false, 0, "")
	w.doc.Ln(2)
}

func (w *writer) meta(text string) {
	w.doc.SetFont(fontFamily, "", 9)
	w.doc.SetTextColor(108, 117, 125)
	w.doc.CellFormat(0, 5, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *writer) heading(text string) {
	w.doc.Ln(3)
	w.doc.SetFont(fontFamily, "B", 14)
	w.doc.SetTextColor(13, 71, 161)
	w.doc.CellFormat(0, 9, w.tr(text), "B", 1, "L", false, 0, "")
	w.doc.Ln(2)
}

func (w *writer) subheading(text string) {
	w.doc.Ln(2)
	w.doc.SetFont(fontFamily, "B", 11)
	w.doc.SetTextColor(33, 37, 41)
	w.doc.CellFormat(0, 7, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *writer) label(text string) {
	w.doc.SetFont(fontFamily, "B", 10)
	w.doc.SetTextColor(33, 37, 41)
	w.doc.CellFormat(0, lineHeight, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *writer) paragraph(text string) {
	if text == "" {
		return
	}
	w.doc.SetFont(fontFamily, "", 10)
	w.doc.SetTextColor(33, 37, 41)
	w.doc.MultiCell(0, lineHeight-1, w.tr(text), "", "L", false)
	w.doc.Ln(1)
}

func (w *writer) bullets(items []string) {
	w.doc.SetFont(fontFamily, "", 10)
	w.doc.SetTextColor(33, 37, 41)
	if len(items) == 0 {
		w.doc.CellFormat(0, lineHeight, w.tr("None reported."), "", 1, "L", false, 0, "")
		return
	}
	for _, item := range items {
		w.doc.CellFormat(6, lineHeight, "-", "", 0, "R", false, 0, "")
		w.doc.MultiCell(0, lineHeight-1, w.tr(item), "", "L", false)
	}
}

func (w *writer) score(score int, rating string) {
	r, g, b := scoreColor(score)
	w.doc.SetFont(fontFamily, "B", 28)
	w.doc.SetTextColor(r, g, b)
	w.doc.CellFormat(40, 14, strconv.Itoa(score)+"/100", "", 0, "L", false, 0, "")
	w.doc.SetFont(fontFamily, "", 12)
	w.doc.CellFormat(0, 14, w.tr(rating), "", 1, "L", false, 0, "")
}

func (w *writer) sectionTable(sections []model.Section) {
	w.doc.SetFont(fontFamily, "B", 10)
	w.doc.SetFillColor(233, 236, 239)
	w.doc.SetTextColor(33, 37, 41)

	pageWidth, _ := w.doc.GetPageSize()
	nameColumn := pageWidth - 2*pageMargin - scoreColumn

	w.doc.CellFormat(nameColumn, 8, "Section", "1", 0, "L", true, 0, "")
	w.doc.CellFormat(scoreColumn, 8, "Score", "1", 1, "C", true, 0, "")

	w.doc.SetFont(fontFamily, "", 10)
	for _, section := range sections {
		r, g, b := scoreColor(section.Score)
		w.doc.SetTextColor(33, 37, 41)
		w.doc.CellFormat(nameColumn, 8, w.tr(section.Name), "1", 0, "L", false, 0, "")
		w.doc.SetTextColor(r, g, b)
		w.doc.CellFormat(scoreColumn, 8, strconv.Itoa(section.Score), "1", 1, "C", false, 0, "")
	}
	w.doc.SetTextColor(33, 37, 41)
}

func (w *writer) accessibility(a *model.Accessibility) {
	w.heading("Accessibility")
	w.score(a.Score, "")
	w.paragraph(a.OverallFeedback)

	for _, issue := range a.Issues {
		w.subheading(fmt.Sprintf("[%s] %s", issue.Severity, issue.Type))
		w.paragraph(issue.Description)
		if issue.Suggestion != "" {
			w.paragraph("Suggestion: " + issue.Suggestion)
		}
	}
}

func scoreColor(score int) (int, int, int) {
	switch {
	case score >= 80:
		return 46, 125, 50
	case score >= 60:
		return 245, 124, 0
	default:
		return 198, 40, 40
	}
}
