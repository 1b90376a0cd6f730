package html

import (
	"bytes"
	"html/template"

	"github.com/gigflick/resume-analyzer/internal/service/report/types"
)

// Renderer produces the HTML body of the report email.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{tmpl: template.Must(template.New("email").
		Funcs(template.FuncMap{"missingScores": types.MissingScoresNote}).
		Parse(emailTemplate))}
}

func (r *Renderer) SupportedFormat() types.ReportFormat {
	return types.ReportFormatHTML
}

func (r *Renderer) Render(data *types.ReportData) ([]byte, error) {
	if data == nil || data.Results == nil {
		return nil, types.ErrNoResults
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const emailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #212529;">
  <h2>Your Resume Analysis Report</h2>
  <p>Thank you for using the resume analyzer. The full report for <strong>{{ .FileName }}</strong> is attached.</p>
  <p>Overall score: <strong>{{ .Results.OverallScore }}/100</strong> ({{ .Rating }})</p>
  {{- if .Results.Overview }}
  <p>{{ .Results.Overview }}</p>
  {{- end }}
  <table style="border-collapse: collapse;">
    <tr><th style="text-align: left; padding: 4px 12px;">Section</th><th style="padding: 4px 12px;">Score</th></tr>
    {{- range .Results.Sections }}
    <tr><td style="padding: 4px 12px;">{{ .Name }}</td><td style="text-align: center; padding: 4px 12px;">{{ .Score }}</td></tr>
    {{- end }}
  </table>
  {{- with missingScores . }}
  <p style="color: #856404;">{{ . }}</p>
  {{- end }}
  {{- if and .Options.IncludeAccessibility .Results.Accessibility }}
  <p>Accessibility score: <strong>{{ .Results.Accessibility.Score }}/100</strong></p>
  {{- end }}
  <p style="color: #6c757d; font-size: 12px;">Generated {{ .Timestamps.Generated }} {{ .Timestamps.GeneratedTime }}</p>
</body>
</html>
`
