package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"

	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

func outputFlagUsage() string {
	return fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", "))
}

func validateOutput(output string) error {
	if len(output) > 0 && !funk.Contains(legalOutputTypes, output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

// printResource writes v as json or yaml, or hands over to table when no format was requested.
func printResource(w io.Writer, output string, v any, table func(*tabwriter.Writer)) error {
	switch output {
	case jsonFormat:
		marshalled, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(w, "%s\n", string(marshalled))
		return nil
	case yamlFormat:
		marshalled, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(w, "%s\n", string(marshalled))
		return nil
	default:
		tw := tabwriter.NewWriter(w, 0, 8, 1, '\t', 0)
		table(tw)
		return tw.Flush()
	}
}

func printAnalysisTable(w *tabwriter.Writer, a *api.Analysis) {
	fmt.Fprintln(w, "ID\tFILE\tSTATUS\tSCORE\tMESSAGE")
	score := "-"
	if a.Results != nil {
		score = fmt.Sprintf("%d", a.Results.OverallScore)
	}
	message := ""
	if a.StatusMessage != nil {
		message = *a.StatusMessage
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Id, a.FileName, a.Status, score, message)

	if a.Results == nil || len(a.Results.Sections) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "SECTION\tSCORE\tSUGGESTIONS")
	for _, s := range a.Results.Sections {
		fmt.Fprintf(w, "%s\t%d\t%d\n", s.Name, s.Score, len(s.Suggestions))
	}
}

func printAnalyticsTable(w *tabwriter.Writer, a *api.Analytics) {
	fmt.Fprintf(w, "TOTAL RESUMES\t%d\n", a.TotalResumes)
	fmt.Fprintf(w, "AVERAGE SCORE\t%.1f\n", a.AverageScore)
	if len(a.SectionAverages) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "SECTION\tAVERAGE\tANALYSES")
	for _, s := range a.SectionAverages {
		fmt.Fprintf(w, "%s\t%.1f\t%d\n", s.SectionName, s.AverageScore, s.TotalAnalyses)
	}
}
