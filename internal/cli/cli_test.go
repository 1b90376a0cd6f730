package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
)

func strPtr(s string) *string { return &s }

// fakeServer accepts one upload and answers polls with the given statuses, the last one repeating.
func fakeServer(id uuid.UUID, statuses ...api.AnalysisStatus) (*httptest.Server, *atomic.Int32) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.Analysis{Id: id, FileName: "cv.pdf", Status: api.AnalysisStatusProcessing})
	})
	mux.HandleFunc("/api/analysis/"+id.String(), func(w http.ResponseWriter, r *http.Request) {
		n := int(polls.Add(1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		a := api.Analysis{Id: id, FileName: "cv.pdf", Status: statuses[n], StatusMessage: strPtr("Extracting text")}
		if statuses[n] == api.AnalysisStatusCompleted {
			a.StatusMessage = strPtr("Analysis completed")
			a.Results = &api.AnalysisResults{
				OverallScore: 81,
				Sections:     []api.Section{{Name: "Experience", Score: 85, Suggestions: []string{"quantify"}}},
			}
		}
		if statuses[n] == api.AnalysisStatusFailed {
			a.StatusMessage = strPtr("analysis failed")
		}
		_ = json.NewEncoder(w).Encode(a)
	})
	mux.HandleFunc("/api/analytics", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.Analytics{TotalResumes: 2, AverageScore: 75.5, SectionAverages: []api.SectionAverage{{SectionName: "Skills", AverageScore: 70, TotalAnalyses: 2}}})
	})
	return httptest.NewServer(mux), &polls
}

func writeResume() string {
	path := filepath.Join(GinkgoT().TempDir(), "cv.pdf")
	Expect(os.WriteFile(path, []byte("%PDF-1.4 resume"), 0o600)).To(Succeed())
	return path
}

var _ = Describe("cli", func() {
	var (
		id  uuid.UUID
		out *bytes.Buffer
	)

	BeforeEach(func() {
		id = uuid.New()
		out = &bytes.Buffer{}
	})

	Context("analyze", func() {
		It("polls until completed and prints the scores", func() {
			server, polls := fakeServer(id, api.AnalysisStatusProcessing, api.AnalysisStatusCompleted)
			defer server.Close()

			o := DefaultAnalyzeOptions()
			o.ServerUrl = server.URL
			o.ConfigFilePath = filepath.Join(GinkgoT().TempDir(), "missing.yaml")
			o.Interval = 10 * time.Millisecond
			o.out = out

			Expect(o.Validate([]string{"cv.pdf"})).To(Succeed())
			Expect(o.Run(context.TODO(), []string{writeResume()})).To(Succeed())

			Expect(polls.Load()).To(BeNumerically("==", 2))
			Expect(out.String()).To(ContainSubstring("[processing] Extracting text"))
			Expect(out.String()).To(ContainSubstring("completed"))
			Expect(out.String()).To(ContainSubstring("Experience"))
		})

		It("returns an error when the analysis failed", func() {
			server, _ := fakeServer(id, api.AnalysisStatusFailed)
			defer server.Close()

			o := DefaultAnalyzeOptions()
			o.ServerUrl = server.URL
			o.ConfigFilePath = filepath.Join(GinkgoT().TempDir(), "missing.yaml")
			o.Interval = 10 * time.Millisecond
			o.out = out

			err := o.Run(context.TODO(), []string{writeResume()})
			Expect(err).To(MatchError(ErrAnalysisFailed))
			Expect(out.String()).To(ContainSubstring("failed"))
		})

		It("prints json when asked", func() {
			server, _ := fakeServer(id, api.AnalysisStatusCompleted)
			defer server.Close()

			o := DefaultAnalyzeOptions()
			o.ServerUrl = server.URL
			o.ConfigFilePath = filepath.Join(GinkgoT().TempDir(), "missing.yaml")
			o.Interval = 10 * time.Millisecond
			o.Output = jsonFormat
			o.out = out

			Expect(o.Run(context.TODO(), []string{writeResume()})).To(Succeed())

			var got api.Analysis
			Expect(json.Unmarshal(out.Bytes(), &got)).To(Succeed())
			Expect(got.Id).To(Equal(id))
			Expect(got.Results.OverallScore).To(Equal(81))
		})

		It("rejects an unknown output format", func() {
			o := DefaultAnalyzeOptions()
			o.Output = "xml"
			Expect(o.Validate([]string{"cv.pdf"})).NotTo(Succeed())
		})

		It("rejects a non positive interval", func() {
			o := DefaultAnalyzeOptions()
			o.Interval = 0
			Expect(o.Validate([]string{"cv.pdf"})).NotTo(Succeed())
		})
	})

	Context("get", func() {
		It("rejects a malformed id", func() {
			o := DefaultGetOptions()
			Expect(o.Validate([]string{"not-a-uuid"})).To(MatchError(ContainSubstring("invalid analysis id")))
		})

		It("prints yaml", func() {
			server, _ := fakeServer(id, api.AnalysisStatusCompleted)
			defer server.Close()

			o := DefaultGetOptions()
			o.ServerUrl = server.URL
			o.ConfigFilePath = filepath.Join(GinkgoT().TempDir(), "missing.yaml")
			o.Output = yamlFormat
			o.out = out

			Expect(o.Run(context.TODO(), []string{id.String()})).To(Succeed())
			Expect(out.String()).To(ContainSubstring("overallScore: 81"))
		})
	})

	Context("analytics", func() {
		It("prints the aggregate table", func() {
			server, _ := fakeServer(id, api.AnalysisStatusCompleted)
			defer server.Close()

			o := DefaultAnalyticsOptions()
			o.ServerUrl = server.URL
			o.ConfigFilePath = filepath.Join(GinkgoT().TempDir(), "missing.yaml")
			o.out = out

			Expect(o.Run(context.TODO(), nil)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("TOTAL RESUMES"))
			Expect(out.String()).To(ContainSubstring("Skills"))
		})
	})

	Context("send-report", func() {
		It("requires an email", func() {
			o := DefaultSendReportOptions()
			Expect(o.Validate([]string{id.String()})).To(MatchError(ContainSubstring("email is required")))
		})
	})
})
