package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
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
	"github.com/gigflick/resume-analyzer/internal/client"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var _ = Describe("resume analyzer client", func() {
	var (
		ctx context.Context
		id  uuid.UUID
	)

	BeforeEach(func() {
		ctx = context.Background()
		id = uuid.New()
	})

	Describe("Analyze", func() {
		It("uploads the file as an application/pdf part named resume", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/api/analyze"))
				Expect(r.Header.Get("x-request-id")).NotTo(BeEmpty())

				file, header, err := r.FormFile("resume")
				Expect(err).To(BeNil())
				defer file.Close()
				Expect(header.Filename).To(Equal("cv.pdf"))
				Expect(header.Header.Get("Content-Type")).To(Equal("application/pdf"))

				data, err := io.ReadAll(file)
				Expect(err).To(BeNil())
				Expect(string(data)).To(Equal("%PDF-1.4 body"))

				writeJSON(w, http.StatusOK, api.Analysis{Id: id, FileName: "cv.pdf", Status: api.AnalysisStatusProcessing})
			}))
			defer server.Close()

			c := client.NewClient(server.URL, time.Second)
			analysis, err := c.Analyze(ctx, "cv.pdf", bytes.NewBufferString("%PDF-1.4 body"))
			Expect(err).To(BeNil())
			Expect(analysis.Id).To(Equal(id))
			Expect(analysis.Status).To(Equal(api.AnalysisStatusProcessing))
		})

		It("surfaces the server message on rejection", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, api.Message{Message: "Only PDF files are allowed"})
			}))
			defer server.Close()

			c := client.NewClient(server.URL, time.Second)
			_, err := c.Analyze(ctx, "cv.txt", bytes.NewBufferString("hello"))
			Expect(err).NotTo(BeNil())

			var apiErr *client.APIError
			Expect(err).To(BeAssignableToTypeOf(apiErr))
			Expect(err.Error()).To(ContainSubstring("Only PDF files are allowed"))
		})
	})

	Describe("GetAnalysis", func() {
		It("reports not found", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, api.Message{Message: "Analysis not found"})
			}))
			defer server.Close()

			c := client.NewClient(server.URL, time.Second)
			_, err := c.GetAnalysis(ctx, id)
			Expect(client.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("WaitForAnalysis", func() {
		It("polls until the analysis is terminal", func() {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				status := api.AnalysisStatusProcessing
				if calls.Add(1) >= 3 {
					status = api.AnalysisStatusCompleted
				}
				writeJSON(w, http.StatusOK, api.Analysis{Id: id, Status: status})
			}))
			defer server.Close()

			var updates int
			c := client.NewClient(server.URL, time.Second)
			analysis, err := c.WaitForAnalysis(ctx, id, 10*time.Millisecond, func(*api.Analysis) { updates++ })
			Expect(err).To(BeNil())
			Expect(analysis.Status).To(Equal(api.AnalysisStatusCompleted))
			Expect(updates).To(Equal(3))
		})

		It("stops when the context is cancelled", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, api.Analysis{Id: id, Status: api.AnalysisStatusProcessing})
			}))
			defer server.Close()

			cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()

			c := client.NewClient(server.URL, time.Second)
			_, err := c.WaitForAnalysis(cctx, id, 10*time.Millisecond, nil)
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})
	})

	Describe("SendReport", func() {
		It("posts to send-report for detailed reports", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/analysis/" + id.String() + "/send-report"))
				Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))

				var body api.SendReportRequest
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body.Email).To(Equal("jane@example.com"))

				writeJSON(w, http.StatusOK, api.Message{Message: "Report sent successfully"})
			}))
			defer server.Close()

			c := client.NewClient(server.URL, time.Second)
			msg, err := c.SendReport(ctx, id, "jane@example.com", true)
			Expect(err).To(BeNil())
			Expect(msg).To(Equal("Report sent successfully"))
		})

		It("posts to send-pdf otherwise", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/analysis/" + id.String() + "/send-pdf"))
				writeJSON(w, http.StatusOK, api.Message{Message: "PDF sent successfully"})
			}))
			defer server.Close()

			c := client.NewClient(server.URL, time.Second)
			msg, err := c.SendReport(ctx, id, "jane@example.com", false)
			Expect(err).To(BeNil())
			Expect(msg).To(Equal("PDF sent successfully"))
		})
	})

	Describe("DownloadReport", func() {
		It("returns the raw pdf bytes", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/pdf")
				_, _ = w.Write([]byte("%PDF-1.3 report"))
			}))
			defer server.Close()

			c := client.NewClient(server.URL, time.Second)
			data, err := c.DownloadReport(ctx, id)
			Expect(err).To(BeNil())
			Expect(string(data)).To(HavePrefix("%PDF-"))
		})

		It("maps a conflict to an APIError", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusConflict, api.Message{Message: "Analysis is not completed yet"})
			}))
			defer server.Close()

			c := client.NewClient(server.URL, time.Second)
			_, err := c.DownloadReport(ctx, id)
			Expect(err).To(MatchError(ContainSubstring("409")))
		})
	})

	Describe("config", func() {
		It("round trips a persisted config", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "nested", "client.yaml")

			Expect(client.WriteConfig(path, "http://analyzer.example.com:3443")).To(Succeed())

			cfg, err := client.ParseConfigFile(path)
			Expect(err).To(BeNil())
			Expect(cfg.Service.Server).To(Equal("http://analyzer.example.com:3443"))
		})

		It("falls back to the defaults when the file is missing", func() {
			cfg, err := client.LoadConfig(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
			Expect(err).To(BeNil())
			Expect(cfg.Service.Server).To(Equal(client.DefaultServer))
		})

		It("rejects a server without hostname", func() {
			path := filepath.Join(GinkgoT().TempDir(), "client.yaml")
			Expect(os.WriteFile(path, []byte("service:\n  server: /relative\n"), 0o600)).To(Succeed())

			_, err := client.ParseConfigFile(path)
			Expect(err).To(MatchError(ContainSubstring("no hostname")))
		})
	})
})
