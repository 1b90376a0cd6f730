package v1alpha1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
	handlers "github.com/gigflick/resume-analyzer/internal/handlers/v1alpha1"
	"github.com/gigflick/resume-analyzer/internal/service"
	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/internal/store/model"
)

const maxUploadSize = 1024

var _ = Describe("handlers", Ordered, func() {
	var (
		s          store.Store
		gormDB     *gorm.DB
		cleanup    func()
		dispatcher *fakeDispatcher
		sender     *fakeSender
		router     *chi.Mux
	)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	message := func(rr *httptest.ResponseRecorder) string {
		var m map[string]any
		Expect(json.Unmarshal(rr.Body.Bytes(), &m)).To(Succeed())
		Expect(m).To(HaveLen(1))
		return m["message"].(string)
	}

	countAnalyses := func() int64 {
		var count int64
		Expect(gormDB.Model(&model.Analysis{}).Count(&count).Error).To(BeNil())
		return count
	}

	completed := func() *model.Analysis {
		analysis, err := s.Analysis().Create(context.TODO(), "jane_doe.pdf", time.Now())
		Expect(err).To(BeNil())
		status := model.AnalysisStatusCompleted
		analysis, err = s.Analysis().Update(context.TODO(), analysis.ID, model.AnalysisUpdate{
			Status: &status,
			Results: &model.Results{
				Overview:     "Good resume",
				Strengths:    []string{"layout"},
				Weaknesses:   []string{"length"},
				OverallScore: 82,
				Sections: []model.Section{
					{Name: "Skills", Score: 80, Content: "ok", Suggestions: []string{"a"}},
				},
			},
		})
		Expect(err).To(BeNil())
		return analysis
	}

	sendRequest := func(id, action, body string) *http.Request {
		req, err := http.NewRequest(http.MethodPost, "/api/analysis/"+id+"/"+action, strings.NewReader(body))
		Expect(err).To(BeNil())
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	BeforeAll(func() {
		gormDB, cleanup = newTestDB()
		s = store.NewStore(gormDB)
	})

	AfterAll(func() {
		cleanup()
	})

	BeforeEach(func() {
		dispatcher = &fakeDispatcher{}
		sender = &fakeSender{}

		h := handlers.NewServiceHandler(
			service.NewAnalysisService(s, dispatcher, nil),
			service.NewReportService(s, sender, nil),
			service.NewAnalyticsService(s),
			service.NewHealthService(s),
			maxUploadSize,
		)
		router = chi.NewRouter()
		h.RegisterRoutes(router)
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM section_scores;")
		gormDB.Exec("DELETE FROM analyses;")
	})

	Context("upload", func() {
		It("creates a processing analysis without results", func() {
			rr := serve(uploadRequest("resume", "cv.pdf", "application/pdf", pdfData))
			Expect(rr.Code).To(Equal(http.StatusOK))

			var analysis api.Analysis
			Expect(json.Unmarshal(rr.Body.Bytes(), &analysis)).To(Succeed())
			Expect(analysis.Status).To(Equal(api.AnalysisStatusProcessing))
			Expect(analysis.Results).To(BeNil())
			Expect(analysis.FileName).To(Equal("cv.pdf"))
			Expect(rr.Body.String()).NotTo(ContainSubstring(`"results"`))

			Expect(dispatcher.tasks).To(HaveLen(1))
			Expect(dispatcher.tasks[0].AnalysisID).To(Equal(analysis.Id))
		})

		DescribeTable("rejects bad uploads with 400 and no job",
			func(req func() *http.Request) {
				rr := serve(req())
				Expect(rr.Code).To(Equal(http.StatusBadRequest))
				Expect(message(rr)).NotTo(BeEmpty())
				Expect(countAnalyses()).To(BeZero())
				Expect(dispatcher.tasks).To(BeEmpty())
			},
			Entry("no file", func() *http.Request { return uploadRequest("", "", "", nil) }),
			Entry("wrong field name", func() *http.Request { return uploadRequest("file", "cv.pdf", "application/pdf", pdfData) }),
			Entry("non pdf mimetype", func() *http.Request { return uploadRequest("resume", "cv.txt", "text/plain", pdfData) }),
			Entry("pdf mimetype with other content", func() *http.Request {
				return uploadRequest("resume", "cv.pdf", "application/pdf", []byte("hello world"))
			}),
			Entry("not multipart", func() *http.Request {
				req, _ := http.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{}"))
				req.Header.Set("Content-Type", "application/json")
				return req
			}),
		)

		It("rejects oversized uploads with 413", func() {
			big := append(append([]byte{}, pdfData...), bytes.Repeat([]byte("x"), 2*maxUploadSize)...)
			rr := serve(uploadRequest("resume", "cv.pdf", "application/pdf", big))
			Expect(rr.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(countAnalyses()).To(BeZero())
		})
	})

	Context("get analysis", func() {
		It("returns the analysis with results", func() {
			analysis := completed()

			req, _ := http.NewRequest(http.MethodGet, "/api/analysis/"+analysis.ID.String(), nil)
			rr := serve(req)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var got api.Analysis
			Expect(json.Unmarshal(rr.Body.Bytes(), &got)).To(Succeed())
			Expect(got.Status).To(Equal(api.AnalysisStatusCompleted))
			Expect(got.Results).NotTo(BeNil())
			Expect(got.Results.OverallScore).To(Equal(82))
			Expect(got.Results.Sections).To(HaveLen(1))
		})

		DescribeTable("returns 404 without an analysis body",
			func(id string) {
				req, _ := http.NewRequest(http.MethodGet, "/api/analysis/"+id, nil)
				rr := serve(req)
				Expect(rr.Code).To(Equal(http.StatusNotFound))
				Expect(message(rr)).To(Equal("Analysis not found"))
			},
			Entry("unknown id", uuid.NewString()),
			Entry("malformed id", "1234"),
		)
	})

	Context("send reports", func() {
		It("mails the summary and records the recipient", func() {
			analysis := completed()

			rr := serve(sendRequest(analysis.ID.String(), "send-pdf", `{"email":"jane@example.com"}`))
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(message(rr)).To(Equal("PDF sent successfully"))

			Expect(sender.emails).To(HaveLen(1))
			Expect(sender.emails[0].Attachments[0].Name).To(Equal("jane_doe_analysis.pdf"))

			stored, err := s.Analysis().Get(context.TODO(), analysis.ID)
			Expect(err).To(BeNil())
			Expect(*stored.EmailTo).To(Equal("jane@example.com"))
			Expect(stored.EmailSentAt).NotTo(BeNil())
		})

		It("mails the detailed report", func() {
			analysis := completed()

			rr := serve(sendRequest(analysis.ID.String(), "send-report", `{"email":"jane@example.com"}`))
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(message(rr)).To(Equal("Report sent successfully"))
		})

		DescribeTable("rejects bad emails with 400",
			func(body string) {
				analysis := completed()
				rr := serve(sendRequest(analysis.ID.String(), "send-pdf", body))
				Expect(rr.Code).To(Equal(http.StatusBadRequest))
				Expect(sender.emails).To(BeEmpty())
			},
			Entry("missing email", `{}`),
			Entry("invalid email", `{"email":"not-an-email"}`),
			Entry("malformed body", `{"email":`),
		)

		It("returns 404 for unknown analyses", func() {
			rr := serve(sendRequest(uuid.NewString(), "send-report", `{"email":"jane@example.com"}`))
			Expect(rr.Code).To(Equal(http.StatusNotFound))
			Expect(message(rr)).To(Equal("Analysis not found"))
		})

		It("returns 409 while the analysis is processing", func() {
			analysis, err := s.Analysis().Create(context.TODO(), "cv.pdf", time.Now())
			Expect(err).To(BeNil())

			rr := serve(sendRequest(analysis.ID.String(), "send-pdf", `{"email":"jane@example.com"}`))
			Expect(rr.Code).To(Equal(http.StatusConflict))
		})

		It("downloads the pdf report", func() {
			analysis := completed()

			req, _ := http.NewRequest(http.MethodGet, "/api/analysis/"+analysis.ID.String()+"/report.pdf", nil)
			rr := serve(req)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Header().Get("Content-Type")).To(Equal("application/pdf"))
			Expect(rr.Header().Get("Content-Disposition")).To(ContainSubstring("jane_doe_analysis.pdf"))
			Expect(bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-"))).To(BeTrue())
		})
	})

	Context("analytics", func() {
		It("returns empty analytics", func() {
			req, _ := http.NewRequest(http.MethodGet, "/api/analytics", nil)
			rr := serve(req)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`{"totalResumes":0,"averageScore":0,"sectionAverages":[]}`))
		})

		It("aggregates stored scores", func() {
			analysis := completed()
			for _, score := range []int{80, 90, 70} {
				_, err := s.Score().Create(context.TODO(), model.SectionScore{AnalysisID: analysis.ID, SectionName: "Skills", Score: score})
				Expect(err).To(BeNil())
			}

			req, _ := http.NewRequest(http.MethodGet, "/api/analytics", nil)
			rr := serve(req)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var analytics api.Analytics
			Expect(json.Unmarshal(rr.Body.Bytes(), &analytics)).To(Succeed())
			Expect(analytics.TotalResumes).To(Equal(int64(1)))
			Expect(analytics.AverageScore).To(BeNumerically("~", 80, 0.001))
			Expect(analytics.SectionAverages).To(HaveLen(1))
		})
	})

	It("reports health", func() {
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		rr := serve(req)
		Expect(rr.Code).To(Equal(http.StatusOK))
		Expect(rr.Body.String()).To(MatchJSON(`{"status":"ok"}`))
	})
})
