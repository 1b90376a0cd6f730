package service_test

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/gigflick/resume-analyzer/internal/events"
	"github.com/gigflick/resume-analyzer/internal/service"
	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/internal/store/model"
)

var _ = Describe("report service", Ordered, func() {
	var (
		s       store.Store
		gormDB  *gorm.DB
		cleanup func()
		sender  *fakeSender
		writer  *testWriter
		svc     *service.ReportService
	)

	completed := func() *model.Analysis {
		analysis, err := s.Analysis().Create(context.TODO(), "jane_doe.pdf", time.Now())
		Expect(err).To(BeNil())
		status := model.AnalysisStatusCompleted
		analysis, err = s.Analysis().Update(context.TODO(), analysis.ID, model.AnalysisUpdate{
			Status:  &status,
			Results: sampleResults(85, "Skills", "Education"),
		})
		Expect(err).To(BeNil())
		return analysis
	}

	BeforeAll(func() {
		gormDB, cleanup = newTestDB()
		s = store.NewStore(gormDB)
	})

	AfterAll(func() {
		cleanup()
	})

	BeforeEach(func() {
		sender = &fakeSender{}
		writer = &testWriter{}
		svc = service.NewReportService(s, sender, writer)
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM section_scores;")
		gormDB.Exec("DELETE FROM analyses;")
	})

	It("emails the report and records the recipient", func() {
		analysis := completed()

		updated, err := svc.Send(context.TODO(), analysis.ID.String(), " jane@example.com ", service.ReportTypeDetailed)
		Expect(err).To(BeNil())
		Expect(*updated.EmailTo).To(Equal("jane@example.com"))
		Expect(updated.EmailSentAt).NotTo(BeNil())

		Expect(sender.emails).To(HaveLen(1))
		email := sender.emails[0]
		Expect(email.To).To(Equal("jane@example.com"))
		Expect(email.Subject).To(Equal("Your Resume Analysis Report"))
		Expect(email.Attachments).To(HaveLen(1))
		Expect(email.Attachments[0].Name).To(Equal("jane_doe_analysis.pdf"))
		Expect(bytes.HasPrefix(email.Attachments[0].Data, []byte("%PDF-"))).To(BeTrue())

		Expect(writer.Kinds()).To(ConsistOf(events.ReportSentKind))
	})

	DescribeTable("rejects invalid emails",
		func(email string) {
			analysis := completed()
			_, err := svc.Send(context.TODO(), analysis.ID.String(), email, service.ReportTypeSummary)
			_, ok := err.(*service.ErrValidation)
			Expect(ok).To(BeTrue())
			Expect(sender.emails).To(BeEmpty())
		},
		Entry("empty", ""),
		Entry("no domain", "jane@"),
		Entry("plain text", "jane"),
	)

	It("returns not found for unknown analyses", func() {
		_, err := svc.Send(context.TODO(), uuid.NewString(), "jane@example.com", service.ReportTypeSummary)
		_, ok := err.(*service.ErrResourceNotFound)
		Expect(ok).To(BeTrue())
	})

	It("refuses analyses that are still processing", func() {
		analysis, err := s.Analysis().Create(context.TODO(), "cv.pdf", time.Now())
		Expect(err).To(BeNil())

		_, err = svc.Send(context.TODO(), analysis.ID.String(), "jane@example.com", service.ReportTypeSummary)
		_, ok := err.(*service.ErrAnalysisNotCompleted)
		Expect(ok).To(BeTrue())

		_, _, err = svc.Render(context.TODO(), analysis.ID.String(), service.ReportTypeDetailed, service.ReportFormatPDF)
		_, ok = err.(*service.ErrAnalysisNotCompleted)
		Expect(ok).To(BeTrue())
	})

	It("reports mail failures as upstream errors", func() {
		sender.err = errors.New("connection refused")
		analysis := completed()

		_, err := svc.Send(context.TODO(), analysis.ID.String(), "jane@example.com", service.ReportTypeSummary)
		_, ok := err.(*service.ErrUpstream)
		Expect(ok).To(BeTrue())

		stored, err := s.Analysis().Get(context.TODO(), analysis.ID)
		Expect(err).To(BeNil())
		Expect(stored.EmailTo).To(BeNil())
	})

	It("renders the pdf for download", func() {
		analysis := completed()

		out, rendered, err := svc.Render(context.TODO(), analysis.ID.String(), service.ReportTypeDetailed, service.ReportFormatPDF)
		Expect(err).To(BeNil())
		Expect(rendered.ID).To(Equal(analysis.ID))
		Expect(bytes.HasPrefix(out, []byte("%PDF-"))).To(BeTrue())
	})
	It("notes missing section scores in the email body", func() {
		analysis := completed()

		_, err := svc.Send(context.TODO(), analysis.ID.String(), "jane@example.com", service.ReportTypeSummary)
		Expect(err).To(BeNil())
		Expect(sender.emails).To(HaveLen(1))
		Expect(sender.emails[0].HTML).To(ContainSubstring("only 0 of 2 section scores were recorded"))
	})

	It("omits the note once every section score is stored", func() {
		analysis := completed()
		for i, name := range []string{"Skills", "Education"} {
			_, err := s.Score().Create(context.TODO(), model.SectionScore{
				AnalysisID:  analysis.ID,
				Position:    i,
				SectionName: name,
				Score:       85,
			})
			Expect(err).To(BeNil())
		}

		_, err := svc.Send(context.TODO(), analysis.ID.String(), "jane@example.com", service.ReportTypeSummary)
		Expect(err).To(BeNil())
		Expect(sender.emails).To(HaveLen(1))
		Expect(sender.emails[0].HTML).NotTo(ContainSubstring("section scores were recorded"))
	})
})
