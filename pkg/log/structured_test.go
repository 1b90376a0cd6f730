package log_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

var _ = Describe("structured logger", func() {
	var (
		logs    *observer.ObservedLogs
		restore func()
	)

	BeforeEach(func() {
		var core zapcore.Core
		core, logs = observer.New(zapcore.DebugLevel)
		restore = zap.ReplaceGlobals(zap.New(core))
	})

	AfterEach(func() {
		restore()
	})

	It("traces an operation with the request id", func() {
		ctx := requestid.ToContext(context.TODO(), "req-1")
		id := uuid.New()

		tracer := log.NewLogger("analysis_service").WithContext(ctx).
			Operation("get_analysis").
			WithUUID("analysis_id", id).
			Build()
		tracer.Step("loaded").WithInt("sections", 4).Log()
		tracer.Success().WithString("status", "completed").Log()

		entries := logs.All()
		Expect(entries).To(HaveLen(3))
		Expect(entries[2].Level).To(Equal(zapcore.InfoLevel))
		fields := entries[2].ContextMap()
		Expect(fields["request_id"]).To(Equal("req-1"))
		Expect(fields["operation"]).To(Equal("get_analysis"))
		Expect(fields["analysis_id"]).To(Equal(id.String()))
		Expect(fields["status"]).To(Equal("completed"))
	})

	It("logs errors at error level and success at debug for debug loggers", func() {
		tracer := log.NewDebugLogger("svc").Operation("op").Build()
		tracer.Success().Log()
		tracer.Error(errors.New("boom")).Log()

		entries := logs.All()
		Expect(entries[1].Level).To(Equal(zapcore.DebugLevel))
		Expect(entries[2].Level).To(Equal(zapcore.ErrorLevel))
	})
})
