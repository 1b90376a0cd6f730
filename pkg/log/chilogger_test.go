package log_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

var _ = Describe("request logger", func() {
	serve := func(method, path string, status int) observer.LoggedEntry {
		core, observed := observer.New(zapcore.DebugLevel)

		h := log.Logger(zap.New(core), "router")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		req := httptest.NewRequest(method, path, nil)
		req = req.WithContext(requestid.ToContext(req.Context(), "req-7"))
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(observed.Len()).To(Equal(1))
		return observed.All()[0]
	}

	DescribeTable("picks the level from the outcome",
		func(method, path string, status int, level zapcore.Level) {
			entry := serve(method, path, status)
			Expect(entry.Level).To(Equal(level))
			Expect(entry.LoggerName).To(Equal("router"))
			Expect(entry.ContextMap()).To(HaveKeyWithValue("request_id", "req-7"))
			Expect(entry.ContextMap()).To(HaveKeyWithValue("status", int64(status)))
		},
		Entry("upload accepted", http.MethodPost, "/api/upload", http.StatusOK, zapcore.InfoLevel),
		Entry("status polling", http.MethodGet, "/api/analysis/1", http.StatusOK, zapcore.DebugLevel),
		Entry("health polling", http.MethodGet, "/health", http.StatusOK, zapcore.DebugLevel),
		Entry("bad upload", http.MethodPost, "/api/upload", http.StatusBadRequest, zapcore.WarnLevel),
		Entry("missing analysis", http.MethodGet, "/api/analysis/1", http.StatusNotFound, zapcore.WarnLevel),
		Entry("server failure", http.MethodGet, "/api/analytics", http.StatusInternalServerError, zapcore.ErrorLevel),
	)

	It("panics without a logger", func() {
		Expect(func() { log.Logger(nil, "router") }).To(Panic())
	})
})
