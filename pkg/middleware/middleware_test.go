package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gigflick/resume-analyzer/pkg/middleware"
	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	req.RemoteAddr = remote
	return req
}

var _ = Describe("rate limiter", func() {
	var limiter *middleware.RateLimiter

	AfterEach(func() {
		limiter.Close()
	})

	It("rejects requests over the burst with 429", func() {
		limiter = middleware.NewRateLimiter(0.001, 2)
		h := limiter.Handler(ok)

		codes := []int{}
		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("10.0.0.1:5555"))
			codes = append(codes, rec.Code)
		}
		Expect(codes).To(Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}))
	})

	It("keeps one bucket per client", func() {
		limiter = middleware.NewRateLimiter(0.001, 1)
		h := limiter.Handler(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1:5555"))
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.2:5555"))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("is disabled with a non positive rate", func() {
		limiter = middleware.NewRateLimiter(0, 1)
		for range 10 {
			Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
		}
	})

	It("closes twice without panicking", func() {
		limiter = middleware.NewRateLimiter(1, 1)
		limiter.Close()
	})
})

var _ = Describe("client ip", func() {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8"), netip.MustParsePrefix("192.0.2.10/32")}

	DescribeTable("resolves the client address",
		func(headers map[string]string, remote, expected string) {
			req := requestFrom(remote)
			for k, v := range headers {
				req.Header.Set(k, v)
			}
			Expect(middleware.ClientIP(req, proxies)).To(Equal(expected))
		},
		Entry("remote address", nil, "192.168.1.4:1234", "192.168.1.4"),
		Entry("forwarded header from an untrusted peer", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "198.51.100.9:1", "198.51.100.9"),
		Entry("real ip from an untrusted peer", map[string]string{"X-Real-IP": "203.0.113.7"}, "198.51.100.9:1", "198.51.100.9"),
		Entry("forwarded header from a trusted proxy", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "10.0.0.1:1", "203.0.113.7"),
		Entry("spoofed left entries are skipped", map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7, 10.1.1.1"}, "10.0.0.1:1", "203.0.113.7"),
		Entry("single trusted address", map[string]string{"X-Forwarded-For": "203.0.113.8"}, "192.0.2.10:1", "203.0.113.8"),
		Entry("garbage forwarded address", map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "198.51.100.2"}, "10.0.0.1:1", "198.51.100.2"),
		Entry("remote without port", nil, "10.9.9.9", "10.9.9.9"),
	)

	It("rejects malformed trusted proxies", func() {
		_, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/99"})
		Expect(err).To(HaveOccurred())
		_, err = middleware.ParseTrustedProxies([]string{"proxy.local"})
		Expect(err).To(HaveOccurred())

		prefixes, err := middleware.ParseTrustedProxies([]string{" ", "::1"})
		Expect(err).To(BeNil())
		Expect(prefixes).To(Equal([]netip.Prefix{netip.MustParsePrefix("::1/128")}))
	})

	It("limits one peer rotating its forwarded header", func() {
		limiter := middleware.NewRateLimiter(0.001, 1)
		defer limiter.Close()
		h := limiter.Handler(ok)

		accepted := 0
		for i := range 20 {
			req := requestFrom("198.51.100.9:4000")
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code == http.StatusOK {
				accepted++
			}
		}
		Expect(accepted).To(Equal(1))
	})

	It("keys clients behind a trusted proxy separately", func() {
		limiter := middleware.NewRateLimiter(0.001, 1, proxies...)
		defer limiter.Close()
		h := limiter.Handler(ok)

		for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
			req := requestFrom("10.0.0.1:4000")
			req.Header.Set("X-Forwarded-For", client)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
		}

		req := requestFrom("10.0.0.1:4000")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusTooManyRequests))
	})
})

var _ = Describe("request id", func() {
	It("keeps the incoming header", func() {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestid.FromRequest(r)
		}))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("x-request-id", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(seen).To(Equal("abc-123"))
		Expect(rec.Header().Get("x-request-id")).To(Equal("abc-123"))
	})

	It("generates one when absent", func() {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestid.FromRequest(r)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(seen).NotTo(BeEmpty())
		Expect(rec.Header().Get("x-request-id")).To(Equal(seen))
	})

	It("replaces a malformed header", func() {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestid.FromRequest(r)
		}))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("x-request-id", "has spaces\tand tabs")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(seen).NotTo(Equal("has spaces\tand tabs"))
		Expect(seen).NotTo(BeEmpty())
		Expect(rec.Header().Get("x-request-id")).To(Equal(seen))
	})
})
