package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

const (
	uploadField    = "resume"
	pdfContentType = "application/pdf"
)

// APIError is returned for every non 2xx answer of the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the resume analyzer REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// NewFromConfig returns a client for the server described by config.
func NewFromConfig(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewClient(config.Service.Server, config.Service.Timeout), nil
}

// NewFromConfigFile returns a client using the config read from filename.
func NewFromConfigFile(filename string) (*Client, error) {
	config, err := LoadConfig(filename)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(config)
}

// Analyze uploads a PDF resume and returns the freshly created analysis.
func (c *Client) Analyze(ctx context.Context, fileName string, data io.Reader) (*api.Analysis, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, fileName))
	header.Set("Content-Type", pdfContentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("copying file into multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	var analysis api.Analysis
	if err := c.do(ctx, http.MethodPost, "/api/analyze", mw.FormDataContentType(), &buf, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (c *Client) GetAnalysis(ctx context.Context, id uuid.UUID) (*api.Analysis, error) {
	var analysis api.Analysis
	if err := c.do(ctx, http.MethodGet, "/api/analysis/"+url.PathEscape(id.String()), "", nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// WaitForAnalysis polls the analysis every interval until it reaches a terminal status.
func (c *Client) WaitForAnalysis(ctx context.Context, id uuid.UUID, interval time.Duration, onUpdate func(*api.Analysis)) (*api.Analysis, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		analysis, err := c.GetAnalysis(ctx, id)
		if err != nil {
			return nil, err
		}
		if onUpdate != nil {
			onUpdate(analysis)
		}
		if analysis.Status.IsTerminal() {
			return analysis, nil
		}

		select {
		case <-ctx.Done():
			return analysis, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) GetAnalytics(ctx context.Context) (*api.Analytics, error) {
	var analytics api.Analytics
	if err := c.do(ctx, http.MethodGet, "/api/analytics", "", nil, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// SendReport asks the server to email the report. detailed selects send-report over send-pdf.
func (c *Client) SendReport(ctx context.Context, id uuid.UUID, email string, detailed bool) (string, error) {
	body, err := json.Marshal(api.SendReportRequest{Email: email})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := "send-pdf"
	if detailed {
		endpoint = "send-report"
	}

	var msg api.Message
	path := fmt.Sprintf("/api/analysis/%s/%s", url.PathEscape(id.String()), endpoint)
	if err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body), &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// DownloadReport returns the rendered PDF report.
func (c *Client) DownloadReport(ctx context.Context, id uuid.UUID) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/api/analysis/%s/report.pdf", url.PathEscape(id.String())), "", nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) Health(ctx context.Context) error {
	var health api.Health
	return c.do(ctx, http.MethodGet, "/health", "", nil, &health)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	resp, err := c.send(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, bodyBytes)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = requestid.Generate()
	}
	req.Header.Set(requestid.Header, reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call resume analyzer: %w", err)
	}
	return resp, nil
}

func newAPIError(status int, body []byte) *APIError {
	var msg api.Message
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		return &APIError{StatusCode: status, Message: msg.Message}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}
