package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/pkg/errors"

	"github.com/gigflick/resume-analyzer/internal/store/model"
)

const (
	uploadFieldName = "resume"
	maxErrorBody    = 1024
)

// HTTPAnalyzer posts the document to a remote analyzer and reads the envelope stream
// from the response body.
type HTTPAnalyzer struct {
	url    string
	client *http.Client
}

var _ Analyzer = (*HTTPAnalyzer)(nil)

// NewHTTPAnalyzer uses http.DefaultClient when client is nil. Deadlines come from the context.
func NewHTTPAnalyzer(url string, client *http.Client) *HTTPAnalyzer {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAnalyzer{url: url, client: client}
}

func (h *HTTPAnalyzer) Analyze(ctx context.Context, data []byte, fileName string, progress ProgressFunc) (*model.Results, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFieldName, fileName))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, errors.Wrap(err, "creating multipart part")
	}
	if _, err := part.Write(data); err != nil {
		return nil, errors.Wrap(err, "writing document")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "closing multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, body)
	if err != nil {
		return nil, errors.Wrap(err, "building analyzer request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling analyzer %s", h.url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.Errorf("analyzer returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	return readEnvelopes(ctx, resp.Body, progress)
}
