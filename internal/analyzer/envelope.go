package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gigflick/resume-analyzer/internal/store/model"
)

const (
	envelopeProgress = "progress"
	envelopeResult   = "result"
	envelopeError    = "error"

	maxEnvelopeSize = 8 * 1024 * 1024
)

var ErrNoResult = errors.New("analyzer finished without a result")

// envelope is one line of the analyzer output stream.
type envelope struct {
	Type    string         `json:"type"`
	Message string         `json:"message,omitempty"`
	Result  *model.Results `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// request is written to the analyzer process stdin.
type request struct {
	FileName string `json:"fileName"`
	Data     []byte `json:"data"`
}

// readEnvelopes consumes r line by line, forwarding progress envelopes until a result or
// error envelope is found. Lines that are not envelopes are logged and skipped.
func readEnvelopes(ctx context.Context, r io.Reader, progress ProgressFunc) (*model.Results, error) {
	logger := zap.S().Named("analyzer")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxEnvelopeSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			logger.Debugw("skipping analyzer output line", "line", string(line))
			continue
		}

		switch env.Type {
		case envelopeProgress:
			notify(progress, env.Message)
		case envelopeResult:
			if env.Result == nil {
				return nil, errors.New("analyzer sent an empty result")
			}
			return env.Result, nil
		case envelopeError:
			return nil, &AnalysisError{Message: env.Error}
		default:
			logger.Debugw("skipping unknown analyzer envelope", "type", env.Type)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading analyzer output")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoResult
}
