package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gigflick/resume-analyzer/internal/store/model"
)

const (
	stderrTailSize = 4096
	// how long a process may linger once it has sent its result
	resultGracePeriod = 2 * time.Second
)

// ProcessAnalyzer runs one analyzer process per document. The request is written to stdin
// as JSON and the process answers with envelopes on stdout.
type ProcessAnalyzer struct {
	command string
	args    []string
}

var _ Analyzer = (*ProcessAnalyzer)(nil)

func NewProcessAnalyzer(command string, args ...string) *ProcessAnalyzer {
	return &ProcessAnalyzer{command: command, args: args}
}

func (p *ProcessAnalyzer) Analyze(ctx context.Context, data []byte, fileName string, progress ProgressFunc) (*model.Results, error) {
	payload, err := json.Marshal(request{FileName: fileName, Data: data})
	if err != nil {
		return nil, errors.Wrap(err, "encoding analyzer request")
	}

	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Stdin = bytes.NewReader(payload)

	stderr := &tailBuffer{limit: stderrTailSize}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "opening analyzer stdout")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "starting analyzer %q", p.command)
	}

	result, readErr := readEnvelopes(ctx, stdout, progress)
	if readErr == nil {
		linger := time.AfterFunc(resultGracePeriod, func() { _ = cmd.Process.Kill() })
		// stdout must be drained before Wait
		_, _ = io.Copy(io.Discard, stdout)
		waitErr := cmd.Wait()
		linger.Stop()

		if waitErr != nil {
			zap.S().Named("analyzer").Warnw("analyzer exited with an error after sending its result",
				"command", p.command, "error", waitErr, "stderr", stderr.String())
		}
		return result, nil
	}

	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var analysisErr *AnalysisError
	if errors.As(readErr, &analysisErr) {
		return nil, readErr
	}
	if waitErr != nil {
		return nil, errors.Wrapf(waitErr, "analyzer %q failed: %s", p.command, stderr.String())
	}
	return nil, readErr
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
