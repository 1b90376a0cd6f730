package jobs

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/gigflick/resume-analyzer/internal/service"
)

type AnalysisWorker struct {
	river.WorkerDefaults[AnalysisArgs]
	processor Processor
	timeout   time.Duration
}

func NewAnalysisWorker(processor Processor, analysisTimeout time.Duration) *AnalysisWorker {
	return &AnalysisWorker{processor: processor, timeout: analysisTimeout + persistMargin}
}

func (w *AnalysisWorker) Timeout(job *river.Job[AnalysisArgs]) time.Duration {
	return w.timeout
}

func (w *AnalysisWorker) Work(ctx context.Context, job *river.Job[AnalysisArgs]) error {
	task, err := job.Args.toTask()
	if err != nil {
		// retrying cannot fix malformed args
		return river.JobCancel(err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return w.processor.Process(ctx, task)
}

func newArgs(task service.AnalysisTask) AnalysisArgs {
	return AnalysisArgs{
		AnalysisID: task.AnalysisID.String(),
		FileName:   task.FileName,
		FileData:   base64.StdEncoding.EncodeToString(task.Data),
		RequestID:  task.RequestID,
	}
}

func (a AnalysisArgs) toTask() (service.AnalysisTask, error) {
	id, err := uuid.Parse(a.AnalysisID)
	if err != nil {
		return service.AnalysisTask{}, fmt.Errorf("invalid analysis id %q: %w", a.AnalysisID, err)
	}

	data, err := base64.StdEncoding.DecodeString(a.FileData)
	if err != nil {
		return service.AnalysisTask{}, fmt.Errorf("invalid file data for analysis %s: %w", id, err)
	}

	return service.AnalysisTask{
		AnalysisID: id,
		FileName:   a.FileName,
		Data:       data,
		RequestID:  a.RequestID,
	}, nil
}
