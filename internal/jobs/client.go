package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/gigflick/resume-analyzer/internal/service"
)

// Client dispatches analyses through a river queue backed by postgres.
type Client struct {
	*river.Client[pgx.Tx]
}

// Make sure we conform to the Dispatcher interface
var _ service.Dispatcher = (*Client)(nil)

func NewClient(pool *pgxpool.Pool, processor Processor, maxWorkers int, analysisTimeout time.Duration) (*Client, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewAnalysisWorker(processor, analysisTimeout))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			DefaultQueue: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, err
	}

	return &Client{Client: riverClient}, nil
}

func (c *Client) InsertJob(ctx context.Context, args AnalysisArgs) (int64, error) {
	result, err := c.Insert(ctx, args, &river.InsertOpts{
		Queue:       DefaultQueue,
		MaxAttempts: MaxJobRetries,
	})
	if err != nil {
		return 0, err
	}
	return result.Job.ID, nil
}

func (c *Client) Dispatch(ctx context.Context, task service.AnalysisTask) error {
	_, err := c.InsertJob(ctx, newArgs(task))
	return err
}
