package jobs

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/gigflick/resume-analyzer/internal/service"
)

var (
	ErrPoolClosed = errors.New("analysis pool is shut down")
	ErrQueueFull  = errors.New("analysis queue is full")
)

const queueFactor = 16

// Pool runs analyses on a fixed number of goroutines inside the API process.
type Pool struct {
	processor Processor
	tasks     chan service.AnalysisTask
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// Make sure we conform to the Dispatcher interface
var _ service.Dispatcher = (*Pool)(nil)

func NewPool(processor Processor, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		processor: processor,
		tasks:     make(chan service.AnalysisTask, workers*queueFactor),
		ctx:       ctx,
		cancel:    cancel,
	}

	p.wg.Add(workers)
	for range workers {
		go p.work()
	}
	return p
}

// Dispatch queues the task without waiting for a free worker.
func (p *Pool) Dispatch(_ context.Context, task service.AnalysisTask) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued and running ones.
// When ctx expires first, running analyses are cancelled and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()

	for task := range p.tasks {
		if err := p.processor.Process(p.ctx, task); err != nil {
			zap.S().Named("analysis_pool").Errorw("analysis task failed", "analysis_id", task.AnalysisID, "error", err)
		}
	}
}
