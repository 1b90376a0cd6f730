package service

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// AnalysisTask is the unit of work handed to a Dispatcher.
type AnalysisTask struct {
	AnalysisID uuid.UUID
	FileName   string
	Data       []byte
	RequestID  string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, task AnalysisTask) error
}

type Archive interface {
	Put(ctx context.Context, id, fileName string, data []byte) (string, error)
}

type EventWriter interface {
	Write(ctx context.Context, kind string, body io.Reader) error
}
