package events

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// StdoutWriter prints each event as one structured json line, wrapped with
// its topic, so a log shipper can pick them up. The zero value writes to stdout.
type StdoutWriter struct {
	mu  sync.Mutex
	Out io.Writer
}

type envelope struct {
	Topic string            `json:"topic"`
	Event cloudevents.Event `json:"event"`
}

func (s *StdoutWriter) Write(_ context.Context, topic string, e cloudevents.Event) error {
	line, err := json.Marshal(envelope{Topic: topic, Event: e})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.Out
	if out == nil {
		out = os.Stdout
	}
	if _, err := out.Write(append(line, '\n')); err != nil {
		return err
	}

	zap.S().Named("stdout_writer").Debugw("event written", "event_id", e.ID(), "event_type", e.Type(), "topic", topic)
	return nil
}

func (s *StdoutWriter) Close(context.Context) error { return nil }

// DiscardWriter drops every event.
type DiscardWriter struct{}

func (DiscardWriter) Write(context.Context, string, cloudevents.Event) error { return nil }

func (DiscardWriter) Close(context.Context) error { return nil }
