package events

import "time"

type ProducerOption func(*EventProducer)

// WithOutputTopic sets the topic handed to the Writer. Empty keeps the default.
func WithOutputTopic(topic string) ProducerOption {
	return func(ep *EventProducer) {
		if topic != "" {
			ep.topic = topic
		}
	}
}

// WithSource sets the cloudevents source attribute. Empty keeps the default.
func WithSource(source string) ProducerOption {
	return func(ep *EventProducer) {
		if source != "" {
			ep.source = source
		}
	}
}

func withClock(now func() time.Time) ProducerOption {
	return func(ep *EventProducer) {
		ep.now = now
	}
}
