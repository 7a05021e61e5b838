package events

import (
	"context"
	"log/slog"
	"time"
)

// appendTimeout bounds one sink write from the background worker.
const appendTimeout = 5 * time.Second

// Worker drains an event channel into a sink until the channel closes.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run returns once inbox is closed and drained. Sink failures are logged
// and the event is dropped.
func (w *Worker) Run() {
	for event := range w.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		if err := w.sink.Append(ctx, event); err != nil && w.logger != nil {
			w.logger.Warn("failed to deliver usage event",
				"type", event.Type,
				"session_id", event.SessionID,
				"error", err,
			)
		}
		cancel()
	}
}
