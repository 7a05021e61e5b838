// Package events records dashboard usage: sessions opened, filters changed
// or rejected, and panels rendered. Events go to a Sink, either in memory or
// a Kafka topic.
package events

import (
	"context"
	"time"

	"github.com/mssola/useragent"

	"fairdash/pkg/requestcontext"
)

// Type names a usage event.
type Type string

const (
	TypeSessionCreated Type = "session_created"
	TypeFilterChanged  Type = "filter_changed"
	TypeFilterRejected Type = "filter_rejected"
	TypeYearRangeSet   Type = "year_range_set"
	TypeTabChanged     Type = "tab_changed"
	TypeRendered       Type = "rendered"
	TypeRenderFailed   Type = "render_failed"
)

// Event is one usage fact. It carries no personal data: the client is
// reduced to a browser family.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Panel     string    `json:"panel,omitempty"`
	Field     string    `json:"field,omitempty"`
	Value     string    `json:"value,omitempty"`
	Status    string    `json:"status,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	Mobile    bool      `json:"mobile,omitempty"`
	Bot       bool      `json:"bot,omitempty"`
}

// Sink persists or forwards events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// FromContext fills the request-scoped fields of an event from ctx.
func FromContext(ctx context.Context, event Event) Event {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		parsed := useragent.New(ua)
		name, _ := parsed.Browser()
		event.Browser = name
		event.Mobile = parsed.Mobile()
		event.Bot = parsed.Bot()
	}
	return event
}
