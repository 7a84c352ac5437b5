// Package bus wraps the durable at-least-once message stream Chronolens
// uses to fan out derivation work after upload, and the request-reply
// channel the semantic-search endpoint forwards queries over (spec §6).
package bus

import (
	"context"
	"time"
)

// Subjects named in spec §6.
const (
	SubjectPreviews      = "previews"
	SubjectMetadata      = "metadata"
	SubjectImageProcess  = "image-process"
	SubjectClipSearch    = "clip-process-search"
	maxStreamMessages    = 10000
	defaultAckWait       = 30 * time.Second
)

// Msg is one delivered message. Exactly one of Ack/Nak/Term must be
// called by the handler (spec §4.3, §4.4): Ack on success, Nak to
// request redelivery (transient failure), Term to poison the message
// (unparseable input — it will never be redelivered).
type Msg interface {
	Data() []byte
	Ack() error
	Nak() error
	Term() error
}

// Handler processes one delivered message. It must not block
// indefinitely — the message-bus ack deadline is the de facto per-message
// timeout (spec §5).
type Handler func(ctx context.Context, msg Msg)

// Bus is the durable stream + request-reply collaborator.
type Bus interface {
	// Publish appends payload to subject's durable stream.
	Publish(ctx context.Context, subject string, payload []byte) error
	// Subscribe starts a durable consumer named consumerName on subject,
	// processing up to maxConcurrent messages at once (spec §4.3's N=5).
	// It returns a Subscription the caller must Close on shutdown.
	Subscribe(ctx context.Context, subject, consumerName string, maxConcurrent int, handler Handler) (Subscription, error)
	// Request performs a request-reply round trip on subject (used for
	// clip-process-search) and returns the reply payload.
	Request(ctx context.Context, subject string, payload []byte, timeout time.Duration) ([]byte, error)
	Close() error
}

// Subscription is a live durable consumer.
type Subscription interface {
	Close() error
}
