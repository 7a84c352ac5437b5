package bus

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATS is the JetStream-backed Bus implementation. Spec §4.3/§4.4's own
// vocabulary (durable consumer, Ack/Nak/Term, at-least-once redelivery)
// is JetStream's vocabulary verbatim.
type NATS struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// NewNATS connects to endpoint and ensures the three work-queue streams
// named in spec §6 exist, each capped at maxStreamMessages (spec §6).
func NewNATS(ctx context.Context, endpoint string) (*NATS, error) {
	conn, err := nats.Connect(endpoint, nats.MaxReconnects(-1), nats.ReconnectWait(time.Second))
	if err != nil {
		return nil, Transient.Wrap(err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, Error.Wrap(err)
	}

	for _, subject := range []string{SubjectPreviews, SubjectMetadata, SubjectImageProcess} {
		if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     subject,
			Subjects: []string{subject},
			MaxMsgs:  maxStreamMessages,
			Storage:  jetstream.FileStorage,
		}); err != nil {
			conn.Close()
			return nil, Error.Wrap(err)
		}
	}

	return &NATS{conn: conn, js: js}, nil
}

func (n *NATS) Publish(ctx context.Context, subject string, payload []byte) error {
	if _, err := n.js.Publish(ctx, subject, payload); err != nil {
		return Transient.Wrap(err)
	}
	return nil
}

func (n *NATS) Subscribe(ctx context.Context, subject, consumerName string, maxConcurrent int, handler Handler) (Subscription, error) {
	stream, err := n.js.Stream(ctx, subject)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       defaultAckWait,
		MaxAckPending: maxConcurrent,
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	consumeCtx, err := consumer.Consume(func(m jetstream.Msg) {
		handler(ctx, &jetstreamMsg{m})
	}, jetstream.PullMaxMessages(maxConcurrent))
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return &natsSubscription{consumeCtx: consumeCtx}, nil
}

func (n *NATS) Request(ctx context.Context, subject string, payload []byte, timeout time.Duration) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := n.conn.RequestWithContext(reqCtx, subject, payload)
	if err != nil {
		return nil, Transient.Wrap(err)
	}
	return msg.Data, nil
}

func (n *NATS) Close() error {
	n.conn.Close()
	return nil
}

type jetstreamMsg struct {
	m jetstream.Msg
}

func (j *jetstreamMsg) Data() []byte { return j.m.Data() }
func (j *jetstreamMsg) Ack() error   { return j.m.Ack() }
func (j *jetstreamMsg) Nak() error   { return j.m.Nak() }
func (j *jetstreamMsg) Term() error  { return j.m.Term() }

type natsSubscription struct {
	consumeCtx jetstream.ConsumeContext
}

func (s *natsSubscription) Close() error {
	s.consumeCtx.Stop()
	return nil
}

var _ Bus = (*NATS)(nil)
