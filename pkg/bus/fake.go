package bus

import (
	"context"
	"sync"
	"time"
)

// Fake is an in-memory Bus used by tests. Publish synchronously invokes
// every handler subscribed to the subject at call time — good enough to
// exercise idempotent-redelivery and poison-message tests without a
// broker.
type Fake struct {
	mu          sync.Mutex
	subscribers map[string][]Handler
	published   map[string][][]byte
	replies     map[string][]byte
}

// NewFake returns an empty in-memory Bus.
func NewFake() *Fake {
	return &Fake{
		subscribers: make(map[string][]Handler),
		published:   make(map[string][][]byte),
		replies:     make(map[string][]byte),
	}
}

func (f *Fake) Publish(ctx context.Context, subject string, payload []byte) error {
	f.mu.Lock()
	f.published[subject] = append(f.published[subject], payload)
	handlers := append([]Handler(nil), f.subscribers[subject]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(ctx, &fakeMsg{data: payload})
	}
	return nil
}

func (f *Fake) Subscribe(_ context.Context, subject, _ string, _ int, handler Handler) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[subject] = append(f.subscribers[subject], handler)
	return &fakeSubscription{}, nil
}

// SetReply configures the payload Request returns for subject, for tests
// exercising the semantic-search request/reply contract.
func (f *Fake) SetReply(subject string, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[subject] = payload
}

func (f *Fake) Request(_ context.Context, subject string, _ []byte, _ time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reply, ok := f.replies[subject]
	if !ok {
		return nil, Transient.New("no reply configured for %q", subject)
	}
	return reply, nil
}

// Published returns every payload published to subject, for assertions.
func (f *Fake) Published(subject string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.published[subject]...)
}

func (f *Fake) Close() error { return nil }

type fakeMsg struct {
	data   []byte
	terminal string
}

func (m *fakeMsg) Data() []byte { return m.data }
func (m *fakeMsg) Ack() error   { m.terminal = "ack"; return nil }
func (m *fakeMsg) Nak() error   { m.terminal = "nak"; return nil }
func (m *fakeMsg) Term() error  { m.terminal = "term"; return nil }

type fakeSubscription struct{}

func (s *fakeSubscription) Close() error { return nil }

var _ Bus = (*Fake)(nil)
