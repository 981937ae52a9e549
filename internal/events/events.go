// Package events publishes domain events to a broker. Publishing is
// best-effort: callers log failures and never fail the request on them.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	ItemPublished    = "item.published"
	ItemReactivated  = "item.reactivated"
	ItemInactivated  = "item.inactivated"
	ItemFinalized    = "item.finalized"
	ItemDeleted      = "item.deleted"
	InterestCreated  = "interest.created"
	InterestAccepted = "interest.accepted"
	InterestRejected = "interest.rejected"
	ReviewCreated    = "review.created"
)

type Event struct {
	Name    string         `json:"name"`
	At      time.Time      `json:"at"`
	ActorID string         `json:"actorId,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Memory keeps every event in order. Used by tests and local debugging.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Name
	}
	return out
}

// New picks a backend: "none" (or empty), "amqp" or "nats".
func New(backend, amqpURL, natsURL string) (Publisher, error) {
	switch backend {
	case "", "none":
		return Noop{}, nil
	case "amqp":
		p, err := DialAMQP(amqpURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "nats":
		p, err := DialNATS(natsURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", backend)
	}
}
