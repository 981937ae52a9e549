package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to the event name, e.g. campusmarket.item.published.
const SubjectPrefix = "campusmarket."

type NATS struct {
	nc *nats.Conn
}

func DialNATS(url string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("campusmarket"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATS{nc: nc}, nil
}

func (p *NATS) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.nc.Publish(SubjectPrefix+e.Name, body)
}

func (p *NATS) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}
