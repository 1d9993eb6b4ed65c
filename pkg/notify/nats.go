package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes encoded messages on a subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("cryptopusher"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) Name() string { return "nats" }

// Send publishes msg and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Send(ctx context.Context, msg Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	// FlushWithContext rejects contexts without a deadline
	if _, ok := ctx.Deadline(); !ok {
		return p.conn.FlushTimeout(5 * time.Second)
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}
