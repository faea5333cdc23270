// internal/common/messaging/nats.go
package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Status() nats.Status
	Close()
}

// NATSPublisher publishes messages under a fixed subject prefix.
type NATSPublisher struct {
	conn   Conn
	prefix string
}

// NewNATS connects to url. Reconnects are handled by the client library.
func NewNATS(url, prefix, name string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewNATSFromConn(conn, prefix), nil
}

func NewNATSFromConn(conn Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

// Subject joins the prefix and name with a dot.
func (p *NATSPublisher) Subject(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// Publish sends data on prefix.name and flushes so delivery errors surface
// within ctx.
func (p *NATSPublisher) Publish(ctx context.Context, name string, data []byte, headers map[string]string) error {
	msg := nats.NewMsg(p.Subject(name))
	msg.Data = data
	for k, v := range headers {
		msg.Header.Set(k, v)
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish to %s failed: %w", msg.Subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush failed: %w", err)
	}
	return nil
}

// Ping reports an error unless the connection is established.
func (p *NATSPublisher) Ping(_ context.Context) error {
	if status := p.conn.Status(); status != nats.CONNECTED {
		return fmt.Errorf("nats connection %s", status)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
