package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"volunteer-match/internal/config"
	domainevents "volunteer-match/internal/domain/events"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher forwards committed domain events to NATS, one message per
// event on <prefix>.<event name>.
type NATSPublisher struct {
	conn   Conn
	prefix string
	logger *zap.Logger
}

func Connect(cfg config.NATSConfig, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("nats url is empty")
	}
	nc, err := nats.Connect(url,
		nats.Name("volunteer-match"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Info("nats connected", zap.String("url", nc.ConnectedUrl()))
	return NewNATSPublisher(nc, cfg.SubjectPrefix, logger), nil
}

func NewNATSPublisher(conn Conn, prefix string, logger *zap.Logger) *NATSPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "skills"
	}
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}
}

func (p *NATSPublisher) Subject(name domainevents.Name) string {
	return p.prefix + "." + string(name)
}

// Handle publishes the batch and flushes once. It satisfies the event
// dispatcher's listener contract.
func (p *NATSPublisher) Handle(ctx context.Context, evts []domainevents.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	var errs []error
	for _, e := range evts {
		data, err := json.Marshal(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("marshal %s: %w", e.Name, err))
			continue
		}
		if err := p.conn.Publish(p.Subject(e.Name), data); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", e.Name, err))
		}
	}
	flushCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
	}
	return errors.Join(errs...)
}

func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
