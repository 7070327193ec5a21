package forward

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/errors"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/hacktivity"

	"github.com/nats-io/nats.go"
)

// groupHeader carries the fixed partition key, the JetStream counterpart of
// the original SQS MessageGroupId.
const groupHeader = "Hacktivity-Group"

// NATSForwarder publishes the raw event node to a JetStream subject. The
// report ID becomes the Nats-Msg-Id so the server de-duplicates redundant
// publishes on its side as well.
type NATSForwarder struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
	group   string
}

func NewNATSForwarder(cfg config.NATSConfig) (*NATSForwarder, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	subject := cfg.Subject
	if subject == "" {
		subject = config.DefaultNATSSubject
	}
	group := cfg.Group
	if group == "" {
		group = config.DefaultNATSGroup
	}

	reconnectWait, err := config.DurationOrDefault(cfg.ReconnectWait, config.DefaultNATSReconnectWait)
	if err != nil {
		return nil, fmt.Errorf("parse nats reconnect wait: %w", err)
	}
	maxReconnects := cfg.MaxReconnects
	if maxReconnects == 0 {
		maxReconnects = config.DefaultNATSMaxReconnects
	}

	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &NATSForwarder{
		conn:    conn,
		js:      js,
		subject: subject,
		group:   group,
	}, nil
}

func (n *NATSForwarder) Name() string {
	return "nats"
}

func (n *NATSForwarder) Forward(ctx context.Context, ev *hacktivity.Event) error {
	msg := &nats.Msg{
		Subject: n.subject,
		Data:    ev.Raw,
		Header: nats.Header{
			groupHeader: []string{n.group},
		},
	}

	_, err := n.js.PublishMsg(msg, nats.MsgId(ev.ID()), nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("publish %s: %v: %w", n.subject, err, errors.ErrDelivery)
	}

	slog.Debug("NATS message published", "subject", n.subject, "report_id", ev.ID())
	return nil
}

func (n *NATSForwarder) Health(ctx context.Context) error {
	if n.conn == nil || !n.conn.IsConnected() {
		return errors.Transient("nats connection down")
	}
	return nil
}

// Close drains the connection. Safe to call once during shutdown.
func (n *NATSForwarder) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
