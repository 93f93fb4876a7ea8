// Package notify publishes run lifecycle events over NATS so downstream
// consumers (dashboards, billing reconciliation) can react to fresh
// verdicts without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectRunCompleted is the NATS subject for finished provider runs.
const SubjectRunCompleted = "media.adgap.run.completed"

// RunCompletedEvent announces one finished provider analysis.
type RunCompletedEvent struct {
	RunID         string         `json:"run_id"`
	Provider      string         `json:"provider"`
	Sessions      int            `json:"sessions"`
	Devices       int            `json:"devices"`
	VerdictCounts map[string]int `json:"verdict_counts"`
	FinishedAt    string         `json:"finished_at"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) RunCompleted(evt RunCompletedEvent) error {
	if evt.FinishedAt == "" {
		evt.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(SubjectRunCompleted, payload); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectRunCompleted, err)
	}
	p.logger.Info("run event published", "provider", evt.Provider, "run_id", evt.RunID)
	return nil
}

func (p *Publisher) Close() {
	p.conn.Close()
}
