package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher publishes typed events to JetStream.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishAudit publishes an audit event for the durable persister.
func (p *Publisher) PublishAudit(ctx context.Context, event AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}
	if _, err := p.js.Publish(ctx, AuditSubject, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", AuditSubject, err)
	}
	return nil
}
