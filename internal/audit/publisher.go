// Package audit writes a best-effort trail of auth and access-grant
// events to Pub/Sub. Publishing never blocks or fails the calling
// operation; a lost audit event is logged and dropped.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/pkg/logger"
)

// Action names an auditable event.
type Action string

const (
	ActionLogin         Action = "auth.login"
	ActionLoginFailed   Action = "auth.login_failed"
	ActionSignup        Action = "auth.signup"
	ActionLogout        Action = "auth.logout"
	ActionTokenRefresh  Action = "auth.token_refresh"
	ActionAccessGranted Action = "access.granted"
	ActionAccessRevoked Action = "access.revoked"
)

// Entry is the published payload.
type Entry struct {
	Action     Action         `json:"action"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	SubjectID  *uuid.UUID     `json:"subject_id,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type messagePublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// Publisher sends audit entries to the configured topic.
type Publisher struct {
	topic messagePublisher
	logg  *logger.Logger
}

// NewPublisher wraps a Pub/Sub publisher handle. A nil topic yields a
// disabled publisher whose Record is a no-op, which keeps call sites
// unconditional when the audit feature flag is off.
func NewPublisher(topic messagePublisher, logg *logger.Logger) *Publisher {
	return &Publisher{topic: topic, logg: logg}
}

// Record publishes one entry without waiting for the broker ack.
func (p *Publisher) Record(ctx context.Context, entry Entry) {
	if p == nil || p.topic == nil {
		return
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		p.logError(ctx, "marshal audit entry", err)
		return
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"action": string(entry.Action)},
	})

	go func() {
		if _, err := result.Get(context.Background()); err != nil {
			p.logError(context.Background(), "publish audit entry", err)
		}
	}()
}

func (p *Publisher) logError(ctx context.Context, msg string, err error) {
	if p.logg != nil {
		p.logg.Error(ctx, msg, err)
	}
}
