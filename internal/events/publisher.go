// Package events publishes activity lifecycle events so sibling dashboard
// services (alerting, reporting) can react without polling the log table.
package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Activity event kinds.
const (
	KindCreated    = "created"
	KindRolledBack = "rolled_back"
)

// ActivityEvent is the payload published for every log mutation.
type ActivityEvent struct {
	Kind       string    `json:"kind"`
	LogID      uint      `json:"logId"`
	UserID     *uint     `json:"userId,omitempty"`
	ActionType string    `json:"actionType"`
	Module     string    `json:"module,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher emits activity events over NATS. A nil connection disables
// publishing; event delivery is best-effort and never fails the request.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewPublisher builds an activity event publisher. subjectBase is the
// service namespace, e.g. "cityhub"; events go to "<base>.activity.<kind>".
func NewPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) *Publisher {
	subject := strings.TrimSuffix(strings.TrimSpace(subjectBase), ".")
	if subject == "" {
		subject = "cityhub"
	}
	return &Publisher{
		conn:    conn,
		subject: subject + ".activity",
		logger:  logger.With().Str("component", "activity_events").Logger(),
	}
}

// Publish sends one activity event. Failures are logged, not returned.
func (p *Publisher) Publish(event ActivityEvent) {
	if p == nil || p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode activity event")
		return
	}

	subject := p.subject + "." + event.Kind
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish activity event")
	}
}
