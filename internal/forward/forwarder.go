package forward

import (
	"context"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/hacktivity"
)

// Forwarder hands a disclosed event to one downstream consumer. The poll loop
// only cares about success or failure; a failure leaves the event unmarked in
// the ledger so a later overlapping window retries it.
type Forwarder interface {
	// Name returns the forwarder name (e.g. "slack", "telegram", "nats").
	Name() string

	// Forward delivers one event. Errors wrap errors.ErrDelivery.
	Forward(ctx context.Context, ev *hacktivity.Event) error

	// Health checks if the forwarder can currently deliver.
	Health(ctx context.Context) error
}
