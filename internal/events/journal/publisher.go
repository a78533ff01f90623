package journal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	interfaces "github.com/sheikh-saqib/personal-ledger/internal/interfaces"
)

// Publisher writes ledger events as structured log lines, one per event,
// giving an append-only audit trail next to the ledger file.
type Publisher struct {
	log zerolog.Logger
}

func NewPublisher(log zerolog.Logger) *Publisher {
	return &Publisher{log: log.With().Str("component", "journal").Logger()}
}

func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.log.Info().
		Str("topic", topic).
		RawJSON("event", data).
		Msg("ledger event")
	return nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
