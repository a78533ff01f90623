package events

import (
	"time"

	"github.com/sheikh-saqib/personal-ledger/internal/models"
)

// Topics the ledger publishes on.
const (
	TopicTransactionCompleted = "transaction_completed"
	TopicAccountLifecycle     = "account_lifecycle"
)

// TransactionCompleted is published once a deposit, withdrawal or transfer has committed.
type TransactionCompleted struct {
	Kind        models.Kind  `json:"kind"`
	FromAccount string       `json:"from_account,omitempty"`
	ToAccount   string       `json:"to_account,omitempty"`
	Amount      models.Money `json:"amount"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// AccountLifecycle is published when an account is created or deleted.
type AccountLifecycle struct {
	Action     string    `json:"action"` // "created" or "deleted"
	AccountID  string    `json:"account_id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}
