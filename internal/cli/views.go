package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sheikh-saqib/personal-ledger/internal/models"
)

type accountView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Balance      models.Money `json:"balance"`
	CreatedAt    time.Time    `json:"created_at"`
	Transactions int          `json:"transactions"`
}

func newAccountView(a models.Account) accountView {
	return accountView{
		ID:           a.ID,
		Name:         a.Name,
		Balance:      a.Balance,
		CreatedAt:    a.CreatedAt,
		Transactions: len(a.Transactions),
	}
}

type recordView struct {
	Kind           models.Kind  `json:"kind"`
	Amount         models.Money `json:"amount"`
	CounterpartyID string       `json:"counterparty_id,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

func newRecordView(r models.TransactionRecord) recordView {
	return recordView{
		Kind:           r.Kind,
		Amount:         r.Amount,
		CounterpartyID: r.CounterpartyID,
		Timestamp:      r.Timestamp,
	}
}

// writeJSON is the single path for --json output.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
