package models

import "time"

// Kind says how a TransactionRecord moved money on its account
type Kind string

const (
	KindDeposit     Kind = "deposit"
	KindWithdrawal  Kind = "withdrawal"
	KindTransferIn  Kind = "transfer_in"
	KindTransferOut Kind = "transfer_out"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransferIn, KindTransferOut:
		return true
	}
	return false
}

// IsTransfer reports whether k is one leg of a transfer.
func (k Kind) IsTransfer() bool {
	return k == KindTransferIn || k == KindTransferOut
}

// TransactionRecord is a single entry in an account's history
type TransactionRecord struct {
	Kind           Kind      // what happened
	Amount         Money     // always a non-negative magnitude
	CounterpartyID string    // the other account of a transfer, empty otherwise
	Timestamp      time.Time // when the operation committed
}

// Effect is the signed change the record applied to its account's balance.
func (r TransactionRecord) Effect() Money {
	if r.Kind == KindWithdrawal || r.Kind == KindTransferOut {
		return r.Amount.Neg()
	}
	return r.Amount
}
