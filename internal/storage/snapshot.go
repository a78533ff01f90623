// Package storage defines the persisted form of the ledger and the checks a
// snapshot has to pass before it is trusted again on startup.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/sheikh-saqib/personal-ledger/internal/models"
)

// SnapshotVersion is the layout version written by this build.
const SnapshotVersion = 1

// Snapshot is the complete persisted ledger.
type Snapshot struct {
	Version  int              `json:"version"`
	SavedAt  time.Time        `json:"saved_at"`
	Accounts []PersistAccount `json:"accounts"`
}

// PersistAccount is an account as written to disk; amounts are integer minor units.
type PersistAccount struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Balance      int64           `json:"balance_minor"`
	CreatedAt    time.Time       `json:"created_at"`
	Transactions []PersistRecord `json:"transactions"`
}

// PersistRecord is one history entry as written to disk.
type PersistRecord struct {
	Kind           models.Kind `json:"kind"`
	Amount         int64       `json:"amount_minor"`
	CounterpartyID string      `json:"counterparty_id,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// NewSnapshot captures accounts, in order, as a versioned snapshot.
func NewSnapshot(accounts []models.Account, savedAt time.Time) Snapshot {
	s := Snapshot{
		Version:  SnapshotVersion,
		SavedAt:  savedAt,
		Accounts: make([]PersistAccount, 0, len(accounts)),
	}
	for _, a := range accounts {
		pa := PersistAccount{
			ID:           a.ID,
			Name:         a.Name,
			Balance:      a.Balance.MinorUnits(),
			CreatedAt:    a.CreatedAt,
			Transactions: make([]PersistRecord, 0, len(a.Transactions)),
		}
		for _, r := range a.Transactions {
			pa.Transactions = append(pa.Transactions, PersistRecord{
				Kind:           r.Kind,
				Amount:         r.Amount.MinorUnits(),
				CounterpartyID: r.CounterpartyID,
				Timestamp:      r.Timestamp,
			})
		}
		s.Accounts = append(s.Accounts, pa)
	}
	return s
}

// Restore rebuilds the accounts held by s. Any inconsistency fails with
// models.ErrCorruptState and no accounts are returned.
func (s Snapshot) Restore() ([]models.Account, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", models.ErrCorruptState, s.Version)
	}

	seen := make(map[string]bool, len(s.Accounts))
	accounts := make([]models.Account, 0, len(s.Accounts))
	for i, pa := range s.Accounts {
		a, err := restoreAccount(pa)
		if err != nil {
			return nil, fmt.Errorf("%w: account %d: %v", models.ErrCorruptState, i, err)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("%w: account %d: duplicate id %s", models.ErrCorruptState, i, a.ID)
		}
		seen[a.ID] = true
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func restoreAccount(pa PersistAccount) (models.Account, error) {
	if pa.ID == "" {
		return models.Account{}, errors.New("empty id")
	}
	name, err := models.NormalizeName(pa.Name)
	if err != nil || name != pa.Name {
		return models.Account{}, fmt.Errorf("id %s: bad name %q", pa.ID, pa.Name)
	}

	a := models.Account{
		ID:        pa.ID,
		Name:      pa.Name,
		Balance:   models.NewMoney(pa.Balance),
		CreatedAt: pa.CreatedAt,
	}
	if len(pa.Transactions) > 0 {
		a.Transactions = make([]models.TransactionRecord, 0, len(pa.Transactions))
	}
	for j, pr := range pa.Transactions {
		switch {
		case !pr.Kind.Valid():
			return models.Account{}, fmt.Errorf("id %s: record %d: unknown kind %q", pa.ID, j, pr.Kind)
		case pr.Amount < 0:
			return models.Account{}, fmt.Errorf("id %s: record %d: negative amount %d", pa.ID, j, pr.Amount)
		case pr.Kind.IsTransfer() && pr.CounterpartyID == "":
			return models.Account{}, fmt.Errorf("id %s: record %d: transfer without counterparty", pa.ID, j)
		}
		a.Transactions = append(a.Transactions, models.TransactionRecord{
			Kind:           pr.Kind,
			Amount:         models.NewMoney(pr.Amount),
			CounterpartyID: pr.CounterpartyID,
			Timestamp:      pr.Timestamp,
		})
	}

	replayed, err := a.ReplayBalance()
	if err != nil {
		return models.Account{}, fmt.Errorf("id %s: %v", pa.ID, err)
	}
	if replayed.Cmp(a.Balance) != 0 {
		return models.Account{}, fmt.Errorf("id %s: stored balance %s does not match history total %s", pa.ID, a.Balance, replayed)
	}
	if a.Balance.IsNegative() {
		return models.Account{}, fmt.Errorf("id %s: negative balance %s", pa.ID, a.Balance)
	}
	return a, nil
}
