package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/sheikh-saqib/personal-ledger/internal/models"
)

func validAccount() PersistAccount {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return PersistAccount{
		ID:        "a",
		Name:      "Checking",
		Balance:   700,
		CreatedAt: ts,
		Transactions: []PersistRecord{
			{Kind: models.KindDeposit, Amount: 1000, Timestamp: ts},
			{Kind: models.KindTransferOut, Amount: 300, CounterpartyID: "b", Timestamp: ts},
		},
	}
}

func TestRestoreValid(t *testing.T) {
	s := Snapshot{Version: SnapshotVersion, Accounts: []PersistAccount{validAccount()}}
	accounts, err := s.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].Balance.MinorUnits() != 700 || len(accounts[0].Transactions) != 2 {
		t.Fatalf("unexpected restore result: %+v", accounts)
	}
}

func TestRestoreEmpty(t *testing.T) {
	accounts, err := Snapshot{Version: SnapshotVersion}.Restore()
	if err != nil || len(accounts) != 0 {
		t.Fatalf("accounts=%v err=%v", accounts, err)
	}
}

func TestRestoreRejectsInconsistentState(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"unknown version", func(s *Snapshot) { s.Version = 99 }},
		{"missing version", func(s *Snapshot) { s.Version = 0 }},
		{"empty id", func(s *Snapshot) { s.Accounts[0].ID = "" }},
		{"empty name", func(s *Snapshot) { s.Accounts[0].Name = " " }},
		{"untrimmed name", func(s *Snapshot) { s.Accounts[0].Name = " Checking" }},
		{"balance mismatch", func(s *Snapshot) { s.Accounts[0].Balance = 701 }},
		{"negative amount", func(s *Snapshot) { s.Accounts[0].Transactions[0].Amount = -1000 }},
		{"unknown kind", func(s *Snapshot) { s.Accounts[0].Transactions[0].Kind = "interest" }},
		{"transfer without counterparty", func(s *Snapshot) { s.Accounts[0].Transactions[1].CounterpartyID = "" }},
		{"negative balance", func(s *Snapshot) {
			s.Accounts[0].Transactions = []PersistRecord{{Kind: models.KindWithdrawal, Amount: 5}}
			s.Accounts[0].Balance = -5
		}},
		{"duplicate id", func(s *Snapshot) { s.Accounts = append(s.Accounts, validAccount()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Snapshot{Version: SnapshotVersion, Accounts: []PersistAccount{validAccount()}}
			tt.mutate(&s)
			accounts, err := s.Restore()
			if !errors.Is(err, models.ErrCorruptState) {
				t.Fatalf("err=%v want ErrCorruptState", err)
			}
			if accounts != nil {
				t.Fatalf("corrupt snapshot returned accounts: %+v", accounts)
			}
		})
	}
}

func TestNewSnapshotAmountsAreMinorUnits(t *testing.T) {
	a := models.Account{
		ID:      "a",
		Name:    "A",
		Balance: models.MustParseMoney("12.34"),
		Transactions: []models.TransactionRecord{
			{Kind: models.KindDeposit, Amount: models.MustParseMoney("12.34")},
		},
	}
	s := NewSnapshot([]models.Account{a}, time.Now())
	if s.Version != SnapshotVersion {
		t.Fatalf("version=%d", s.Version)
	}
	if s.Accounts[0].Balance != 1234 || s.Accounts[0].Transactions[0].Amount != 1234 {
		t.Fatalf("unexpected persisted amounts: %+v", s.Accounts[0])
	}
}
