package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength is the longest account name, in characters, that is accepted.
const MaxNameLength = 64

// Account is a named balance together with the history that produced it
type Account struct {
	ID           string
	Name         string
	Balance      Money
	Transactions []TransactionRecord
	CreatedAt    time.Time
}

// Clone returns a copy that shares no history slice with a.
func (a Account) Clone() Account {
	a.Transactions = slices.Clone(a.Transactions)
	return a
}

// NormalizeName trims name and checks it is non-empty and at most MaxNameLength characters.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxNameLength {
		return "", fmt.Errorf("%w: %d characters, at most %d allowed", ErrInvalidName, n, MaxNameLength)
	}
	return trimmed, nil
}

// ReplayBalance sums the signed effects of the account's history.
func (a Account) ReplayBalance() (Money, error) {
	var total Money
	for i, r := range a.Transactions {
		var err error
		if total, err = total.Add(r.Effect()); err != nil {
			return Money{}, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return total, nil
}
