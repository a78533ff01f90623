package memory

import (
	"fmt"
	"iter"
	"slices"
	"sync" // standard Go package for concurrency primitives like Mutex

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/personal-ledger/internal/interfaces" // interface AccountStore
	"github.com/sheikh-saqib/personal-ledger/internal/models"                // domain models: Account
)

// MemoryAccountStore is an in-memory implementation of interfaces.AccountStore.
// It keeps accounts in a map for lookup and a slice of ids for creation order.
type MemoryAccountStore struct {
	mu       sync.Mutex                // protects accounts and order
	accounts map[string]models.Account // id -> account
	order    []string                  // ids in insertion order, drives List
}

// NewMemoryAccountStore creates a store seeded with accounts, in the given order.
// A repeated id fails with models.ErrDuplicateID.
func NewMemoryAccountStore(accounts ...models.Account) (*MemoryAccountStore, error) {
	m := &MemoryAccountStore{
		accounts: make(map[string]models.Account, len(accounts)),
		order:    make([]string, 0, len(accounts)),
	}
	for _, a := range accounts {
		if err := m.Insert(a); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NextID returns a fresh random (v4) UUID. Ids are never reused, even after deletion.
func (m *MemoryAccountStore) NextID() string {
	return uuid.NewString()
}

// Insert adds a new account at the end of the listing order.
func (m *MemoryAccountStore) Insert(account models.Account) error {

	m.mu.Lock()         // lock the mutex to prevent concurrent writes
	defer m.mu.Unlock() // unlock automatically when function exits (even if error occurs)

	if _, exists := m.accounts[account.ID]; exists {
		return fmt.Errorf("%w: %s", models.ErrDuplicateID, account.ID)
	}
	m.accounts[account.ID] = account.Clone() // store our own copy of the history
	m.order = append(m.order, account.ID)
	return nil
}

// Get returns a copy of the account so callers can't modify internal state.
func (m *MemoryAccountStore) Get(id string) (models.Account, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	return a.Clone(), nil
}

// Update replaces an existing account, keeping its position in the listing order.
func (m *MemoryAccountStore) Update(account models.Account) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; !ok {
		return fmt.Errorf("%w: %s", models.ErrNotFound, account.ID)
	}
	m.accounts[account.ID] = account.Clone()
	return nil
}

// Remove deletes the account with the given id.
func (m *MemoryAccountStore) Remove(id string) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	delete(m.accounts, id)
	m.order = slices.DeleteFunc(m.order, func(o string) bool { return o == id })
	return nil
}

// List yields copies of all accounts in creation order.
// Each range over the sequence sees the accounts present when it started.
func (m *MemoryAccountStore) List() iter.Seq[models.Account] {
	return func(yield func(models.Account) bool) {
		m.mu.Lock()
		ids := slices.Clone(m.order) // take the order now, never hold the lock while yielding
		m.mu.Unlock()

		for _, id := range ids {
			a, err := m.Get(id)
			if err != nil {
				continue // removed since the listing started
			}
			if !yield(a) {
				return
			}
		}
	}
}

func (m *MemoryAccountStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Compile-time check: ensure MemoryAccountStore implements AccountStore interface
var _ interfaces.AccountStore = (*MemoryAccountStore)(nil)
