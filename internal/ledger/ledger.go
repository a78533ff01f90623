package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	interfaces "github.com/sheikh-saqib/personal-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-ledger/internal/models"
	"github.com/sheikh-saqib/personal-ledger/internal/models/events"
	"github.com/sheikh-saqib/personal-ledger/internal/storage/memory"
)

// Ledger is the operation layer over one AccountStore.
// Every operation runs to completion under a single lock, so a transfer's
// two legs are never observable apart.
type Ledger struct {
	mu        sync.Mutex
	store     interfaces.AccountStore    // live accounts
	gateway   interfaces.SnapshotGateway // nil keeps the ledger in memory only
	publisher interfaces.EventPublisher  // nil disables events
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithGateway saves the full store through g after every committed change.
func WithGateway(g interfaces.SnapshotGateway) Option {
	return func(l *Ledger) { l.gateway = g }
}

// WithPublisher sends an event to p after every committed change.
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a Ledger over store.
func NewLedger(store interfaces.AccountStore, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open loads the snapshot held by gateway into a fresh in-memory store and
// returns a Ledger that saves back through the same gateway. Load errors,
// models.ErrCorruptState included, are returned unchanged.
func Open(ctx context.Context, gateway interfaces.SnapshotGateway, opts ...Option) (*Ledger, error) {
	accounts, err := gateway.Load(ctx)
	if err != nil {
		return nil, err
	}
	store, err := memory.NewMemoryAccountStore(accounts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptState, err)
	}
	l := NewLedger(store, append([]Option{WithGateway(gateway)}, opts...)...)
	l.log.Debug().Int("accounts", store.Len()).Msg("ledger loaded")
	return l, nil
}

// CreateAccount opens an account holding initialDeposit and returns its id.
// A positive initial deposit is recorded as the account's first Deposit.
// If only the save fails, the id is returned together with the error.
func (l *Ledger) CreateAccount(ctx context.Context, name string, initialDeposit models.Money) (string, error) {
	const op = "create account"

	normalized, err := models.NormalizeName(name)
	if err != nil {
		return "", &models.OpError{Op: op, Value: fmt.Sprintf("%q", name), Err: err}
	}
	if initialDeposit.IsNegative() {
		return "", &models.OpError{Op: op, Value: initialDeposit.String(), Err: models.ErrInvalidAmount}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	account := models.Account{
		ID:        l.store.NextID(),
		Name:      normalized,
		Balance:   initialDeposit,
		CreatedAt: now,
	}
	if initialDeposit.IsPositive() {
		account.Transactions = append(account.Transactions, models.TransactionRecord{
			Kind:      models.KindDeposit,
			Amount:    initialDeposit,
			Timestamp: now,
		})
	}

	if err := l.store.Insert(account); err != nil {
		return "", &models.OpError{Op: op, AccountID: account.ID, Err: err}
	}
	l.log.Debug().Str("account_id", account.ID).Str("initial", initialDeposit.String()).Msg("account created")

	err = l.persist(ctx, op, account.ID)
	l.publish(ctx, events.TopicAccountLifecycle, events.AccountLifecycle{
		Action:     "created",
		AccountID:  account.ID,
		Name:       account.Name,
		OccurredAt: now,
	})
	return account.ID, err
}

// Deposit adds amount to the account and returns its updated state.
func (l *Ledger) Deposit(ctx context.Context, id string, amount models.Money) (models.Account, error) {
	const op = "deposit"

	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.get(op, id)
	if err != nil {
		return models.Account{}, err
	}
	if !amount.IsPositive() {
		return models.Account{}, &models.OpError{Op: op, AccountID: id, Value: amount.String(), Err: models.ErrInvalidAmount}
	}
	balance, err := account.Balance.Add(amount)
	if err != nil {
		return models.Account{}, &models.OpError{Op: op, AccountID: id, Value: amount.String(), Err: err}
	}

	now := l.now()
	account.Balance = balance
	account.Transactions = append(account.Transactions, models.TransactionRecord{
		Kind:      models.KindDeposit,
		Amount:    amount,
		Timestamp: now,
	})
	if err := l.store.Update(account); err != nil {
		return models.Account{}, &models.OpError{Op: op, AccountID: id, Err: err}
	}

	err = l.persist(ctx, op, id)
	l.publish(ctx, events.TopicTransactionCompleted, events.TransactionCompleted{
		Kind:       models.KindDeposit,
		ToAccount:  id,
		Amount:     amount,
		OccurredAt: now,
	})
	return account, err
}

// Withdraw takes amount out of the account and returns its updated state.
// The balance never goes below zero.
func (l *Ledger) Withdraw(ctx context.Context, id string, amount models.Money) (models.Account, error) {
	const op = "withdraw"

	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.get(op, id)
	if err != nil {
		return models.Account{}, err
	}
	if !amount.IsPositive() {
		return models.Account{}, &models.OpError{Op: op, AccountID: id, Value: amount.String(), Err: models.ErrInvalidAmount}
	}
	if account.Balance.Cmp(amount) < 0 {
		return models.Account{}, &models.OpError{
			Op:        op,
			AccountID: id,
			Value:     fmt.Sprintf("%s requested, %s available", amount, account.Balance),
			Err:       models.ErrInsufficientFunds,
		}
	}
	balance, err := account.Balance.Sub(amount)
	if err != nil {
		return models.Account{}, &models.OpError{Op: op, AccountID: id, Value: amount.String(), Err: err}
	}

	now := l.now()
	account.Balance = balance
	account.Transactions = append(account.Transactions, models.TransactionRecord{
		Kind:      models.KindWithdrawal,
		Amount:    amount,
		Timestamp: now,
	})
	if err := l.store.Update(account); err != nil {
		return models.Account{}, &models.OpError{Op: op, AccountID: id, Err: err}
	}

	err = l.persist(ctx, op, id)
	l.publish(ctx, events.TopicTransactionCompleted, events.TransactionCompleted{
		Kind:        models.KindWithdrawal,
		FromAccount: id,
		Amount:      amount,
		OccurredAt:  now,
	})
	return account, err
}

// Transfer moves amount from one account to another. Both legs and both
// history records are applied together, then the ledger is saved once.
// Transfers to the same account are rejected with ErrSelfTransferNotAllowed.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount models.Money) error {
	const op = "transfer"

	l.mu.Lock()
	defer l.mu.Unlock()

	// recipients are looked up, never created
	from, err := l.get(op, fromID)
	if err != nil {
		return err
	}
	to, err := l.get(op, toID)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return &models.OpError{Op: op, AccountID: fromID, Value: amount.String(), Err: models.ErrInvalidAmount}
	}
	if fromID == toID {
		return &models.OpError{Op: op, AccountID: fromID, Err: models.ErrSelfTransferNotAllowed}
	}
	if from.Balance.Cmp(amount) < 0 {
		return &models.OpError{
			Op:        op,
			AccountID: fromID,
			Value:     fmt.Sprintf("%s requested, %s available", amount, from.Balance),
			Err:       models.ErrInsufficientFunds,
		}
	}

	// compute both legs before touching the store
	fromBalance, err := from.Balance.Sub(amount)
	if err != nil {
		return &models.OpError{Op: op, AccountID: fromID, Value: amount.String(), Err: err}
	}
	toBalance, err := to.Balance.Add(amount)
	if err != nil {
		return &models.OpError{Op: op, AccountID: toID, Value: amount.String(), Err: err}
	}

	original := from.Clone()
	now := l.now()
	from.Balance = fromBalance
	from.Transactions = append(from.Transactions, models.TransactionRecord{
		Kind:           models.KindTransferOut,
		Amount:         amount,
		CounterpartyID: toID,
		Timestamp:      now,
	})
	to.Balance = toBalance
	to.Transactions = append(to.Transactions, models.TransactionRecord{
		Kind:           models.KindTransferIn,
		Amount:         amount,
		CounterpartyID: fromID,
		Timestamp:      now,
	})

	if err := l.store.Update(from); err != nil {
		return &models.OpError{Op: op, AccountID: fromID, Err: err}
	}
	if err := l.store.Update(to); err != nil {
		// put the debit back so no half transfer survives
		if rerr := l.store.Update(original); rerr != nil {
			l.log.Error().Err(rerr).Str("account_id", fromID).Msg("failed to roll back transfer debit")
		}
		return &models.OpError{Op: op, AccountID: toID, Err: err}
	}
	l.log.Debug().Str("from", fromID).Str("to", toID).Str("amount", amount.String()).Msg("transfer committed")

	err = l.persist(ctx, op, fromID)
	l.publish(ctx, events.TopicTransactionCompleted, events.TransactionCompleted{
		Kind:        models.KindTransferOut,
		FromAccount: fromID,
		ToAccount:   toID,
		Amount:      amount,
		OccurredAt:  now,
	})
	return err
}

// DeleteAccount removes an account whose balance is exactly zero.
func (l *Ledger) DeleteAccount(ctx context.Context, id string) error {
	const op = "delete account"

	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.get(op, id)
	if err != nil {
		return err
	}
	if !account.Balance.IsZero() {
		return &models.OpError{Op: op, AccountID: id, Value: "balance " + account.Balance.String(), Err: models.ErrAccountNotEmpty}
	}
	if err := l.store.Remove(id); err != nil {
		return &models.OpError{Op: op, AccountID: id, Err: err}
	}

	err = l.persist(ctx, op, id)
	l.publish(ctx, events.TopicAccountLifecycle, events.AccountLifecycle{
		Action:     "deleted",
		AccountID:  id,
		Name:       account.Name,
		OccurredAt: l.now(),
	})
	return err
}

// Account returns a copy of the account with the given id.
func (l *Ledger) Account(id string) (models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get("get account", id)
}

// History returns the account's records, oldest first. The sequence is a
// snapshot taken now and can be ranged over any number of times.
func (l *Ledger) History(id string) (iter.Seq[models.TransactionRecord], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.get("history", id)
	if err != nil {
		return nil, err
	}
	return slices.Values(account.Transactions), nil
}

// ListAccounts returns every account in creation order.
func (l *Ledger) ListAccounts() iter.Seq[models.Account] {
	return l.store.List()
}

// Save writes the current state through the gateway. Use it to retry after
// an operation reported ErrPersistenceFailure.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persist(ctx, "save", "")
}

func (l *Ledger) get(op, id string) (models.Account, error) {
	account, err := l.store.Get(id)
	if errors.Is(err, models.ErrNotFound) {
		return models.Account{}, &models.OpError{Op: op, AccountID: id, Err: models.ErrNotFound}
	}
	if err != nil {
		return models.Account{}, &models.OpError{Op: op, AccountID: id, Err: err}
	}
	return account, nil
}

// persist saves the whole store. The in-memory change is kept on failure.
func (l *Ledger) persist(ctx context.Context, op, id string) error {
	if l.gateway == nil {
		return nil
	}
	if err := l.gateway.Save(ctx, slices.Collect(l.store.List())); err != nil {
		l.log.Warn().Err(err).Str("op", op).Msg("change kept in memory but not saved")
		if !errors.Is(err, models.ErrPersistenceFailure) {
			err = fmt.Errorf("%w: %v", models.ErrPersistenceFailure, err)
		}
		return &models.OpError{Op: op, AccountID: id, Err: err}
	}
	return nil
}

func (l *Ledger) publish(ctx context.Context, topic string, event any) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, topic, event); err != nil {
		l.log.Warn().Err(err).Str("topic", topic).Msg("failed to publish ledger event")
	}
}
