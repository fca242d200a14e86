package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fintrackhq/fintrack/internal/domain/transaction"
)

// TransactionsRepo is a map-backed store with the same contract as the
// postgres repo, including ownership scoping. Used in tests and as a
// dev fallback when no database is configured.
type TransactionsRepo struct {
	mu    sync.RWMutex
	items map[string]transaction.Transaction
}

func NewTransactionsRepo() *TransactionsRepo {
	return &TransactionsRepo{
		items: make(map[string]transaction.Transaction),
	}
}

func (r *TransactionsRepo) Create(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TransactionsRepo) ListByUser(ctx context.Context, userID string) ([]transaction.Transaction, error) {
	r.mu.RLock()
	out := make([]transaction.Transaction, 0, len(r.items))

	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	sortByDateDesc(out)

	return out, nil
}

func (r *TransactionsRepo) ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]transaction.Transaction, error) {
	r.mu.RLock()
	out := make([]transaction.Transaction, 0, len(r.items))

	for _, t := range r.items {
		if t.UserID != userID {
			continue
		}
		// [from, to)
		if t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		out = append(out, t)
	}
	r.mu.RUnlock()

	sortByDateDesc(out)

	return out, nil
}

func (r *TransactionsRepo) GetByID(ctx context.Context, userID, id string) (transaction.Transaction, error) {
	r.mu.RLock()
	t, ok := r.items[id]
	r.mu.RUnlock()

	// ownership mismatch is indistinguishable from absence
	if !ok || t.UserID != userID {
		return transaction.Transaction{}, transaction.ErrNotFound
	}

	return t, nil
}

func (r *TransactionsRepo) Update(ctx context.Context, userID, id string, req transaction.UpdateTransactionRequest) (transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return transaction.Transaction{}, transaction.ErrNotFound
	}

	if req.Amount != nil {
		t.Amount = req.Amount.Float64()
	}
	if req.Type != nil {
		t.Type = *req.Type
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Date != nil {
		t.Date = req.Date.Time
	}
	if req.Description != nil {
		t.Description = *req.Description
	}

	t.UpdatedAt = time.Now()
	r.items[id] = t

	return t, nil
}

func (r *TransactionsRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return transaction.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *TransactionsRepo) SummaryByUser(ctx context.Context, userID string) (transaction.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s transaction.Summary

	for _, t := range r.items {
		if t.UserID != userID {
			continue
		}
		switch t.Type {
		case transaction.TypeIncome:
			s.TotalIncome += t.Amount
		case transaction.TypeExpense:
			s.TotalExpense += t.Amount
		}
	}

	s.Balance = s.TotalIncome - s.TotalExpense

	return s, nil
}

func sortByDateDesc(items []transaction.Transaction) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date.Equal(items[j].Date) {
			return items[i].ID > items[j].ID
		}
		return items[i].Date.After(items[j].Date)
	})
}
