package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrackhq/fintrack/internal/domain/transaction"
	"github.com/fintrackhq/fintrack/internal/observability"
)

// Every query in this repo is scoped by user_id. A row that exists but
// belongs to someone else is reported exactly like a row that does not
// exist.
type TransactionsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewTransactionsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *TransactionsRepo {
	return &TransactionsRepo{pool: pool, metrics: metrics}
}

const txColumns = `id, user_id, amount, type, category, date, description, created_at, updated_at`

func scanTransaction(row pgx.Row) (transaction.Transaction, error) {
	var t transaction.Transaction

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Amount,
		&t.Type,
		&t.Category,
		&t.Date,
		&t.Description,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	return t, err
}

func (r *TransactionsRepo) Create(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	err := r.metrics.ObserveDB("transactions.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO transactions (id, user_id, amount, type, category, date, description, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.UserID, t.Amount, t.Type, t.Category, t.Date, t.Description, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return transaction.Transaction{}, err
	}

	return t, nil
}

func (r *TransactionsRepo) ListByUser(ctx context.Context, userID string) ([]transaction.Transaction, error) {
	return r.list(ctx, "transactions.list",
		`SELECT `+txColumns+`
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY date DESC, id DESC`,
		userID,
	)
}

// ListByDateRange returns owned transactions with date in [from, to).
func (r *TransactionsRepo) ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]transaction.Transaction, error) {
	return r.list(ctx, "transactions.list_range",
		`SELECT `+txColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date DESC, id DESC`,
		userID, from, to,
	)
}

func (r *TransactionsRepo) list(ctx context.Context, op, query string, args ...interface{}) ([]transaction.Transaction, error) {
	out := make([]transaction.Transaction, 0, 16)

	err := r.metrics.ObserveDB(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			t, err := scanTransaction(rows)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TransactionsRepo) GetByID(ctx context.Context, userID, id string) (transaction.Transaction, error) {
	var t transaction.Transaction

	err := r.metrics.ObserveDB("transactions.get", func() error {
		var err error
		t, err = scanTransaction(r.pool.QueryRow(ctx,
			`SELECT `+txColumns+`
			 FROM transactions
			 WHERE id = $1 AND user_id = $2`,
			id, userID,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}

		return transaction.Transaction{}, err
	}

	return t, nil
}

// Update applies only the fields present in the request, building the
// SET clause with positional args.
func (r *TransactionsRepo) Update(ctx context.Context, userID, id string, req transaction.UpdateTransactionRequest) (transaction.Transaction, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id, userID}
	argPos := 3

	if req.Amount != nil {
		sets = append(sets, fmt.Sprintf("amount = $%d", argPos))
		args = append(args, req.Amount.Float64())
		argPos++
	}

	if req.Type != nil {
		sets = append(sets, fmt.Sprintf("type = $%d", argPos))
		args = append(args, *req.Type)
		argPos++
	}

	if req.Category != nil {
		sets = append(sets, fmt.Sprintf("category = $%d", argPos))
		args = append(args, *req.Category)
		argPos++
	}

	if req.Date != nil {
		sets = append(sets, fmt.Sprintf("date = $%d", argPos))
		args = append(args, req.Date.Time)
		argPos++
	}

	if req.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argPos))
		args = append(args, *req.Description)
		argPos++
	}

	query := `UPDATE transactions
		SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1 AND user_id = $2
		RETURNING ` + txColumns

	var t transaction.Transaction

	err := r.metrics.ObserveDB("transactions.update", func() error {
		var err error
		t, err = scanTransaction(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}

		return transaction.Transaction{}, err
	}

	return t, nil
}

func (r *TransactionsRepo) Delete(ctx context.Context, userID, id string) error {
	var affected int64

	err := r.metrics.ObserveDB("transactions.delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM transactions WHERE id = $1 AND user_id = $2`,
			id, userID,
		)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// no rows deleted means absent or not owned
	if affected == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

// SummaryByUser aggregates income and expense totals in one pass.
func (r *TransactionsRepo) SummaryByUser(ctx context.Context, userID string) (transaction.Summary, error) {
	var s transaction.Summary

	err := r.metrics.ObserveDB("transactions.summary", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT
				COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
				COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
			 FROM transactions
			 WHERE user_id = $1`,
			userID,
		).Scan(&s.TotalIncome, &s.TotalExpense)
	})

	if err != nil {
		return transaction.Summary{}, err
	}

	s.Balance = s.TotalIncome - s.TotalExpense

	return s, nil
}
