package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/fintrackhq/fintrack/internal/domain/transaction"
	"github.com/fintrackhq/fintrack/internal/http/middlewares"
)

// TransactionStore is what the handler needs from a transaction
// repository; both the postgres and the memory repo satisfy it.
type TransactionStore interface {
	Create(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]transaction.Transaction, error)
	ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]transaction.Transaction, error)
	GetByID(ctx context.Context, userID, id string) (transaction.Transaction, error)
	Update(ctx context.Context, userID, id string, req transaction.UpdateTransactionRequest) (transaction.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
	SummaryByUser(ctx context.Context, userID string) (transaction.Summary, error)
}

type TransactionsHandler struct {
	repo      TransactionStore
	summaries cache.SummaryStore
}

func NewTransactionsHandler(repo TransactionStore, summaries cache.SummaryStore) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, summaries: summaries}
}

// callerID re-checks the resolved identity even though RequireAuth
// already guards these routes.
func callerID(ctx *gin.Context) (string, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return "", false
	}

	return id, true
}

func (h *TransactionsHandler) Create(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req transaction.CreateTransactionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// ownership comes from the verified caller; any userId in the body
	// never reaches the store
	t, err := h.repo.Create(cctx, transaction.NewFromCreateRequest(userID, req))

	if err != nil {
		RespondInternal(ctx, "Could not create transaction")
		return
	}

	h.summaries.Invalidate(cctx, userID)

	ctx.JSON(http.StatusCreated, t)
}

func (h *TransactionsHandler) List(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.repo.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list transactions")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *TransactionsHandler) ListByMonth(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	year, errY := strconv.Atoi(ctx.Param("year"))
	month, errM := strconv.Atoi(ctx.Param("month"))

	if errY != nil || errM != nil {
		RespondBadRequest(ctx, "Invalid year or month", nil)
		return
	}

	from, to, err := transaction.MonthRange(year, month)

	if err != nil {
		RespondBadRequest(ctx, "Invalid year or month", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.repo.ListByDateRange(cctx, userID, from, to)

	if err != nil {
		RespondInternal(ctx, "Could not list transactions")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *TransactionsHandler) GetByID(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.repo.GetByID(cctx, userID, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}

		RespondInternal(ctx, "Could not fetch transaction")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TransactionsHandler) Update(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req transaction.UpdateTransactionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// a body of {} or only unrecognized keys is a 400, not a no-op
	if req.Empty() {
		RespondBadRequest(ctx, "No valid fields to update", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.repo.Update(cctx, userID, ctx.Param("id"), req)

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}

		RespondInternal(ctx, "Could not update transaction")
		return
	}

	h.summaries.Invalidate(cctx, userID)

	ctx.JSON(http.StatusOK, t)
}

func (h *TransactionsHandler) Delete(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}

		RespondInternal(ctx, "Could not delete transaction")
		return
	}

	h.summaries.Invalidate(cctx, userID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// Summary serves the dashboard totals, cache first.
func (h *TransactionsHandler) Summary(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if s, hit := h.summaries.Get(cctx, userID); hit {
		RespondJSONWithETag(ctx, http.StatusOK, s)
		return
	}

	s, err := h.repo.SummaryByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not compute summary")
		return
	}

	h.summaries.Set(cctx, userID, s)

	RespondJSONWithETag(ctx, http.StatusOK, s)
}
