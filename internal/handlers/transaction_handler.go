package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dolfin/internal/errors"
	"dolfin/internal/models"
	"dolfin/internal/services"
)

const defaultSyncLimit = 500

// TransactionHandler serves the cached transaction mirror and the sync
// operation that refreshes it.
type TransactionHandler struct {
	syncService        services.SyncServicer
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(syncService services.SyncServicer, transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{
		syncService:        syncService,
		transactionService: transactionService,
	}
}

// SyncRequest holds the optional sync parameters. filter is passed through
// to the provider verbatim.
type SyncRequest struct {
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Filter string `form:"filter"`
}

// SyncResponse reports how many rows a sync persisted.
type SyncResponse struct {
	Count int `json:"count"`
}

// TransactionsResponse wraps the cached transaction list.
type TransactionsResponse struct {
	Data []models.Transaction `json:"data"`
}

// Sync pulls a page of provider transactions and caches it
// @Summary     Sync transactions
// @Description Fetch transactions from the provider and upsert them into the local cache
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       limit  query int    false "Maximum transactions to fetch" default(500)
// @Param       filter query string false "Provider filter expression (opaque passthrough)"
// @Success     200 {object} SyncResponse "Rows persisted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Not linked"
// @Failure     502 {object} ErrorResponse "Provider unavailable"
// @Router      /sync [post]
func (h *TransactionHandler) Sync(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultSyncLimit
	}

	count, err := h.syncService.Sync(c.Request.Context(), userID, req.Limit, req.Filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// ListRequest holds the optional cached-read filters.
type ListRequest struct {
	Direction string `form:"direction" binding:"omitempty,direction"`
}

// GetCachedTransactions returns the user's cached transactions
// @Summary     List cached transactions
// @Description Return the locally cached transactions for the authenticated user; no remote calls
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       direction query string false "Filter by direction (credit or debit)"
// @Success     200 {object} TransactionsResponse "Cached transactions, oldest first"
// @Failure     400 {object} ErrorResponse "Invalid direction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetCachedTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactions, err := h.transactionService.ListTransactionsByUser(userID, req.Direction)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transactions})
}

// ClearTransactions wipes the transaction cache for all users
// @Summary     Clear transaction cache
// @Description Delete every cached transaction across all users (administrative)
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SyncResponse "Rows deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [delete]
func (h *TransactionHandler) ClearTransactions(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.transactionService.ClearAllTransactions()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
