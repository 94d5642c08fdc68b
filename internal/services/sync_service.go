package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "dolfin/internal/errors"
	"dolfin/internal/models"
	"dolfin/internal/provider"
)

// syncService pulls provider transaction pages for a linked user, flattens
// them into the local shape, and hands them to the store's batch upsert.
// The read path (fetch) and write path (ingest) are separate so callers can
// inspect a page without caching side effects.
type syncService struct {
	users        UserServicer
	transactions TransactionServicer
	provider     provider.Client
}

// NewSyncService creates a new SyncServicer.
func NewSyncService(users UserServicer, transactions TransactionServicer, providerClient provider.Client) SyncServicer {
	return &syncService{users: users, transactions: transactions, provider: providerClient}
}

// FetchTransactions fetches and normalizes a page of provider transactions.
// It fails NOT_LINKED before any remote call when the user has no provider
// account. Nothing is persisted.
func (s *syncService) FetchTransactions(ctx context.Context, userID uint, limit int, filter string) ([]models.Transaction, error) {
	accountID, err := s.users.GetProviderAccountID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotLinked
		}
		return nil, err
	}

	records, err := s.provider.ListTransactions(ctx, accountID, limit, filter)
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(records))
	for _, record := range records {
		transaction, err := normalizeRecord(record)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}

// Ingest upserts normalized rows as transactions owned by the user.
// Replaying the same rows leaves the store in the same end state.
func (s *syncService) Ingest(userID uint, rows []models.Transaction) (int, error) {
	return s.transactions.UpsertTransactions(userID, rows)
}

// Sync fetches a page and ingests it. The remote call completes before the
// store transaction begins, so no lock is held across the network.
func (s *syncService) Sync(ctx context.Context, userID uint, limit int, filter string) (int, error) {
	rows, err := s.FetchTransactions(ctx, userID, limit, filter)
	if err != nil {
		return 0, err
	}
	return s.Ingest(userID, rows)
}

// normalizeRecord flattens a provider record into the local transaction
// shape. The mapping is structural: no field is reinterpreted, and the
// optional nested subClass becomes two nullable columns (both null when the
// provider sent none, both copied verbatim when present).
func normalizeRecord(record provider.Record) (models.Transaction, error) {
	amount, err := decimal.NewFromString(record.Amount)
	if err != nil {
		return models.Transaction{}, apperrors.Wrap(apperrors.ErrRemoteUnavailable,
			fmt.Errorf("transaction %s carried unparseable amount %q: %w", record.ID, record.Amount, err))
	}
	balance, err := decimal.NewFromString(record.Balance)
	if err != nil {
		return models.Transaction{}, apperrors.Wrap(apperrors.ErrRemoteUnavailable,
			fmt.Errorf("transaction %s carried unparseable balance %q: %w", record.ID, record.Balance, err))
	}

	transaction := models.Transaction{
		ID:          record.ID,
		Kind:        record.Type,
		Status:      record.Status,
		Description: record.Description,
		Amount:      amount,
		AccountRef:  record.Account,
		Balance:     balance,
		Direction:   record.Direction,
		Category:    record.Class,
		Institution: record.Institution,
		PostedAt:    record.PostDate,
	}
	if record.SubClass != nil {
		title := record.SubClass.Title
		code := record.SubClass.Code
		transaction.SubclassTitle = &title
		transaction.SubclassCode = &code
	}
	return transaction, nil
}
