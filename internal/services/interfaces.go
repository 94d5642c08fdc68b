package services

import (
	"context"

	"dolfin/internal/models"
	"dolfin/internal/provider"
)

// UserServicer defines the contract for the user side of the local store.
type UserServicer interface {
	CreateUser(email, mobile, firstName, middleName, lastName, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	GetUserProfile(id uint) (*provider.Profile, error)
	SetProviderAccountID(id uint, providerAccountID string) error
	GetProviderAccountID(id uint) (string, error)
	DeleteUser(id uint) error
}

// TransactionServicer defines the contract for the transaction side of the
// local store, including the cache read path.
type TransactionServicer interface {
	UpsertTransactions(userID uint, rows []models.Transaction) (int, error)
	ListTransactionsByUser(userID uint, direction string) ([]models.Transaction, error)
	ClearAllTransactions() (int64, error)
}

// LinkServicer owns the one-time registration of a local user against the
// provider's account namespace.
type LinkServicer interface {
	RegisterProviderIdentity(ctx context.Context, userID uint) (string, error)
	BuildAccountLinkURL(ctx context.Context, userID uint) (string, error)
}

// SyncServicer pulls provider transactions for a linked user, normalizes
// them, and persists them idempotently.
type SyncServicer interface {
	FetchTransactions(ctx context.Context, userID uint, limit int, filter string) ([]models.Transaction, error)
	Ingest(userID uint, rows []models.Transaction) (int, error)
	Sync(ctx context.Context, userID uint, limit int, filter string) (int, error)
}
