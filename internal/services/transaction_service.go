package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "dolfin/internal/errors"
	"dolfin/internal/models"
)

// transactionService handles the transaction side of the local store.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// UpsertTransactions persists a batch of transactions for a user in a single
// transactional scope. Rows are keyed by the provider-issued id: replaying a
// row replaces it rather than duplicating or failing, so ingesting the same
// page twice leaves the store unchanged. A failure anywhere in the batch
// rolls the whole batch back.
func (s *transactionService) UpsertTransactions(userID uint, rows []models.Transaction) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := make([]models.Transaction, len(rows))
	copy(batch, rows)
	unique := make(map[string]struct{}, len(batch))
	for i := range batch {
		batch[i].UserID = userID
		unique[batch[i].ID] = struct{}{}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&batch).Error
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	return len(unique), nil
}

// ListTransactionsByUser returns the cached transactions owned by the user,
// oldest first, optionally restricted to one direction. A user with nothing
// cached gets an empty slice, not an error.
func (s *transactionService) ListTransactionsByUser(userID uint, direction string) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	query := s.db.Where("user_id = ?", userID)
	if direction != "" {
		query = query.Where("direction = ?", direction)
	}
	if err := query.Order("posted_at").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return transactions, nil
}

// ClearAllTransactions deletes every cached transaction across all users.
// Administrative operation; not part of the normal sync flow.
func (s *transactionService) ClearAllTransactions() (int64, error) {
	result := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	return result.RowsAffected, nil
}
