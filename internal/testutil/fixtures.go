package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"dolfin/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an unlinked user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates an unlinked user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Mobile:       "+61400000000",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateLinkedTestUser creates a user already linked to a provider account.
func CreateLinkedTestUser(t *testing.T, db *gorm.DB, providerAccountID string) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("provider_account_id", providerAccountID).Error; err != nil {
		t.Fatalf("failed to link test user: %v", err)
	}
	user.ProviderAccountID = &providerAccountID
	return user
}

// CreateTestTransaction persists a cached transaction with the given
// provider id and amount for the user.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, id, amount string) *models.Transaction {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("invalid test amount %q: %v", amount, err)
	}

	tx := &models.Transaction{
		ID:          id,
		Kind:        "transaction",
		Status:      "posted",
		Description: fmt.Sprintf("Test transaction %s", id),
		Amount:      amt,
		AccountRef:  "acc-1",
		Balance:     amt,
		Direction:   models.DirectionDebit,
		Category:    "payment",
		Institution: "AU00000",
		PostedAt:    time.Now().UTC().Truncate(time.Second),
		UserID:      userID,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
