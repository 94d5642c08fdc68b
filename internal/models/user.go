package models

import "time"

// User represents a local DolFin user. ProviderAccountID is null until the
// user has been registered with the remote banking-data provider; once set
// it is never changed again.
type User struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	Email             string  `gorm:"uniqueIndex;not null" json:"email"`
	Mobile            string  `json:"mobile"`
	FirstName         string  `json:"first_name"`
	MiddleName        string  `json:"middle_name"`
	LastName          string  `json:"last_name"`
	PasswordHash      string  `gorm:"not null" json:"-"`
	ProviderAccountID *string `gorm:"uniqueIndex" json:"provider_account_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Deleting a user removes every transaction it owns.
	Transactions []Transaction `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"transactions,omitempty"`
}
