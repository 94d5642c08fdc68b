// Package provider defines the remote banking-data provider capability
// consumed by the link and sync services, together with a concrete client
// for the Basiq HTTP API. The provider owns authoritative account and
// transaction data; this package only transports it.
package provider

import (
	"context"
	"time"
)

// Profile is the subset of user attributes the provider needs to create an
// account in its own namespace. Field names follow the provider wire schema.
type Profile struct {
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
}

// SubClass is the optional nested classification on a provider transaction.
type SubClass struct {
	Title string `json:"title"`
	Code  string `json:"code"`
}

// Record is a single transaction in the provider wire schema. Amounts are
// transported as strings and parsed during normalization.
type Record struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Account     string    `json:"account"`
	Balance     string    `json:"balance"`
	Direction   string    `json:"direction"`
	Class       string    `json:"class"`
	Institution string    `json:"institution"`
	PostDate    time.Time `json:"postDate"`
	SubClass    *SubClass `json:"subClass,omitempty"`
}

// Client is the capability surface this system consumes. Implementations
// must not retry internally; retry policy belongs to callers.
type Client interface {
	// CreateAccount registers a profile with the provider and returns the
	// provider-assigned account identifier.
	CreateAccount(ctx context.Context, profile Profile) (string, error)

	// CreateAuthLink returns a public authorization URL for the given
	// provider account. No presentation side effects.
	CreateAuthLink(ctx context.Context, providerAccountID string) (string, error)

	// ListTransactions fetches up to limit transactions for the given
	// provider account. filter is an opaque passthrough expression in the
	// provider's own filter grammar; it is not validated locally.
	ListTransactions(ctx context.Context, providerAccountID string, limit int, filter string) ([]Record, error)
}

// TokenSource supplies provider auth tokens. Implementations decide the
// refresh strategy; tests substitute a static source.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns the same token forever. Useful in tests and for
// short-lived tooling.
type StaticTokenSource string

// Token implements TokenSource.
func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}
