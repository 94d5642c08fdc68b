package services

import (
	"context"

	"dolfin/internal/provider"
)

// fakeProvider implements provider.Client for service tests and counts
// remote calls so tests can assert that link preconditions short-circuit
// before any network activity.
type fakeProvider struct {
	accountID string
	linkURL   string
	records   []provider.Record
	err       error

	createCalls int
	linkCalls   int
	listCalls   int

	// onCreateAccount runs after the remote account is "created", before
	// returning; used to simulate a user deleted mid-registration.
	onCreateAccount func()
}

func (f *fakeProvider) CreateAccount(ctx context.Context, profile provider.Profile) (string, error) {
	f.createCalls++
	if f.err != nil {
		return "", f.err
	}
	if f.onCreateAccount != nil {
		f.onCreateAccount()
	}
	return f.accountID, nil
}

func (f *fakeProvider) CreateAuthLink(ctx context.Context, providerAccountID string) (string, error) {
	f.linkCalls++
	if f.err != nil {
		return "", f.err
	}
	return f.linkURL, nil
}

func (f *fakeProvider) ListTransactions(ctx context.Context, providerAccountID string, limit int, filter string) ([]provider.Record, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}
