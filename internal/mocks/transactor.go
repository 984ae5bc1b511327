package mocks

import (
	"context"

	"github.com/phrazzld/focal-api/internal/store"
)

// Transactor is a passthrough store.Transactor for tests backed by in-memory
// stores. It invokes the function with a nil transaction; the in-memory
// stores' WithTx return themselves, so no real transaction is needed.
//
// It offers no rollback: writes made before a failure remain visible. Tests
// asserting rollback behavior should check the specific writes instead.
type Transactor struct {
	// BeginErr forces InTransaction to fail before invoking the function.
	BeginErr error

	// Calls counts how many transactions were started.
	Calls int
}

// NewTransactor creates a passthrough Transactor.
func NewTransactor() *Transactor {
	return &Transactor{}
}

// Ensure Transactor implements store.Transactor interface
var _ store.Transactor = (*Transactor)(nil)

// InTransaction implements store.Transactor.InTransaction
func (t *Transactor) InTransaction(ctx context.Context, fn store.TxFn) error {
	if t.BeginErr != nil {
		return t.BeginErr
	}
	t.Calls++
	return fn(ctx, nil)
}
