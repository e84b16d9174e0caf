// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mkale/tripledger/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrPersonReferenced is returned when deleting a person that expenses
// or settlements still reference.
var ErrPersonReferenced = errors.New("person is still referenced by the ledger")

// Store defines the persistence operations one trip's ledger needs.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Implementations must return causally consistent snapshots: a listed
// expense always comes with all of its splits.
type Store interface {
	// CreatePerson persists a new trip member. ID and CreatedAt are
	// assigned by the store when unset.
	CreatePerson(ctx context.Context, person *models.Person) error

	// GetPerson retrieves a person by ID.
	GetPerson(ctx context.Context, personID string) (*models.Person, error)

	// ListPeople retrieves all trip members ordered by name.
	ListPeople(ctx context.Context) ([]models.Person, error)

	// UpdateBudgetLimit sets a person's spending ceiling.
	UpdateBudgetLimit(ctx context.Context, personID string, limit decimal.Decimal) error

	// DeletePerson removes a person. Fails with ErrPersonReferenced
	// while any expense or settlement references them.
	DeletePerson(ctx context.Context, personID string) error

	// CreateExpense persists a new expense with its splits. ID and
	// CreatedAt are assigned by the store when unset.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID, including its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses retrieves all expenses with splits, newest first.
	ListExpenses(ctx context.Context) ([]models.Expense, error)

	// DeleteExpense removes an expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement persists a new settlement record. ID, CreatedAt
	// and the pending status are assigned by the store when unset.
	CreateSettlement(ctx context.Context, settlement *models.SettlementRecord) error

	// GetSettlement retrieves a settlement record by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error)

	// ListSettlements retrieves all settlement records, newest first.
	ListSettlements(ctx context.Context) ([]models.SettlementRecord, error)

	// UpdateSettlementStatus transitions a settlement record to the
	// given status and stamps the resolution time.
	UpdateSettlementStatus(ctx context.Context, settlementID string, status models.SettlementStatus, resolvedAt int64) error

	// Close releases any resources held by the store.
	Close() error
}
