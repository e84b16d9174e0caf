// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mkale/tripledger/internal/models"
	"github.com/mkale/tripledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite. One database file
// holds one trip's ledger.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// parseAmount converts a stored decimal string back to a decimal value.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse stored amount %q: %w", raw, err)
	}
	return amount, nil
}

// CreatePerson persists a new trip member.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	if person.CreatedAt == 0 {
		person.CreatedAt = time.Now().Unix()
	}
	if person.Role == "" {
		person.Role = models.RoleMember
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO people (id, name, role, budget_limit, created_at) VALUES (?, ?, ?, ?, ?)",
		person.ID, person.Name, string(person.Role), person.BudgetLimit.String(), person.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *SQLiteStore) GetPerson(ctx context.Context, personID string) (*models.Person, error) {
	person := &models.Person{}
	var role, limit string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, role, budget_limit, created_at FROM people WHERE id = ?",
		personID,
	).Scan(&person.ID, &person.Name, &role, &limit, &person.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("person %s: %w", personID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	person.Role = models.Role(role)
	if person.BudgetLimit, err = parseAmount(limit); err != nil {
		return nil, err
	}
	return person, nil
}

// ListPeople retrieves all trip members ordered by name.
func (s *SQLiteStore) ListPeople(ctx context.Context) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, role, budget_limit, created_at FROM people ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var person models.Person
		var role, limit string
		if err := rows.Scan(&person.ID, &person.Name, &role, &limit, &person.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		person.Role = models.Role(role)
		if person.BudgetLimit, err = parseAmount(limit); err != nil {
			return nil, err
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

// UpdateBudgetLimit sets a person's spending ceiling.
func (s *SQLiteStore) UpdateBudgetLimit(ctx context.Context, personID string, limit decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE people SET budget_limit = ? WHERE id = ?",
		limit.String(), personID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget limit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check budget update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("person %s: %w", personID, storage.ErrNotFound)
	}
	return nil
}

// DeletePerson removes a person unless the ledger still references them.
func (s *SQLiteStore) DeletePerson(ctx context.Context, personID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM people WHERE id = ?", personID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("person %s: %w", personID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check person existence: %w", err)
	}

	var refs int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (
			SELECT 1 FROM expenses WHERE paid_by = ?
			UNION ALL SELECT 1 FROM expense_splits WHERE person_id = ?
			UNION ALL SELECT 1 FROM settlements WHERE from_person = ? OR to_person = ?
		)`,
		personID, personID, personID, personID,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to check person references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("person %s: %w", personID, storage.ErrPersonReferenced)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", personID); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}
