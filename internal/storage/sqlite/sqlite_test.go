package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkale/tripledger/internal/models"
	"github.com/mkale/tripledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addPerson(t *testing.T, store *SQLiteStore, name string, role models.Role) *models.Person {
	t.Helper()
	person := &models.Person{
		Name:        name,
		Role:        role,
		BudgetLimit: decimal.NewFromInt(1000),
	}
	if err := store.CreatePerson(context.Background(), person); err != nil {
		t.Fatalf("failed to create person %s: %v", name, err)
	}
	return person
}

func TestPersonRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := addPerson(t, store, "Alice", models.RoleOrganizer)
	if created.ID == "" {
		t.Fatal("expected store to assign an ID")
	}
	if created.CreatedAt == 0 {
		t.Fatal("expected store to assign CreatedAt")
	}

	got, err := store.GetPerson(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPerson failed: %v", err)
	}
	if got.Name != "Alice" || got.Role != models.RoleOrganizer {
		t.Errorf("got %+v", got)
	}
	if !got.BudgetLimit.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("budget limit = %s, want 1000", got.BudgetLimit)
	}
}

func TestGetPerson_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetPerson(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBudgetLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	person := addPerson(t, store, "Bob", models.RoleMember)
	limit := decimal.RequireFromString("250.50")
	if err := store.UpdateBudgetLimit(ctx, person.ID, limit); err != nil {
		t.Fatalf("UpdateBudgetLimit failed: %v", err)
	}

	got, err := store.GetPerson(ctx, person.ID)
	if err != nil {
		t.Fatalf("GetPerson failed: %v", err)
	}
	if !got.BudgetLimit.Equal(limit) {
		t.Errorf("budget limit = %s, want 250.50", got.BudgetLimit)
	}

	if err := store.UpdateBudgetLimit(ctx, "missing", limit); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := addPerson(t, store, "Alice", models.RoleMember)
	bob := addPerson(t, store, "Bob", models.RoleMember)

	expense := &models.Expense{
		Description: "Dinner",
		Amount:      decimal.RequireFromString("84.30"),
		PaidBy:      alice.ID,
		Date:        "2026-07-14",
		Category:    models.CategoryFood,
		EventID:     "ev1",
		Splits: []models.Split{
			{PersonID: alice.ID, Amount: decimal.RequireFromString("42.15")},
			{PersonID: bob.ID, Amount: decimal.RequireFromString("42.15")},
		},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	got, err := store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Description != "Dinner" || got.Category != models.CategoryFood || got.EventID != "ev1" {
		t.Errorf("got %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("84.30")) {
		t.Errorf("amount = %s, want 84.30", got.Amount)
	}
	if len(got.Splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(got.Splits))
	}
	if !got.SplitTotal().Equal(got.Amount) {
		t.Errorf("splits sum to %s, want %s", got.SplitTotal(), got.Amount)
	}
}

func TestExpense_NoEvent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := addPerson(t, store, "Alice", models.RoleMember)
	expense := &models.Expense{
		Description: "Taxi",
		Amount:      decimal.NewFromInt(20),
		PaidBy:      alice.ID,
		Date:        "2026-07-14",
		Splits:      []models.Split{{PersonID: alice.ID, Amount: decimal.NewFromInt(20)}},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	got, err := store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.EventID != "" {
		t.Errorf("event id = %q, want empty", got.EventID)
	}
	// Empty category defaults on insert.
	if got.Category != models.CategoryOther {
		t.Errorf("category = %s, want other", got.Category)
	}
}

func TestDeleteExpense_CascadesSplits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := addPerson(t, store, "Alice", models.RoleMember)
	expense := &models.Expense{
		Description: "Snacks",
		Amount:      decimal.NewFromInt(5),
		PaidBy:      alice.ID,
		Date:        "2026-07-15",
		Splits:      []models.Split{{PersonID: alice.ID, Amount: decimal.NewFromInt(5)}},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := store.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var count int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM expense_splits WHERE expense_id = ?", expense.ID).Scan(&count); err != nil {
		t.Fatalf("failed to count splits: %v", err)
	}
	if count != 0 {
		t.Errorf("expected splits to cascade, found %d rows", count)
	}

	if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestDeletePerson_Referenced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := addPerson(t, store, "Alice", models.RoleMember)
	expense := &models.Expense{
		Description: "Museum",
		Amount:      decimal.NewFromInt(12),
		PaidBy:      alice.ID,
		Date:        "2026-07-16",
		Splits:      []models.Split{{PersonID: alice.ID, Amount: decimal.NewFromInt(12)}},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := store.DeletePerson(ctx, alice.ID); !errors.Is(err, storage.ErrPersonReferenced) {
		t.Errorf("expected ErrPersonReferenced, got %v", err)
	}

	// After the expense is gone the person can be removed.
	if err := store.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if err := store.DeletePerson(ctx, alice.ID); err != nil {
		t.Errorf("DeletePerson failed: %v", err)
	}
}

func TestSettlementLifecyclePersistence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := addPerson(t, store, "Alice", models.RoleMember)
	bob := addPerson(t, store, "Bob", models.RoleMember)

	settlement := &models.SettlementRecord{
		From:   bob.ID,
		To:     alice.ID,
		Amount: decimal.NewFromInt(50),
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	if settlement.Status != models.SettlementPending {
		t.Errorf("status = %s, want pending", settlement.Status)
	}

	if err := store.UpdateSettlementStatus(ctx, settlement.ID, models.SettlementCompleted, 1234); err != nil {
		t.Fatalf("UpdateSettlementStatus failed: %v", err)
	}

	got, err := store.GetSettlement(ctx, settlement.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if got.Status != models.SettlementCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.ResolvedAt != 1234 {
		t.Errorf("resolved_at = %d, want 1234", got.ResolvedAt)
	}
	if !got.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("amount = %s, want 50", got.Amount)
	}

	settlements, err := store.ListSettlements(ctx)
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(settlements) != 1 {
		t.Errorf("got %d settlements, want 1", len(settlements))
	}

	if err := store.UpdateSettlementStatus(ctx, "missing", models.SettlementDeclined, 0); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
