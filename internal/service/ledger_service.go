// Package service wires the settlement engine to storage and owns the
// settlement lifecycle: propose by the debtor, confirm or decline by the
// receiving creditor. Balances and suggested transfers are recomputed
// from the stored snapshot on every read; nothing derived is cached.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mkale/tripledger/internal/calculator"
	"github.com/mkale/tripledger/internal/metrics"
	"github.com/mkale/tripledger/internal/models"
	"github.com/mkale/tripledger/internal/storage"
)

// splitTolerance is how far the split sum may drift from the expense
// amount before the expense is rejected. Matches the engine's
// settlement epsilon.
var splitTolerance = decimal.New(1, -2)

// LedgerService exposes one trip's shared ledger: members, expenses,
// derived balances and transfers, and the settlement lifecycle.
type LedgerService struct {
	store    storage.Store
	notifier Notifier
	validate *validator.Validate
}

// NewLedgerService creates a LedgerService over the given store. A nil
// notifier falls back to LogNotifier.
func NewLedgerService(store storage.Store, notifier Notifier) *LedgerService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &LedgerService{
		store:    store,
		notifier: notifier,
		validate: validator.New(),
	}
}

// AddMember adds a person to the trip.
func (s *LedgerService) AddMember(ctx context.Context, name string, role models.Role, budgetLimit decimal.Decimal) (*models.Person, error) {
	person := &models.Person{
		Name:        name,
		Role:        role,
		BudgetLimit: budgetLimit,
	}
	if err := s.validate.Struct(person); err != nil {
		return nil, fmt.Errorf("invalid member: %w", err)
	}
	if budgetLimit.IsNegative() {
		return nil, fmt.Errorf("budget limit must not be negative")
	}
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return nil, err
	}
	slog.Info("member added", "person_id", person.ID, "name", person.Name, "role", person.Role)
	return person, nil
}

// ListMembers returns all trip members.
func (s *LedgerService) ListMembers(ctx context.Context) ([]models.Person, error) {
	return s.store.ListPeople(ctx)
}

// UpdateBudgetLimit sets a member's spending ceiling. Organizers may
// update anyone; members may only update their own.
func (s *LedgerService) UpdateBudgetLimit(ctx context.Context, actorID, personID string, limit decimal.Decimal) error {
	if limit.IsNegative() {
		return fmt.Errorf("budget limit must not be negative")
	}
	actor, err := s.store.GetPerson(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleOrganizer && actor.ID != personID {
		return fmt.Errorf("only an organizer may edit another member's budget: %w", ErrNotAuthorized)
	}
	return s.store.UpdateBudgetLimit(ctx, personID, limit)
}

// AddExpense validates and records an expense. The payer and every
// split person must be trip members, and the split amounts must sum to
// the expense amount within one cent.
func (s *LedgerService) AddExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	expense.Category = models.ParseCategory(string(expense.Category))
	if err := s.validate.Struct(expense); err != nil {
		return nil, fmt.Errorf("invalid expense: %w", err)
	}
	if !expense.Amount.IsPositive() {
		return nil, fmt.Errorf("expense amount must be positive")
	}
	for _, split := range expense.Splits {
		if split.Amount.IsNegative() {
			return nil, fmt.Errorf("split amount for %s must not be negative", split.PersonID)
		}
	}

	drift := expense.SplitTotal().Sub(expense.Amount).Abs()
	if drift.GreaterThan(splitTolerance) {
		return nil, fmt.Errorf("splits sum to %s but expense amount is %s",
			expense.SplitTotal().StringFixed(2), expense.Amount.StringFixed(2))
	}

	members, err := s.memberSet(ctx)
	if err != nil {
		return nil, err
	}
	if !members[expense.PaidBy] {
		return nil, fmt.Errorf("payer %s: %w", expense.PaidBy, storage.ErrNotFound)
	}
	for _, split := range expense.Splits {
		if !members[split.PersonID] {
			return nil, fmt.Errorf("split person %s: %w", split.PersonID, storage.ErrNotFound)
		}
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}
	metrics.ExpensesCreated.Inc()
	slog.Info("expense added",
		"expense_id", expense.ID,
		"amount", expense.Amount.StringFixed(2),
		"paid_by", expense.PaidBy,
		"category", expense.Category,
		"splits", len(expense.Splits),
	)
	return expense, nil
}

// ListExpenses returns all expenses with splits, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// DeleteExpense removes an expense. Only the payer or an organizer may
// delete it; the expense drops out of all future balance computations.
func (s *LedgerService) DeleteExpense(ctx context.Context, actorID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	actor, err := s.store.GetPerson(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.ID != expense.PaidBy && actor.Role != models.RoleOrganizer {
		return fmt.Errorf("only the payer or an organizer may delete an expense: %w", ErrNotAuthorized)
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	slog.Info("expense deleted", "expense_id", expenseID, "actor", actorID)
	return nil
}

// Balances recomputes the net balance per person from the current
// snapshot of expenses and completed settlements.
func (s *LedgerService) Balances(ctx context.Context) (calculator.BalanceVector, error) {
	people, expenses, settlements, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	metrics.BalanceRecomputations.Inc()
	balances, err := calculator.AggregateBalances(people, expenses, settlements)
	if err != nil {
		metrics.LedgerImbalances.Inc()
		slog.Error("ledger integrity violation", "error", err)
		return nil, err
	}
	return balances, nil
}

// SuggestedTransfers recomputes balances and minimizes them into a
// transfer list. On an imbalanced ledger the partial transfer list is
// returned together with the *calculator.ImbalanceError so the caller
// can decide whether to display it.
func (s *LedgerService) SuggestedTransfers(ctx context.Context) ([]calculator.Transfer, error) {
	balances, err := s.Balances(ctx)
	if err != nil {
		return nil, err
	}

	transfers, err := calculator.MinimizeTransfers(balances)
	metrics.SuggestedTransfers.Observe(float64(len(transfers)))
	if err != nil {
		var imbalance *calculator.ImbalanceError
		if errors.As(err, &imbalance) {
			metrics.LedgerImbalances.Inc()
			slog.Warn("ledger does not sum to zero",
				"residual", imbalance.Residual.StringFixed(2))
		}
		return transfers, err
	}
	return transfers, nil
}

// Summary holds the aggregate figures for budget displays.
type Summary struct {
	// TotalSpent is the sum of all expense amounts.
	TotalSpent decimal.Decimal

	// TripBudget is the sum of all members' budget limits.
	TripBudget decimal.Decimal

	// PersonSpending maps person ID to their consumed share.
	PersonSpending map[string]decimal.Decimal

	// BudgetProgress maps person ID to spent/limit.
	BudgetProgress map[string]decimal.Decimal

	// CategoryTotals maps category to the amount spent in it.
	CategoryTotals map[models.Category]decimal.Decimal

	// EventTotals maps itinerary event ID (empty = unlinked) to the
	// amount spent under it.
	EventTotals map[string]decimal.Decimal
}

// Summarize computes the display summary from the current snapshot.
func (s *LedgerService) Summarize(ctx context.Context) (*Summary, error) {
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	spending := calculator.PersonSpending(people, expenses)
	progress := make(map[string]decimal.Decimal, len(people))
	tripBudget := decimal.Zero
	for _, p := range people {
		progress[p.ID] = calculator.BudgetProgress(p.BudgetLimit, spending[p.ID])
		tripBudget = tripBudget.Add(p.BudgetLimit)
	}

	return &Summary{
		TotalSpent:     calculator.TotalSpent(expenses),
		TripBudget:     tripBudget,
		PersonSpending: spending,
		BudgetProgress: progress,
		CategoryTotals: calculator.CategoryTotals(expenses),
		EventTotals:    calculator.EventTotals(expenses),
	}, nil
}

// ProposeSettlement records a real-world payment from the acting debtor
// to the given creditor, in pending state until the creditor confirms.
func (s *LedgerService) ProposeSettlement(ctx context.Context, actorID, toID string, amount decimal.Decimal) (*models.SettlementRecord, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("settlement amount must be positive")
	}
	if actorID == toID {
		return nil, fmt.Errorf("cannot settle with yourself")
	}
	if _, err := s.store.GetPerson(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPerson(ctx, toID); err != nil {
		return nil, err
	}

	settlement := &models.SettlementRecord{
		From:   actorID,
		To:     toID,
		Amount: amount,
		Status: models.SettlementPending,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}

	metrics.Settlements.WithLabelValues(string(models.SettlementPending)).Inc()
	s.notifier.SettlementProposed(ctx, settlement)
	return settlement, nil
}

// ConfirmSettlement marks a pending settlement completed. Only the
// receiving creditor may confirm; the amount then nets out of both
// parties' balances on the next recomputation.
func (s *LedgerService) ConfirmSettlement(ctx context.Context, actorID, settlementID string) (*models.SettlementRecord, error) {
	return s.resolveSettlement(ctx, actorID, settlementID, models.SettlementCompleted)
}

// DeclineSettlement marks a pending settlement declined. Only the
// receiving creditor may decline; the record is kept for the audit
// trail but never affects balances.
func (s *LedgerService) DeclineSettlement(ctx context.Context, actorID, settlementID string) (*models.SettlementRecord, error) {
	return s.resolveSettlement(ctx, actorID, settlementID, models.SettlementDeclined)
}

func (s *LedgerService) resolveSettlement(ctx context.Context, actorID, settlementID string, status models.SettlementStatus) (*models.SettlementRecord, error) {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.To != actorID {
		return nil, fmt.Errorf("only the receiving party may resolve a settlement: %w", ErrNotAuthorized)
	}
	if settlement.Status.Terminal() {
		return nil, fmt.Errorf("settlement %s is %s: %w", settlementID, settlement.Status, ErrInvalidTransition)
	}

	resolvedAt := time.Now().Unix()
	if err := s.store.UpdateSettlementStatus(ctx, settlementID, status, resolvedAt); err != nil {
		return nil, err
	}
	settlement.Status = status
	settlement.ResolvedAt = resolvedAt

	metrics.Settlements.WithLabelValues(string(status)).Inc()
	if status == models.SettlementCompleted {
		s.notifier.SettlementConfirmed(ctx, settlement)
	} else {
		s.notifier.SettlementDeclined(ctx, settlement)
	}
	return settlement, nil
}

// SettlementHistory returns all settlement records, newest first.
func (s *LedgerService) SettlementHistory(ctx context.Context) ([]models.SettlementRecord, error) {
	return s.store.ListSettlements(ctx)
}

// snapshot loads the causally consistent inputs for one recomputation.
func (s *LedgerService) snapshot(ctx context.Context) ([]models.Person, []models.Expense, []models.SettlementRecord, error) {
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	settlements, err := s.store.ListSettlements(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return people, expenses, settlements, nil
}

// memberSet returns the current member IDs as a lookup set.
func (s *LedgerService) memberSet(ctx context.Context) (map[string]bool, error) {
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(people))
	for _, p := range people {
		set[p.ID] = true
	}
	return set, nil
}
