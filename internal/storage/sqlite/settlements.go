package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkale/tripledger/internal/models"
	"github.com/mkale/tripledger/internal/storage"
)

// CreateSettlement persists a new settlement record.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.SettlementRecord) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, from_person, to_person, amount, status, created_at, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.From, settlement.To, settlement.Amount.String(),
		string(settlement.Status), settlement.CreatedAt, settlement.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement record by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error) {
	settlement := &models.SettlementRecord{}
	var amount, status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, from_person, to_person, amount, status, created_at, resolved_at
		 FROM settlements WHERE id = ?`,
		settlementID,
	).Scan(&settlement.ID, &settlement.From, &settlement.To, &amount, &status,
		&settlement.CreatedAt, &settlement.ResolvedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if settlement.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	settlement.Status = models.SettlementStatus(status)
	return settlement, nil
}

// ListSettlements retrieves all settlement records, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context) ([]models.SettlementRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_person, to_person, amount, status, created_at, resolved_at
		 FROM settlements ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.SettlementRecord
	for rows.Next() {
		var settlement models.SettlementRecord
		var amount, status string

		if err := rows.Scan(&settlement.ID, &settlement.From, &settlement.To, &amount, &status,
			&settlement.CreatedAt, &settlement.ResolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if settlement.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		settlement.Status = models.SettlementStatus(status)
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// UpdateSettlementStatus transitions a settlement record and stamps the
// resolution time. State-machine checks live in the service layer; the
// store only guarantees the row exists.
func (s *SQLiteStore) UpdateSettlementStatus(ctx context.Context, settlementID string, status models.SettlementStatus, resolvedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET status = ?, resolved_at = ? WHERE id = ?",
		string(status), resolvedAt, settlementID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settlement update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	return nil
}
