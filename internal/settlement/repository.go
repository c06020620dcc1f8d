package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/balance"
)

// Repository handles settlement data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new settlement into the database
func (r *Repository) Create(ctx context.Context, s *Settlement) (*Settlement, error) {
	query := `
		INSERT INTO settlements (id, group_id, payer_id, payee_id, amount, currency, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	s.ID = uuid.New()
	if err := r.db.QueryRowContext(ctx, query,
		s.ID,
		s.GroupID,
		s.PayerID,
		s.PayeeID,
		s.Amount,
		s.Currency,
		s.Note,
		s.CreatedBy,
	).Scan(&s.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	return s, nil
}

// GetByID retrieves a settlement by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount, s.currency, s.note, s.created_by, s.created_at,
		       payer.username, payee.username
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.id = $1
	`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.GroupID,
		&s.PayerID,
		&s.PayeeID,
		&s.Amount,
		&s.Currency,
		&s.Note,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.PayerUsername,
		&s.PayeeUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return s, nil
}

// ListByGroupID retrieves the settlements for a group
func (r *Repository) ListByGroupID(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Settlement, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM settlements WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	query := `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount, s.currency, s.note, s.created_by, s.created_at,
		       payer.username, payee.username
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.group_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(
			&s.ID,
			&s.GroupID,
			&s.PayerID,
			&s.PayeeID,
			&s.Amount,
			&s.Currency,
			&s.Note,
			&s.CreatedBy,
			&s.CreatedAt,
			&s.PayerUsername,
			&s.PayeeUsername,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}

	return settlements, total, rows.Err()
}

// Update replaces a settlement's amount, currency and note
func (r *Repository) Update(ctx context.Context, s *Settlement) (*Settlement, error) {
	query := `
		UPDATE settlements
		SET amount = $2, currency = $3, note = $4
		WHERE id = $1
		RETURNING created_at
	`

	if err := r.db.QueryRowContext(ctx, query, s.ID, s.Amount, s.Currency, s.Note).Scan(&s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update settlement: %w", err)
	}

	return s, nil
}

// Delete removes a settlement. Settlements are corrections of record, so a
// delete is hard: the row is gone and balances recompute without it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM settlements WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete settlement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete settlement: %w", err)
	}
	return rowsAffected > 0, nil
}

// SettlementsForBalances loads a group's settlements in the balance package's
// input form. Implements balance.SettlementSource.
func (r *Repository) SettlementsForBalances(ctx context.Context, groupID uuid.UUID) ([]balance.Settlement, error) {
	query := `
		SELECT id, payer_id, payee_id, amount, currency
		FROM settlements
		WHERE group_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements for balances: %w", err)
	}
	defer rows.Close()

	var settlements []balance.Settlement
	for rows.Next() {
		var s balance.Settlement
		if err := rows.Scan(&s.ID, &s.PayerID, &s.PayeeID, &s.Amount, &s.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan settlement for balances: %w", err)
		}
		settlements = append(settlements, s)
	}

	return settlements, rows.Err()
}
