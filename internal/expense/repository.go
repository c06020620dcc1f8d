package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/balance"
	"github.com/divvyapp/divvy/internal/expense/split"
)

// Repository handles expense and split data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateExpense inserts a new expense with its splits in one transaction, so
// balance reads never see an expense without its splits.
func (r *Repository) CreateExpense(ctx context.Context, e *Expense, outputs []split.Output) (*ExpenseWithSplits, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (id, group_id, payer_id, description, amount, currency, split_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	e.ID = uuid.New()
	if err := tx.QueryRowContext(ctx, query,
		e.ID,
		e.GroupID,
		e.PayerID,
		e.Description,
		e.Amount,
		e.Currency,
		e.SplitType,
	).Scan(&e.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	splits, err := insertSplits(ctx, tx, e.ID, outputs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

// UpdateExpense replaces the expense row and regenerates its splits in one
// transaction.
func (r *Repository) UpdateExpense(ctx context.Context, e *Expense, outputs []split.Output) (*ExpenseWithSplits, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE expenses
		SET description = $2, amount = $3, currency = $4, split_type = $5
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, query,
		e.ID,
		e.Description,
		e.Amount,
		e.Currency,
		e.SplitType,
	).Scan(&e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM splits WHERE expense_id = $1`, e.ID); err != nil {
		return nil, fmt.Errorf("failed to clear splits: %w", err)
	}

	splits, err := insertSplits(ctx, tx, e.ID, outputs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense update: %w", err)
	}

	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID uuid.UUID, outputs []split.Output) ([]*Split, error) {
	query := `
		INSERT INTO splits (id, expense_id, member_id, amount, percentage)
		VALUES ($1, $2, $3, $4, $5)
	`

	splits := make([]*Split, len(outputs))
	for i, out := range outputs {
		s := &Split{
			ID:         uuid.New(),
			ExpenseID:  expenseID,
			MemberID:   out.MemberID,
			Amount:     out.Amount,
			Percentage: out.Percentage,
		}
		if _, err := tx.ExecContext(ctx, query, s.ID, s.ExpenseID, s.MemberID, s.Amount, s.Percentage); err != nil {
			return nil, fmt.Errorf("failed to create split: %w", err)
		}
		splits[i] = s
	}

	return splits, nil
}

// GetExpenseByID retrieves an expense by its ID, deleted or not
func (r *Repository) GetExpenseByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.currency, e.split_type, e.created_at, e.deleted_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.id = $1
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.SplitType,
		&expense.CreatedAt,
		&expense.DeletedAt,
		&expense.PayerUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// GetSplitsByExpenseID retrieves all splits for an expense
func (r *Repository) GetSplitsByExpenseID(ctx context.Context, expenseID uuid.UUID) ([]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.member_id, s.amount, s.percentage, u.username
		FROM splits s
		JOIN users u ON s.member_id = u.id
		WHERE s.expense_id = $1
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(
			&s.ID,
			&s.ExpenseID,
			&s.MemberID,
			&s.Amount,
			&s.Percentage,
			&s.MemberUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}

	return splits, rows.Err()
}

// ListByGroupID retrieves the non-deleted expenses for a group
func (r *Repository) ListByGroupID(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.currency, e.split_type, e.created_at, e.deleted_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.PayerID,
			&expense.Description,
			&expense.Amount,
			&expense.Currency,
			&expense.SplitType,
			&expense.CreatedAt,
			&expense.DeletedAt,
			&expense.PayerUsername,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, total, rows.Err()
}

// SoftDelete marks an expense as deleted so it drops out of balance
// computation while staying in history.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	return rowsAffected > 0, nil
}

// ExpensesForBalances loads a group's non-deleted expenses in the balance
// package's input form. Implements balance.ExpenseSource.
func (r *Repository) ExpensesForBalances(ctx context.Context, groupID uuid.UUID) ([]balance.Expense, error) {
	query := `
		SELECT e.id, e.payer_id, e.amount, e.currency, s.member_id, s.amount
		FROM expenses e
		JOIN splits s ON s.expense_id = e.id
		WHERE e.group_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.created_at, e.id, s.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for balances: %w", err)
	}
	defer rows.Close()

	var expenses []balance.Expense
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id, payerID, memberID uuid.UUID
			amount, splitAmount   int64
			currency              string
		)
		if err := rows.Scan(&id, &payerID, &amount, &currency, &memberID, &splitAmount); err != nil {
			return nil, fmt.Errorf("failed to scan expense for balances: %w", err)
		}

		i, ok := index[id]
		if !ok {
			i = len(expenses)
			index[id] = i
			expenses = append(expenses, balance.Expense{
				ID:       id,
				PayerID:  payerID,
				Amount:   amount,
				Currency: currency,
			})
		}
		expenses[i].ParticipantIDs = append(expenses[i].ParticipantIDs, memberID)
		expenses[i].Splits = append(expenses[i].Splits, balance.Split{MemberID: memberID, Amount: splitAmount})
	}

	return expenses, rows.Err()
}
