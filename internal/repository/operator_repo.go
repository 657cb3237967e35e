package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/balloon_quote/internal/models"
)

// OperatorRepository provides data access for the operators table.
type OperatorRepository struct {
	db *sqlx.DB
}

func NewOperatorRepository(db *sqlx.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// GetByEmail returns sql.ErrNoRows when no operator uses the address.
func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var op models.Operator
	err := r.db.GetContext(ctx, &op, `
		SELECT id, email, password_hash, name, is_active, last_login_at, created_at, updated_at
		FROM operators
		WHERE email = $1
	`, email)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *OperatorRepository) Create(ctx context.Context, op *models.Operator) error {
	query := `
		INSERT INTO operators (email, password_hash, name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query, op.Email, op.PasswordHash, op.Name, op.IsActive).
		Scan(&op.ID, &op.CreatedAt, &op.UpdatedAt)
}

func (r *OperatorRepository) TouchLastLogin(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE operators SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
