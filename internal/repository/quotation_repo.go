package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

const quotationColumns = `quotation_number, vendor_id, vendor_name, client_name, client_details,
	items, discount, total, payment_terms, date, created_at, updated_at`

// QuotationRepository is the remote quotation store backed by PostgreSQL.
type QuotationRepository struct {
	db *sqlx.DB
}

// NewQuotationRepository creates a new QuotationRepository.
func NewQuotationRepository(db *sqlx.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// Upsert inserts the quotation or fully replaces the row with the same
// quotation number.
func (r *QuotationRepository) Upsert(ctx context.Context, q *models.Quotation) error {
	query := `INSERT INTO quotations (quotation_number, vendor_id, vendor_name, client_name, client_details,
	              items, discount, total, payment_terms, date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (quotation_number) DO UPDATE SET
	              vendor_id = EXCLUDED.vendor_id,
	              vendor_name = EXCLUDED.vendor_name,
	              client_name = EXCLUDED.client_name,
	              client_details = EXCLUDED.client_details,
	              items = EXCLUDED.items,
	              discount = EXCLUDED.discount,
	              total = EXCLUDED.total,
	              payment_terms = EXCLUDED.payment_terms,
	              date = EXCLUDED.date,
	              updated_at = NOW()
	          RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		q.QuotationNumber,
		q.VendorID,
		q.VendorName,
		q.ClientName,
		q.ClientDetails,
		q.Items,
		q.Discount,
		q.Total,
		q.PaymentTerms,
		q.Date,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

// List returns all quotations, newest first.
func (r *QuotationRepository) List(ctx context.Context) ([]models.Quotation, error) {
	out := []models.Quotation{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+quotationColumns+` FROM quotations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the quotation with the given number.
func (r *QuotationRepository) Get(ctx context.Context, number string) (*models.Quotation, error) {
	var q models.Quotation
	err := r.db.GetContext(ctx, &q, `SELECT `+quotationColumns+` FROM quotations WHERE quotation_number = $1`, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrQuotationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Delete removes a quotation. It returns ErrQuotationNotFound when nothing
// was deleted.
func (r *QuotationRepository) Delete(ctx context.Context, number string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quotations WHERE quotation_number = $1`, number)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrQuotationNotFound
	}
	return nil
}
