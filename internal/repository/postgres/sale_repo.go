package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/prn-tf/salestracker/internal/domain"
	"github.com/prn-tf/salestracker/internal/repository"
)

// saleRepository implements repository.SaleRepository for PostgreSQL.
type saleRepository struct {
	db *DB
}

// NewSaleRepository creates a new PostgreSQL sale repository.
func NewSaleRepository(db *DB) repository.SaleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `id, user_id, title, description, price, status,
	customer_name, customer_email, customer_phone, created_at, updated_at`

// escapeLike escapes the LIKE wildcards in a search term so the term
// matches literally. Without it a search for "100%" would match any
// row containing "100".
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Create creates a new sale.
func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (user_id, title, description, price, status,
			customer_name, customer_email, customer_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		sale.UserID,
		sale.Title,
		sale.Description,
		sale.Price,
		string(sale.Status),
		sale.CustomerName,
		sale.CustomerEmail,
		sale.CustomerPhone,
		sale.CreatedAt,
		sale.UpdatedAt,
	).Scan(&sale.ID)

	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

// getBy retrieves a single sale with the given WHERE clause and arguments.
func (r *saleRepository) getBy(ctx context.Context, where string, args ...any) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE ` + where

	sale := &domain.Sale{}
	var status string
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&sale.ID,
		&sale.UserID,
		&sale.Title,
		&sale.Description,
		&sale.Price,
		&status,
		&sale.CustomerName,
		&sale.CustomerEmail,
		&sale.CustomerPhone,
		&sale.CreatedAt,
		&sale.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	sale.Status = domain.SaleStatus(status)
	return sale, nil
}

// GetByID retrieves a sale by ID regardless of owner.
func (r *saleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	return r.getBy(ctx, `id = $1`, id)
}

// GetByIDForOwner retrieves a sale by ID only if it is owned by ownerID.
func (r *saleRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Sale, error) {
	return r.getBy(ctx, `id = $1 AND user_id = $2`, id, ownerID)
}

// Update persists all mutable fields of the sale.
// The owner and creation timestamp are never written.
func (r *saleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	query := `
		UPDATE sales
		SET title = $1, description = $2, price = $3, status = $4,
			customer_name = $5, customer_email = $6, customer_phone = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		sale.Title,
		sale.Description,
		sale.Price,
		string(sale.Status),
		sale.CustomerName,
		sale.CustomerEmail,
		sale.CustomerPhone,
		sale.UpdatedAt,
		sale.ID,
		sale.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete deletes a sale by ID, scoped to the owner.
func (r *saleRepository) Delete(ctx context.Context, id, ownerID int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sales WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByOwner returns the owner's sales matching the filter,
// ordered by creation time descending.
func (r *saleRepository) ListByOwner(ctx context.Context, ownerID int64, filter repository.SaleFilter) ([]*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE user_id = $1`
	args := []any{ownerID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (title ILIKE $%d ESCAPE '\'
			OR description ILIKE $%d ESCAPE '\'
			OR customer_name ILIKE $%d ESCAPE '\'
			OR customer_email ILIKE $%d ESCAPE '\')`, n, n, n, n)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var sales []*domain.Sale
	for rows.Next() {
		sale := &domain.Sale{}
		var status string
		err := rows.Scan(
			&sale.ID,
			&sale.UserID,
			&sale.Title,
			&sale.Description,
			&sale.Price,
			&status,
			&sale.CustomerName,
			&sale.CustomerEmail,
			&sale.CustomerPhone,
			&sale.CreatedAt,
			&sale.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sale.Status = domain.SaleStatus(status)
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

// StatsByOwner returns aggregate statistics over the owner's sales.
// Revenue counts completed sales only; COALESCE keeps it zero when there are none.
func (r *saleRepository) StatsByOwner(ctx context.Context, ownerID int64) (*domain.SaleStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(price) FILTER (WHERE status = 'completed'), 0)::float8,
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM sales
		WHERE user_id = $1
	`

	stats := &domain.SaleStats{}
	err := r.db.Pool.QueryRow(ctx, query, ownerID).Scan(
		&stats.TotalSales,
		&stats.TotalRevenue,
		&stats.PendingSales,
		&stats.CompletedSales,
		&stats.CancelledSales,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sale stats: %w", err)
	}

	return stats, nil
}

// Ensure saleRepository implements repository.SaleRepository.
var _ repository.SaleRepository = (*saleRepository)(nil)
