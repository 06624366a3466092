package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/salestracker/internal/domain"
	"github.com/prn-tf/salestracker/internal/repository"
)

// saleRepository implements repository.SaleRepository for SQLite.
type saleRepository struct {
	db *DB
}

// NewSaleRepository creates a new SQLite sale repository.
func NewSaleRepository(db *DB) repository.SaleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `id, user_id, title, description, price, status,
	customer_name, customer_email, customer_phone, created_at, updated_at`

// Create creates a new sale.
func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (user_id, title, description, price, status,
			customer_name, customer_email, customer_phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		sale.UserID,
		sale.Title,
		sale.Description,
		sale.Price,
		string(sale.Status),
		sale.CustomerName,
		sale.CustomerEmail,
		sale.CustomerPhone,
		sale.CreatedAt.Format(time.RFC3339),
		sale.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	sale.ID = id

	return nil
}

// scanSale scans a sale row from any row-like scanner.
func scanSale(scan func(dest ...any) error) (*domain.Sale, error) {
	sale := &domain.Sale{}
	var status string
	var createdAt, updatedAt string

	err := scan(
		&sale.ID,
		&sale.UserID,
		&sale.Title,
		&sale.Description,
		&sale.Price,
		&status,
		&sale.CustomerName,
		&sale.CustomerEmail,
		&sale.CustomerPhone,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sale.Status = domain.SaleStatus(status)
	sale.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sale.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return sale, nil
}

// GetByID retrieves a sale by ID regardless of owner.
func (r *saleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = ?`

	sale, err := scanSale(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sale by ID: %w", err)
	}
	return sale, nil
}

// GetByIDForOwner retrieves a sale by ID only if it is owned by ownerID.
func (r *saleRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = ? AND user_id = ?`

	sale, err := scanSale(r.db.QueryRowContext(ctx, query, id, ownerID).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sale for owner: %w", err)
	}
	return sale, nil
}

// Update persists all mutable fields of the sale.
// The owner and creation timestamp are never written.
func (r *saleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	query := `
		UPDATE sales
		SET title = ?, description = ?, price = ?, status = ?,
			customer_name = ?, customer_email = ?, customer_phone = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		sale.Title,
		sale.Description,
		sale.Price,
		string(sale.Status),
		sale.CustomerName,
		sale.CustomerEmail,
		sale.CustomerPhone,
		sale.UpdatedAt.Format(time.RFC3339),
		sale.ID,
		sale.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete deletes a sale by ID, scoped to the owner.
func (r *saleRepository) Delete(ctx context.Context, id, ownerID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByOwner returns the owner's sales matching the filter,
// ordered by creation time descending.
func (r *saleRepository) ListByOwner(ctx context.Context, ownerID int64, filter repository.SaleFilter) ([]*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE user_id = ?`
	args := []any{ownerID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}

	if filter.Search != "" {
		query += ` AND (instr(lower(title), lower(?)) > 0
			OR instr(lower(description), lower(?)) > 0
			OR instr(lower(customer_name), lower(?)) > 0
			OR instr(lower(customer_email), lower(?)) > 0)`
		args = append(args, filter.Search, filter.Search, filter.Search, filter.Search)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var sales []*domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
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
			COALESCE(SUM(CASE WHEN status = 'completed' THEN price ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0)
		FROM sales
		WHERE user_id = ?
	`

	stats := &domain.SaleStats{}
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
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
