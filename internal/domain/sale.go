// Package domain contains the core business entities for Sales Tracker.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// SaleStatus represents the lifecycle status of a sale.
type SaleStatus string

const (
	// SalePending means the sale has been recorded but not closed.
	// This is the default status for new sales.
	SalePending SaleStatus = "pending"

	// SaleCompleted means the sale closed successfully.
	// Only completed sales count towards revenue.
	SaleCompleted SaleStatus = "completed"

	// SaleCancelled means the sale was abandoned or reversed.
	SaleCancelled SaleStatus = "cancelled"
)

// ValidSaleStatuses lists the accepted status values in display order.
var ValidSaleStatuses = []SaleStatus{SalePending, SaleCompleted, SaleCancelled}

// IsValid returns true if the status is one of the accepted values.
func (s SaleStatus) IsValid() bool {
	switch s {
	case SalePending, SaleCompleted, SaleCancelled:
		return true
	}
	return false
}

// BadgeClass returns the presentation style tag for the status.
// Unknown values map to "secondary" so the frontend always has a class to render.
func (s SaleStatus) BadgeClass() string {
	switch s {
	case SalePending:
		return "warning"
	case SaleCompleted:
		return "success"
	case SaleCancelled:
		return "danger"
	default:
		return "secondary"
	}
}

// Sale represents a tracked transaction owned by exactly one user.
// The owner is set at creation and never reassigned; all reads and
// mutations are scoped to the owner at the service layer.
type Sale struct {
	// ID is the unique identifier for the sale (auto-generated).
	ID int64 `json:"id"`

	// UserID is the ID of the user who owns this sale. Immutable.
	UserID int64 `json:"user"`

	// Title is the short description of the sale. Required.
	// Constraints: 1-200 characters.
	Title string `json:"title"`

	// Description is optional free-form detail text.
	Description string `json:"description"`

	// Price is the sale amount. Must be strictly positive.
	Price float64 `json:"price"`

	// Status is the lifecycle status: pending, completed, or cancelled.
	Status SaleStatus `json:"status"`

	// CustomerName is the optional customer name.
	CustomerName string `json:"customer_name"`

	// CustomerEmail is the optional customer email.
	CustomerEmail string `json:"customer_email"`

	// CustomerPhone is the optional customer phone number.
	CustomerPhone string `json:"customer_phone"`

	// CreatedAt is set once at creation and never changes.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSale creates a new Sale owned by the given user with default values.
func NewSale(userID int64, title string, price float64) *Sale {
	now := time.Now().UTC()
	return &Sale{
		UserID:    userID,
		Title:     title,
		Price:     price,
		Status:    SalePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FormattedPrice returns the price as a currency string with thousands
// separators, e.g. "$1,234.50".
func (s *Sale) FormattedPrice() string {
	return FormatPrice(s.Price)
}

// FormatPrice renders an amount as "$1,234.50".
func FormatPrice(amount float64) string {
	str := fmt.Sprintf("%.2f", amount)

	sign := ""
	if strings.HasPrefix(str, "-") {
		sign = "-"
		str = str[1:]
	}

	whole, frac, _ := strings.Cut(str, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + "." + frac
}

// ValidateSaleTitle checks the title constraints.
func ValidateSaleTitle(title string) error {
	if title == "" {
		return ErrSaleTitleRequired
	}
	if len(title) > 200 {
		return ErrSaleTitleTooLong
	}
	return nil
}

// ValidateSalePrice checks that the price is strictly positive.
func ValidateSalePrice(price float64) error {
	if price <= 0 {
		return ErrSalePriceNotPositive
	}
	return nil
}

// SaleStats holds per-owner aggregate statistics.
// TotalRevenue sums the price of completed sales only; pending and
// cancelled sales are excluded entirely.
type SaleStats struct {
	// TotalSales is the number of sales owned by the user, any status.
	TotalSales int64 `json:"total_sales"`

	// TotalRevenue is the sum of price over completed sales. Zero when
	// the user has no completed sales.
	TotalRevenue float64 `json:"total_revenue"`

	// PendingSales is the number of pending sales.
	PendingSales int64 `json:"pending_sales"`

	// CompletedSales is the number of completed sales.
	CompletedSales int64 `json:"completed_sales"`

	// CancelledSales is the number of cancelled sales.
	CancelledSales int64 `json:"cancelled_sales"`
}
