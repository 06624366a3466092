package domain

import (
	"strings"
	"testing"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{999.5, "$999.50"},
		{1234.5, "$1,234.50"},
		{1000000, "$1,000,000.00"},
		{123456789.99, "$123,456,789.99"},
		{-1234.5, "-$1,234.50"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatPrice(tt.amount); got != tt.want {
				t.Errorf("FormatPrice(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestSaleStatus_IsValid(t *testing.T) {
	for _, s := range ValidSaleStatuses {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	for _, s := range []SaleStatus{"", "shipped", "PENDING", "done"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestSaleStatus_BadgeClass(t *testing.T) {
	tests := []struct {
		status SaleStatus
		want   string
	}{
		{SalePending, "warning"},
		{SaleCompleted, "success"},
		{SaleCancelled, "danger"},
		{"unknown", "secondary"},
	}

	for _, tt := range tests {
		if got := tt.status.BadgeClass(); got != tt.want {
			t.Errorf("BadgeClass(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestValidateSaleTitle(t *testing.T) {
	if err := ValidateSaleTitle(""); err != ErrSaleTitleRequired {
		t.Errorf("expected ErrSaleTitleRequired, got %v", err)
	}
	if err := ValidateSaleTitle(strings.Repeat("x", 201)); err != ErrSaleTitleTooLong {
		t.Errorf("expected ErrSaleTitleTooLong, got %v", err)
	}
	if err := ValidateSaleTitle(strings.Repeat("x", 200)); err != nil {
		t.Errorf("expected 200-character title to be valid, got %v", err)
	}
}

func TestValidateSalePrice(t *testing.T) {
	if err := ValidateSalePrice(0); err != ErrSalePriceNotPositive {
		t.Errorf("expected ErrSalePriceNotPositive for zero, got %v", err)
	}
	if err := ValidateSalePrice(-0.01); err != ErrSalePriceNotPositive {
		t.Errorf("expected ErrSalePriceNotPositive for negative, got %v", err)
	}
	if err := ValidateSalePrice(0.01); err != nil {
		t.Errorf("expected positive price to be valid, got %v", err)
	}
}

func TestNewSale_Defaults(t *testing.T) {
	sale := NewSale(7, "Laptop", 999.99)

	if sale.Status != SalePending {
		t.Errorf("expected default status pending, got %s", sale.Status)
	}
	if sale.UserID != 7 {
		t.Errorf("expected owner 7, got %d", sale.UserID)
	}
	if sale.CreatedAt.IsZero() || !sale.CreatedAt.Equal(sale.UpdatedAt) {
		t.Error("expected created and updated timestamps to be set and equal")
	}
}
