// Package service provides business logic services for Sales Tracker.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/domain"
	"github.com/prn-tf/salestracker/internal/repository"
)

// SaleService handles ownership-scoped CRUD and queries over sales.
// Every operation takes the authenticated owner's ID; a sale owned by a
// different user is indistinguishable from one that does not exist.
type SaleService struct {
	saleRepo repository.SaleRepository
	logger   zerolog.Logger
}

// NewSaleService creates a new SaleService.
func NewSaleService(saleRepo repository.SaleRepository, logger zerolog.Logger) *SaleService {
	return &SaleService{
		saleRepo: saleRepo,
		logger:   logger.With().Str("service", "sale").Logger(),
	}
}

// CreateSaleInput contains the data needed to create a sale.
type CreateSaleInput struct {
	Title         string
	Description   string
	Price         float64
	Status        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// Create creates a new sale owned by ownerID.
// An empty status defaults to pending.
func (s *SaleService) Create(ctx context.Context, ownerID int64, input CreateSaleInput) (*domain.Sale, error) {
	if err := domain.ValidateSaleTitle(input.Title); err != nil {
		return nil, err
	}
	if err := domain.ValidateSalePrice(input.Price); err != nil {
		return nil, err
	}

	status := domain.SaleStatus(input.Status)
	if input.Status == "" {
		status = domain.SalePending
	} else if !status.IsValid() {
		return nil, domain.ErrSaleStatusInvalid
	}

	sale := domain.NewSale(ownerID, input.Title, input.Price)
	sale.Description = input.Description
	sale.Status = status
	sale.CustomerName = input.CustomerName
	sale.CustomerEmail = input.CustomerEmail
	sale.CustomerPhone = input.CustomerPhone

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to create sale")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("sale_id", sale.ID).
		Int64("owner_id", ownerID).
		Str("status", string(sale.Status)).
		Msg("sale created")

	return sale, nil
}

// Get retrieves a sale owned by ownerID.
func (s *SaleService) Get(ctx context.Context, ownerID, saleID int64) (*domain.Sale, error) {
	sale, err := s.saleRepo.GetByIDForOwner(ctx, saleID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		s.logger.Error().Err(err).Int64("sale_id", saleID).Msg("failed to get sale")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return sale, nil
}

// UpdateSaleInput carries the fields to change on a sale.
// Nil fields are left untouched.
type UpdateSaleInput struct {
	Title         *string
	Description   *string
	Price         *float64
	Status        *string
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
}

// Update applies the supplied fields to a sale owned by ownerID,
// re-validates the result, and refreshes the updated timestamp.
func (s *SaleService) Update(ctx context.Context, ownerID, saleID int64, input UpdateSaleInput) (*domain.Sale, error) {
	sale, err := s.Get(ctx, ownerID, saleID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		sale.Title = *input.Title
	}
	if input.Description != nil {
		sale.Description = *input.Description
	}
	if input.Price != nil {
		sale.Price = *input.Price
	}
	if input.Status != nil {
		sale.Status = domain.SaleStatus(*input.Status)
	}
	if input.CustomerName != nil {
		sale.CustomerName = *input.CustomerName
	}
	if input.CustomerEmail != nil {
		sale.CustomerEmail = *input.CustomerEmail
	}
	if input.CustomerPhone != nil {
		sale.CustomerPhone = *input.CustomerPhone
	}

	if err := domain.ValidateSaleTitle(sale.Title); err != nil {
		return nil, err
	}
	if err := domain.ValidateSalePrice(sale.Price); err != nil {
		return nil, err
	}
	if !sale.Status.IsValid() {
		return nil, domain.ErrSaleStatusInvalid
	}

	sale.UpdatedAt = time.Now().UTC()

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between the read and the write; same outcome for the caller.
			return nil, ErrSaleNotFound
		}
		s.logger.Error().Err(err).Int64("sale_id", saleID).Msg("failed to update sale")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("sale_id", sale.ID).
		Int64("owner_id", ownerID).
		Str("status", string(sale.Status)).
		Msg("sale updated")

	return sale, nil
}

// Delete permanently removes a sale owned by ownerID.
func (s *SaleService) Delete(ctx context.Context, ownerID, saleID int64) error {
	if err := s.saleRepo.Delete(ctx, saleID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSaleNotFound
		}
		s.logger.Error().Err(err).Int64("sale_id", saleID).Msg("failed to delete sale")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("sale_id", saleID).
		Int64("owner_id", ownerID).
		Msg("sale deleted")

	return nil
}

// ListSalesInput narrows a sale listing.
type ListSalesInput struct {
	// Status, when non-empty, is an exact-match filter.
	Status string

	// Search is free text matched case-insensitively against title,
	// description, customer name, and customer email.
	Search string
}

// ListSalesOutput contains the result of listing sales.
type ListSalesOutput struct {
	Sales      []*domain.Sale
	TotalCount int64
}

// List returns the owner's sales matching the filter, most recent first.
// An invalid status filter matches nothing rather than failing: the
// filter narrows a listing, it is not input to validate.
func (s *SaleService) List(ctx context.Context, ownerID int64, input ListSalesInput) (*ListSalesOutput, error) {
	filter := repository.SaleFilter{
		Status: domain.SaleStatus(input.Status),
		Search: input.Search,
	}

	sales, err := s.saleRepo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to list sales")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListSalesOutput{
		Sales:      sales,
		TotalCount: int64(len(sales)),
	}, nil
}

// Statistics returns aggregate counts and revenue for the owner's sales.
// Revenue sums completed sales only and is zero when there are none.
func (s *SaleService) Statistics(ctx context.Context, ownerID int64) (*domain.SaleStats, error) {
	stats, err := s.saleRepo.StatsByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to aggregate sale stats")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return stats, nil
}
