package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/domain"
	"github.com/prn-tf/salestracker/internal/repository"
)

// MockSaleRepository is a mock implementation of repository.SaleRepository.
type MockSaleRepository struct {
	sales     map[int64]*domain.Sale
	nextID    int64
	createErr error
	listErr   error
}

func NewMockSaleRepository() *MockSaleRepository {
	return &MockSaleRepository{
		sales:  make(map[int64]*domain.Sale),
		nextID: 1,
	}
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	if m.createErr != nil {
		return m.createErr
	}
	sale.ID = m.nextID
	m.nextID++
	m.sales[sale.ID] = sale
	return nil
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	if s, ok := m.sales[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockSaleRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Sale, error) {
	if s, ok := m.sales[id]; ok && s.UserID == ownerID {
		copied := *s
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockSaleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	if existing, ok := m.sales[sale.ID]; ok && existing.UserID == sale.UserID {
		m.sales[sale.ID] = sale
		return nil
	}
	return repository.ErrNotFound
}

func (m *MockSaleRepository) Delete(ctx context.Context, id, ownerID int64) error {
	if s, ok := m.sales[id]; ok && s.UserID == ownerID {
		delete(m.sales, id)
		return nil
	}
	return repository.ErrNotFound
}

func (m *MockSaleRepository) ListByOwner(ctx context.Context, ownerID int64, filter repository.SaleFilter) ([]*domain.Sale, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*domain.Sale
	for _, s := range m.sales {
		if s.UserID != ownerID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !saleMatchesSearch(s, filter.Search) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func saleMatchesSearch(s *domain.Sale, search string) bool {
	needle := strings.ToLower(search)
	for _, field := range []string{s.Title, s.Description, s.CustomerName, s.CustomerEmail} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (m *MockSaleRepository) StatsByOwner(ctx context.Context, ownerID int64) (*domain.SaleStats, error) {
	stats := &domain.SaleStats{}
	for _, s := range m.sales {
		if s.UserID != ownerID {
			continue
		}
		stats.TotalSales++
		switch s.Status {
		case domain.SalePending:
			stats.PendingSales++
		case domain.SaleCompleted:
			stats.CompletedSales++
			stats.TotalRevenue += s.Price
		case domain.SaleCancelled:
			stats.CancelledSales++
		}
	}
	return stats, nil
}

// addSale seeds a sale owned by ownerID.
func (m *MockSaleRepository) addSale(ownerID int64, title string, price float64, status domain.SaleStatus) *domain.Sale {
	sale := domain.NewSale(ownerID, title, price)
	sale.Status = status
	sale.ID = m.nextID
	m.nextID++
	m.sales[sale.ID] = sale
	return sale
}

func newTestSaleService(repo *MockSaleRepository) *SaleService {
	return NewSaleService(repo, zerolog.Nop())
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

// =============================================================================
// Tests
// =============================================================================

func TestSaleService_Create(t *testing.T) {
	tests := []struct {
		name       string
		input      CreateSaleInput
		wantErr    error
		wantStatus domain.SaleStatus
	}{
		{
			name:       "success with default status",
			input:      CreateSaleInput{Title: "Laptop", Price: 999.99},
			wantStatus: domain.SalePending,
		},
		{
			name:       "success with explicit status",
			input:      CreateSaleInput{Title: "Laptop", Price: 999.99, Status: "completed"},
			wantStatus: domain.SaleCompleted,
		},
		{
			name:    "missing title",
			input:   CreateSaleInput{Price: 10},
			wantErr: domain.ErrSaleTitleRequired,
		},
		{
			name:    "title too long",
			input:   CreateSaleInput{Title: strings.Repeat("x", 201), Price: 10},
			wantErr: domain.ErrSaleTitleTooLong,
		},
		{
			name:    "zero price",
			input:   CreateSaleInput{Title: "Laptop", Price: 0},
			wantErr: domain.ErrSalePriceNotPositive,
		},
		{
			name:    "negative price",
			input:   CreateSaleInput{Title: "Laptop", Price: -5},
			wantErr: domain.ErrSalePriceNotPositive,
		},
		{
			name:    "invalid status",
			input:   CreateSaleInput{Title: "Laptop", Price: 10, Status: "shipped"},
			wantErr: domain.ErrSaleStatusInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockSaleRepository()
			svc := newTestSaleService(repo)

			sale, err := svc.Create(context.Background(), 1, tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sale.ID == 0 {
				t.Error("expected sale to be assigned an ID")
			}
			if sale.UserID != 1 {
				t.Errorf("expected owner 1, got %d", sale.UserID)
			}
			if sale.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, sale.Status)
			}
		})
	}
}

func TestSaleService_Get_OwnershipScoped(t *testing.T) {
	repo := NewMockSaleRepository()
	sale := repo.addSale(1, "Laptop", 999.99, domain.SalePending)
	svc := newTestSaleService(repo)

	got, err := svc.Get(context.Background(), 1, sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Laptop" {
		t.Errorf("expected title Laptop, got %s", got.Title)
	}

	// Another user sees the same not-found error as for a missing sale.
	_, otherErr := svc.Get(context.Background(), 2, sale.ID)
	_, missingErr := svc.Get(context.Background(), 1, 999)
	if !errors.Is(otherErr, ErrSaleNotFound) {
		t.Errorf("expected ErrSaleNotFound for foreign sale, got %v", otherErr)
	}
	if !errors.Is(missingErr, ErrSaleNotFound) {
		t.Errorf("expected ErrSaleNotFound for missing sale, got %v", missingErr)
	}
	if otherErr.Error() != missingErr.Error() {
		t.Error("foreign and missing sales must be indistinguishable")
	}
}

func TestSaleService_Update(t *testing.T) {
	tests := []struct {
		name    string
		ownerID int64
		input   UpdateSaleInput
		wantErr error
		check   func(*testing.T, *domain.Sale)
	}{
		{
			name:    "partial update changes only supplied fields",
			ownerID: 1,
			input:   UpdateSaleInput{Status: strPtr("completed")},
			check: func(t *testing.T, s *domain.Sale) {
				if s.Status != domain.SaleCompleted {
					t.Errorf("expected status completed, got %s", s.Status)
				}
				if s.Title != "Laptop" {
					t.Errorf("expected title untouched, got %s", s.Title)
				}
				if s.Price != 999.99 {
					t.Errorf("expected price untouched, got %v", s.Price)
				}
			},
		},
		{
			name:    "full update",
			ownerID: 1,
			input: UpdateSaleInput{
				Title:        strPtr("Desktop"),
				Price:        floatPtr(1499.50),
				Status:       strPtr("cancelled"),
				CustomerName: strPtr("Bob"),
			},
			check: func(t *testing.T, s *domain.Sale) {
				if s.Title != "Desktop" || s.Price != 1499.50 || s.Status != domain.SaleCancelled || s.CustomerName != "Bob" {
					t.Errorf("unexpected sale after update: %+v", s)
				}
			},
		},
		{
			name:    "empty title rejected",
			ownerID: 1,
			input:   UpdateSaleInput{Title: strPtr("")},
			wantErr: domain.ErrSaleTitleRequired,
		},
		{
			name:    "zero price rejected",
			ownerID: 1,
			input:   UpdateSaleInput{Price: floatPtr(0)},
			wantErr: domain.ErrSalePriceNotPositive,
		},
		{
			name:    "invalid status rejected",
			ownerID: 1,
			input:   UpdateSaleInput{Status: strPtr("shipped")},
			wantErr: domain.ErrSaleStatusInvalid,
		},
		{
			name:    "foreign owner gets not found",
			ownerID: 2,
			input:   UpdateSaleInput{Status: strPtr("completed")},
			wantErr: ErrSaleNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockSaleRepository()
			sale := repo.addSale(1, "Laptop", 999.99, domain.SalePending)
			svc := newTestSaleService(repo)

			updated, err := svc.Update(context.Background(), tt.ownerID, sale.ID, tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, updated)
			}
		})
	}
}

func TestSaleService_Update_ValidationFailureDoesNotPersist(t *testing.T) {
	repo := NewMockSaleRepository()
	sale := repo.addSale(1, "Laptop", 999.99, domain.SalePending)
	svc := newTestSaleService(repo)

	_, err := svc.Update(context.Background(), 1, sale.ID, UpdateSaleInput{Price: floatPtr(-1)})
	if !errors.Is(err, domain.ErrSalePriceNotPositive) {
		t.Fatalf("expected ErrSalePriceNotPositive, got %v", err)
	}

	got, err := svc.Get(context.Background(), 1, sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != 999.99 {
		t.Errorf("expected price unchanged after failed update, got %v", got.Price)
	}
}

func TestSaleService_Delete(t *testing.T) {
	repo := NewMockSaleRepository()
	sale := repo.addSale(1, "Laptop", 999.99, domain.SalePending)
	svc := newTestSaleService(repo)

	if err := svc.Delete(context.Background(), 2, sale.ID); !errors.Is(err, ErrSaleNotFound) {
		t.Errorf("expected ErrSaleNotFound for foreign owner, got %v", err)
	}

	if err := svc.Delete(context.Background(), 1, sale.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), 1, sale.ID); !errors.Is(err, ErrSaleNotFound) {
		t.Errorf("expected ErrSaleNotFound after delete, got %v", err)
	}
}

func TestSaleService_List(t *testing.T) {
	repo := NewMockSaleRepository()
	repo.addSale(1, "Gaming Laptop", 999.99, domain.SalePending)
	repo.addSale(1, "Office Chair", 150, domain.SaleCompleted)
	repo.addSale(1, "Laptop Stand", 45, domain.SaleCompleted)
	repo.addSale(2, "Laptop", 500, domain.SalePending)
	svc := newTestSaleService(repo)

	tests := []struct {
		name      string
		input     ListSalesInput
		wantCount int64
	}{
		{name: "all owned sales", wantCount: 3},
		{name: "status filter", input: ListSalesInput{Status: "completed"}, wantCount: 2},
		{name: "search filter", input: ListSalesInput{Search: "laptop"}, wantCount: 2},
		{name: "search and status combined", input: ListSalesInput{Status: "completed", Search: "laptop"}, wantCount: 1},
		{name: "invalid status matches nothing", input: ListSalesInput{Status: "shipped"}, wantCount: 0},
		{name: "no match", input: ListSalesInput{Search: "printer"}, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.List(context.Background(), 1, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.TotalCount != tt.wantCount {
				t.Errorf("expected %d sales, got %d", tt.wantCount, out.TotalCount)
			}
			if int64(len(out.Sales)) != tt.wantCount {
				t.Errorf("total count must match slice length")
			}
			for _, s := range out.Sales {
				if s.UserID != 1 {
					t.Errorf("listing leaked a sale owned by user %d", s.UserID)
				}
			}
		})
	}
}

func TestSaleService_Statistics(t *testing.T) {
	repo := NewMockSaleRepository()
	repo.addSale(1, "A", 100, domain.SaleCompleted)
	repo.addSale(1, "B", 250.50, domain.SaleCompleted)
	repo.addSale(1, "C", 999, domain.SalePending)
	repo.addSale(1, "D", 999, domain.SaleCancelled)
	repo.addSale(2, "E", 5000, domain.SaleCompleted)
	svc := newTestSaleService(repo)

	stats, err := svc.Statistics(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalSales != 4 {
		t.Errorf("expected 4 total sales, got %d", stats.TotalSales)
	}
	if stats.TotalRevenue != 350.50 {
		t.Errorf("expected revenue 350.50 from completed sales only, got %v", stats.TotalRevenue)
	}
	if stats.PendingSales != 1 || stats.CompletedSales != 2 || stats.CancelledSales != 1 {
		t.Errorf("unexpected per-status counts: %+v", stats)
	}
}

func TestSaleService_Statistics_Empty(t *testing.T) {
	repo := NewMockSaleRepository()
	svc := newTestSaleService(repo)

	stats, err := svc.Statistics(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalSales != 0 || stats.TotalRevenue != 0 {
		t.Errorf("expected zero stats for user with no sales, got %+v", stats)
	}
}
