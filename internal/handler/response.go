// Package handler provides HTTP handlers for the Sales Tracker API.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prn-tf/salestracker/internal/domain"
)

// ValidationErrors is the 400 response body: field name to messages,
// mirroring how form validation errors are keyed for the frontend.
type ValidationErrors map[string][]string

// Add appends a message for a field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// SaleResponse is the wire representation of a sale, including the
// derived presentation fields.
type SaleResponse struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
	CustomerName   string  `json:"customer_name"`
	CustomerEmail  string  `json:"customer_email"`
	CustomerPhone  string  `json:"customer_phone"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
	User           int64   `json:"user"`
	UserEmail      string  `json:"user_email"`
	FormattedPrice string  `json:"formatted_price"`
	StatusBadge    string  `json:"status_badge_class"`
}

// newSaleResponse maps a domain sale to its wire representation.
// ownerEmail is the read-only user_email field; it belongs to the
// authenticated owner since all sales are owner-scoped.
func newSaleResponse(sale *domain.Sale, ownerEmail string) SaleResponse {
	return SaleResponse{
		ID:             sale.ID,
		Title:          sale.Title,
		Description:    sale.Description,
		Price:          sale.Price,
		Status:         string(sale.Status),
		CustomerName:   sale.CustomerName,
		CustomerEmail:  sale.CustomerEmail,
		CustomerPhone:  sale.CustomerPhone,
		CreatedAt:      sale.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      sale.UpdatedAt.UTC().Format(time.RFC3339),
		User:           sale.UserID,
		UserEmail:      ownerEmail,
		FormattedPrice: sale.FormattedPrice(),
		StatusBadge:    sale.Status.BadgeClass(),
	}
}

// newSaleResponses maps a slice of sales.
func newSaleResponses(sales []*domain.Sale, ownerEmail string) []SaleResponse {
	out := make([]SaleResponse, 0, len(sales))
	for _, sale := range sales {
		out = append(out, newSaleResponse(sale, ownerEmail))
	}
	return out
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeValidationErrors writes a 400 with the field-keyed error map.
func writeValidationErrors(w http.ResponseWriter, errs ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, errs)
}

// writeError writes an error response with a single error message,
// used for auth failures (401) and missing records (404).
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeMessage writes a success response containing only a message.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
