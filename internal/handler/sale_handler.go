package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/domain"
	"github.com/prn-tf/salestracker/internal/service"
)

// SaleHandler exposes the ownership-scoped sale CRUD and query endpoints.
// The auth middleware runs in front of every route, so handlers can rely
// on an authenticated identity being present.
type SaleHandler struct {
	saleService *service.SaleService
	userService *service.UserService
	logger      zerolog.Logger
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleService *service.SaleService, userService *service.UserService, logger zerolog.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		userService: userService,
		logger:      logger.With().Str("handler", "sale").Logger(),
	}
}

// createSaleRequest is the POST /sales/create/ body.
type createSaleRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	Status        string   `json:"status"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
	CustomerPhone string   `json:"customer_phone"`
}

// updateSaleRequest is the PUT/PATCH /sales/{id}/update/ body.
// Pointer fields distinguish "absent" from "zero value".
type updateSaleRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Status        *string  `json:"status"`
	CustomerName  *string  `json:"customer_name"`
	CustomerEmail *string  `json:"customer_email"`
	CustomerPhone *string  `json:"customer_phone"`
}

// List handles GET /sales/ with optional status and search query parameters.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	query := r.URL.Query()
	out, err := h.saleService.List(r.Context(), user.ID, service.ListSalesInput{
		Status: query.Get("status"),
		Search: query.Get("search"),
	})
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list sales")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sales":       newSaleResponses(out.Sales, user.Email),
		"total_count": out.TotalCount,
	})
}

// Create handles POST /sales/create/.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, ValidationErrors{"detail": {"Request body must be valid JSON."}})
		return
	}

	errs := ValidationErrors{}
	if req.Title == "" {
		errs.Add("title", "This field is required.")
	}
	if req.Price == nil {
		errs.Add("price", "This field is required.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	sale, err := h.saleService.Create(r.Context(), user.ID, service.CreateSaleInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         *req.Price,
		Status:        req.Status,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		h.writeSaleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Sale created successfully",
		"sale":    newSaleResponse(sale, user.Email),
	})
}

// Get handles GET /sales/{id}/.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	saleID, ok := saleIDParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Sale not found")
		return
	}

	sale, err := h.saleService.Get(r.Context(), user.ID, saleID)
	if err != nil {
		h.writeSaleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSaleResponse(sale, user.Email))
}

// Update handles PUT and PATCH /sales/{id}/update/.
// PUT requires the required fields (title, price); PATCH changes only
// the supplied fields.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	saleID, ok := saleIDParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Sale not found")
		return
	}

	var req updateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, ValidationErrors{"detail": {"Request body must be valid JSON."}})
		return
	}

	if r.Method == http.MethodPut {
		errs := ValidationErrors{}
		if req.Title == nil {
			errs.Add("title", "This field is required.")
		}
		if req.Price == nil {
			errs.Add("price", "This field is required.")
		}
		if len(errs) > 0 {
			writeValidationErrors(w, errs)
			return
		}
	}

	sale, err := h.saleService.Update(r.Context(), user.ID, saleID, service.UpdateSaleInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Status:        req.Status,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		h.writeSaleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Sale updated successfully",
		"sale":    newSaleResponse(sale, user.Email),
	})
}

// Delete handles DELETE /sales/{id}/delete/.
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	saleID, ok := saleIDParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Sale not found")
		return
	}

	if err := h.saleService.Delete(r.Context(), user.ID, saleID); err != nil {
		h.writeSaleError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Sale deleted successfully")
}

// Statistics handles GET /sales/statistics/.
func (h *SaleHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.userService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	stats, err := h.saleService.Statistics(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to compute statistics")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// writeSaleError maps sale service failures onto HTTP responses.
func (h *SaleHandler) writeSaleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSaleNotFound):
		writeError(w, http.StatusNotFound, "Sale not found")
	case errors.Is(err, domain.ErrSaleTitleRequired):
		writeValidationErrors(w, ValidationErrors{"title": {"This field is required."}})
	case errors.Is(err, domain.ErrSaleTitleTooLong):
		writeValidationErrors(w, ValidationErrors{"title": {"Ensure this field has no more than 200 characters."}})
	case errors.Is(err, domain.ErrSalePriceNotPositive):
		writeValidationErrors(w, ValidationErrors{"price": {"Price must be greater than zero."}})
	case errors.Is(err, domain.ErrSaleStatusInvalid):
		writeValidationErrors(w, ValidationErrors{"status": {"Status must be one of: pending, completed, cancelled."}})
	default:
		h.logger.Error().Err(err).Msg("sale operation failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// saleIDParam parses the {id} URL parameter.
func saleIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
