package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/service"
)

// CustomerHandler handles customer record HTTP requests
type CustomerHandler struct {
	customerService service.CustomerService
	importService   service.ImportService
	logger          *slog.Logger
}

// NewCustomerHandler creates a new customer handler. importService may be nil
// when no queue is configured.
func NewCustomerHandler(customerService service.CustomerService, importService service.ImportService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		importService:   importService,
		logger:          logger,
	}
}

// ListCustomers handles GET /customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.List(r.Context())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, customers)
}

// GetCustomer handles GET /customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	customer, err := h.customerService.FindByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, customer)
}

// GetCustomerByUserName handles GET /customers/username/{userName}
func (h *CustomerHandler) GetCustomerByUserName(w http.ResponseWriter, r *http.Request) {
	userName, ok := pathParam(w, r, "userName")
	if !ok {
		return
	}

	customer, err := h.customerService.FindByUserName(r.Context(), userName)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, customer)
}

// GetCustomerByPhoneNumber handles GET /customers/phone/{phoneNumber}
func (h *CustomerHandler) GetCustomerByPhoneNumber(w http.ResponseWriter, r *http.Request) {
	phoneNumber, ok := pathParam(w, r, "phoneNumber")
	if !ok {
		return
	}

	customer, err := h.customerService.FindByPhoneNumber(r.Context(), phoneNumber)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, customer)
}

// AddCustomer handles POST /customers
func (h *CustomerHandler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	saved, err := h.customerService.AddCustomer(r.Context(), &customer)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, saved)
}

// UpdateCustomer handles PUT /customers/{id}
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	saved, err := h.customerService.UpdateCustomer(r.Context(), id, &customer)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, saved)
}

// DeleteCustomer handles DELETE /customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, nil)
}

// SaveCustomers handles POST /customers/bulk
func (h *CustomerHandler) SaveCustomers(w http.ResponseWriter, r *http.Request) {
	var customers []*models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customers); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}
	if lo.Contains(customers, nil) {
		respondError(w, http.StatusBadRequest, models.CodeInvalidInput, "customers must not contain null entries")
		return
	}

	saved, err := h.customerService.SaveAll(r.Context(), customers)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, saved)
}

// ImportCustomers handles POST /customers/import
func (h *CustomerHandler) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	if h.importService == nil {
		respondError(w, http.StatusServiceUnavailable, "IMPORT_UNAVAILABLE", "Import queue is not configured")
		return
	}

	var req service.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	batch, err := h.importService.Enqueue(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusAccepted, batch)
}

// customerID parses the {id} path parameter, writing a 400 when malformed
func customerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID")
		return 0, false
	}
	return id, true
}

// pathParam returns the decoded path parameter. chi matches against RawPath
// when the request has one (e.g. "%2F" in a phone number), so only then is
// the value still escaped.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, true
	}

	decoded, err := url.PathUnescape(value)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PATH", "Invalid "+name+" in path")
		return "", false
	}
	return decoded, true
}
