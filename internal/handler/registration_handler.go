package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/service"
)

// RegistrationHandler handles customer self-registration requests
type RegistrationHandler struct {
	registrationService service.RegistrationService
	logger              *slog.Logger
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService service.RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		logger:              logger,
	}
}

// Register handles POST /customer-registration
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	saved, err := h.registrationService.RegisterNewCustomer(r.Context(), &customer)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, saved)
}
