package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/repository"
)

// RegistrationService handles customer self-registration
type RegistrationService interface {
	RegisterNewCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}

type registrationService struct {
	customerRepo repository.CustomerRepository
	logger       *slog.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	customerRepo repository.CustomerRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// RegisterNewCustomer stores the customer when its phone number is free. A
// number held by the same person yields ErrAlreadyRegistered; a number held
// by someone else yields ErrConflict.
func (s *registrationService) RegisterNewCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	existing, err := s.customerRepo.SelectCustomerByPhoneNumber(ctx, customer.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}

	if owner, ok := existing.Get(); ok {
		if owner.SameIdentity(customer) {
			return nil, models.ErrAlreadyRegisteredWithMsg("You are already registered")
		}
		return nil, models.ErrPhoneNumberTaken(customer.PhoneNumber)
	}

	saved, err := s.customerRepo.Save(ctx, customer)
	if err != nil {
		s.logger.Error("failed to register customer",
			slog.String("user_name", customer.UserName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to register customer: %w", err)
	}

	s.logger.Info("customer registered",
		slog.Int64("customer_id", saved.ID),
		slog.String("user_name", saved.UserName),
	)

	return saved, nil
}
