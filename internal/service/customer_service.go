package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/samber/lo"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/repository"
	"github.com/Raymond9734/customer-registry/internal/validator"
)

// Lookup labels embedded in not found messages
const (
	LabelID          = "id"
	LabelUserName    = "User-Name"
	LabelPhoneNumber = "phone number"
)

// CustomerService handles customer record management
type CustomerService interface {
	List(ctx context.Context) ([]*models.Customer, error)
	FindByID(ctx context.Context, id int64) (*models.Customer, error)
	FindByUserName(ctx context.Context, userName string) (*models.Customer, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
	AddCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, customer *models.Customer) (*models.Customer, error)
	SaveAll(ctx context.Context, customers []*models.Customer) ([]*models.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	logger       *slog.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	logger *slog.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// List returns every customer once; duplicate records collapse into one
func (s *customerService) List(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return lo.UniqBy(customers, func(c *models.Customer) models.Customer { return *c }), nil
}

// FindByID retrieves a customer by ID
func (s *customerService) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	result, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return validator.Require(result, LabelID, strconv.FormatInt(id, 10))
}

// FindByUserName retrieves a customer by user name
func (s *customerService) FindByUserName(ctx context.Context, userName string) (*models.Customer, error) {
	result, err := s.customerRepo.FindByUserName(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return validator.Require(result, LabelUserName, userName)
}

// FindByPhoneNumber retrieves a customer by phone number
func (s *customerService) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Customer, error) {
	result, err := s.customerRepo.SelectCustomerByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return validator.Require(result, LabelPhoneNumber, phoneNumber)
}

// Delete removes a customer; a missing id is reported as not found
func (s *customerService) Delete(ctx context.Context, id int64) error {
	exists, err := s.customerRepo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check customer: %w", err)
	}
	if !exists {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("Customer with id %d does not exist", id))
	}

	if err := s.customerRepo.DeleteByID(ctx, id); err != nil {
		s.logger.Error("failed to delete customer",
			slog.Int64("customer_id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info("customer deleted",
		slog.Int64("customer_id", id),
	)

	return nil
}

// AddCustomer stores a new customer unless any record already holds its phone number
func (s *customerService) AddCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	existing, err := s.customerRepo.SelectCustomerByPhoneNumber(ctx, customer.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if existing.IsPresent() {
		return nil, models.ErrPhoneNumberTaken(customer.PhoneNumber)
	}

	saved, err := s.customerRepo.Save(ctx, customer)
	if err != nil {
		s.logger.Error("failed to create customer",
			slog.String("phone_number", customer.PhoneNumber),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		slog.Int64("customer_id", saved.ID),
		slog.String("phone_number", saved.PhoneNumber),
	)

	return saved, nil
}

// UpdateCustomer replaces the fields of an existing customer
func (s *customerService) UpdateCustomer(ctx context.Context, id int64, customer *models.Customer) (*models.Customer, error) {
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	exists, err := s.customerRepo.ExistsByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check customer: %w", err)
	}
	if !exists {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("Customer with id %d does not exist", id))
	}

	owner, err := s.customerRepo.SelectCustomerByPhoneNumber(ctx, customer.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if o, ok := owner.Get(); ok && o.ID != id {
		return nil, models.ErrPhoneNumberTaken(customer.PhoneNumber)
	}

	update := customer.Clone()
	update.ID = id

	saved, err := s.customerRepo.Save(ctx, update)
	if err != nil {
		s.logger.Error("failed to update customer",
			slog.Int64("customer_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.Info("customer updated",
		slog.Int64("customer_id", id),
	)

	return saved, nil
}

// SaveAll persists the customers as given, without uniqueness or format checks
func (s *customerService) SaveAll(ctx context.Context, customers []*models.Customer) ([]*models.Customer, error) {
	saved, err := s.customerRepo.SaveAll(ctx, customers)
	if err != nil {
		s.logger.Error("failed to save customers",
			slog.Int("count", len(customers)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to save customers: %w", err)
	}

	s.logger.Info("customers saved",
		slog.Int("count", len(saved)),
	)

	return saved, nil
}

// validateCustomer checks required fields and the phone number grammar
func validateCustomer(customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	if !validator.IsValidPhoneNumber(customer.PhoneNumber) {
		return models.ErrInvalidFormatWithMsg(fmt.Sprintf("invalid phone number %s", customer.PhoneNumber))
	}
	return nil
}
