package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Raymond9734/customer-registry/internal/models"
)

func TestRegistrationService_RegisterNewCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new customer", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		input := &models.Customer{UserName: "jamila", Name: "Jamila Ahmed", PhoneNumber: "+4917612345678"}
		repo.On("SelectCustomerByPhoneNumber", ctx, input.PhoneNumber).Return(none(), nil)
		repo.On("Save", ctx, input).Return(jamila(), nil)
		svc := NewRegistrationService(repo, testLogger())

		got, err := svc.RegisterNewCustomer(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, jamila(), got)
		repo.AssertExpectations(t)
	})

	t.Run("same person registering again is already registered", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		input := &models.Customer{UserName: "jamila", Name: "Jamila Ahmed", PhoneNumber: "+4917612345678"}
		repo.On("SelectCustomerByPhoneNumber", ctx, input.PhoneNumber).Return(some(jamila()), nil)
		svc := NewRegistrationService(repo, testLogger())

		_, err := svc.RegisterNewCustomer(ctx, input)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrAlreadyRegistered)
		assert.Equal(t, "You are already registered", err.Error())
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("another person's phone number is a conflict", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		input := &models.Customer{UserName: "ali", Name: "Ali Ahmed", PhoneNumber: "+4917612345678"}
		repo.On("SelectCustomerByPhoneNumber", ctx, input.PhoneNumber).Return(some(jamila()), nil)
		svc := NewRegistrationService(repo, testLogger())

		_, err := svc.RegisterNewCustomer(ctx, input)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.Equal(t, "Phone Number +4917612345678 taken", err.Error())
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("a different name under the same user name is a conflict", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		input := &models.Customer{UserName: "jamila", Name: "Jamila B.", PhoneNumber: "+4917612345678"}
		repo.On("SelectCustomerByPhoneNumber", ctx, input.PhoneNumber).Return(some(jamila()), nil)
		svc := NewRegistrationService(repo, testLogger())

		_, err := svc.RegisterNewCustomer(ctx, input)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("malformed phone number is rejected", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := NewRegistrationService(repo, testLogger())

		_, err := svc.RegisterNewCustomer(ctx, &models.Customer{UserName: "x", Name: "X", PhoneNumber: "+0123456789"})
		assert.ErrorIs(t, err, models.ErrInvalidFormat)
		repo.AssertExpectations(t)
	})

	t.Run("storage failure is propagated", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		input := &models.Customer{UserName: "jamila", Name: "Jamila Ahmed", PhoneNumber: "+4917612345678"}
		repo.On("SelectCustomerByPhoneNumber", ctx, input.PhoneNumber).Return(none(), nil)
		repo.On("Save", ctx, input).Return(nil, errors.New("db down"))
		svc := NewRegistrationService(repo, testLogger())

		_, err := svc.RegisterNewCustomer(ctx, input)
		require.Error(t, err)
		var appErr *models.AppError
		assert.False(t, errors.As(err, &appErr))
	})
}
