package service

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/queue"
)

// --- Mocks ---

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindAll(ctx context.Context) ([]*models.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id int64) (mo.Option[*models.Customer], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.Customer]), args.Error(1)
}

func (m *MockCustomerRepository) FindByUserName(ctx context.Context, userName string) (mo.Option[*models.Customer], error) {
	args := m.Called(ctx, userName)
	return args.Get(0).(mo.Option[*models.Customer]), args.Error(1)
}

func (m *MockCustomerRepository) SelectCustomerByPhoneNumber(ctx context.Context, phoneNumber string) (mo.Option[*models.Customer], error) {
	args := m.Called(ctx, phoneNumber)
	return args.Get(0).(mo.Option[*models.Customer]), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) SaveAll(ctx context.Context, customers []*models.Customer) ([]*models.Customer, error) {
	args := m.Called(ctx, customers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockQueueClient struct {
	mock.Mock
}

func (m *MockQueueClient) Publish(ctx context.Context, job *models.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockQueueClient) Consume(ctx context.Context, handler queue.JobHandler, concurrency int) error {
	args := m.Called(ctx, handler, concurrency)
	return args.Error(0)
}

func (m *MockQueueClient) QueueLength(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockQueueClient) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func none() mo.Option[*models.Customer] {
	return mo.None[*models.Customer]()
}

func some(c *models.Customer) mo.Option[*models.Customer] {
	return mo.Some(c)
}
