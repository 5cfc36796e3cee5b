package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/Raymond9734/customer-registry/internal/models"
)

// InMemoryCustomerRepository is a map-backed CustomerRepository that enforces
// the same unique user name and phone number constraints as the customers table.
type InMemoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[int64]*models.Customer
	lastID    int64
}

var _ CustomerRepository = (*InMemoryCustomerRepository)(nil)

// NewInMemoryCustomerRepository creates an empty in-memory repository
func NewInMemoryCustomerRepository() *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{customers: make(map[int64]*models.Customer)}
}

// FindAll returns copies of every customer ordered by id
func (r *InMemoryCustomerRepository) FindAll(_ context.Context) ([]*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := lo.Map(lo.Values(r.customers), func(c *models.Customer, _ int) *models.Customer {
		return c.Clone()
	})
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })

	return customers, nil
}

// FindByID retrieves a customer by ID
func (r *InMemoryCustomerRepository) FindByID(_ context.Context, id int64) (mo.Option[*models.Customer], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.customers[id]; ok {
		return mo.Some(c.Clone()), nil
	}
	return mo.None[*models.Customer](), nil
}

// FindByUserName retrieves a customer by user name
func (r *InMemoryCustomerRepository) FindByUserName(_ context.Context, userName string) (mo.Option[*models.Customer], error) {
	return r.findFirst(func(c *models.Customer) bool { return c.UserName == userName }), nil
}

// SelectCustomerByPhoneNumber retrieves a customer by exact phone number
func (r *InMemoryCustomerRepository) SelectCustomerByPhoneNumber(_ context.Context, phoneNumber string) (mo.Option[*models.Customer], error) {
	return r.findFirst(func(c *models.Customer) bool { return c.PhoneNumber == phoneNumber }), nil
}

func (r *InMemoryCustomerRepository) findFirst(match func(*models.Customer) bool) mo.Option[*models.Customer] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.customers {
		if match(c) {
			return mo.Some(c.Clone())
		}
	}
	return mo.None[*models.Customer]()
}

// ExistsByID checks whether a customer with the given id exists
func (r *InMemoryCustomerRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.customers[id]
	return ok, nil
}

// Save inserts or updates a customer
func (r *InMemoryCustomerRepository) Save(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(customer)
}

// SaveAll applies every save or none of them.
func (r *InMemoryCustomerRepository) SaveAll(_ context.Context, customers []*models.Customer) ([]*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[int64]*models.Customer, len(r.customers))
	for id, c := range r.customers {
		snapshot[id] = c
	}
	lastID := r.lastID

	saved := make([]*models.Customer, 0, len(customers))
	for _, customer := range customers {
		s, err := r.saveLocked(customer)
		if err != nil {
			r.customers = snapshot
			r.lastID = lastID
			return nil, err
		}
		saved = append(saved, s)
	}

	return saved, nil
}

// DeleteByID removes a customer; a missing id is ignored
func (r *InMemoryCustomerRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.customers, id)
	return nil
}

func (r *InMemoryCustomerRepository) saveLocked(customer *models.Customer) (*models.Customer, error) {
	if customer == nil {
		return nil, models.ErrInvalidInput("customer is required")
	}
	if customer.UserName == "" || customer.Name == "" || customer.PhoneNumber == "" {
		return nil, models.ErrInvalidInput("customer violates constraint customers_not_empty")
	}

	for id, existing := range r.customers {
		if id == customer.ID {
			continue
		}
		if existing.PhoneNumber == customer.PhoneNumber {
			return nil, models.ErrPhoneNumberTaken(customer.PhoneNumber)
		}
		if existing.UserName == customer.UserName {
			return nil, models.ErrConflictWithMsg(fmt.Sprintf("User-Name %s taken", customer.UserName))
		}
	}

	stored := customer.Clone()
	if stored.ID == 0 {
		r.lastID++
		stored.ID = r.lastID
	} else if stored.ID > r.lastID {
		r.lastID = stored.ID
	}
	r.customers[stored.ID] = stored

	return stored.Clone(), nil
}
