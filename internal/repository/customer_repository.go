package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/mo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/telemetry"
)

// CustomerRepository defines the interface for customer data access.
// Lookups return mo.None when no row matches; errors are reserved for
// storage failures and constraint violations.
type CustomerRepository interface {
	FindAll(ctx context.Context) ([]*models.Customer, error)
	FindByID(ctx context.Context, id int64) (mo.Option[*models.Customer], error)
	FindByUserName(ctx context.Context, userName string) (mo.Option[*models.Customer], error)
	SelectCustomerByPhoneNumber(ctx context.Context, phoneNumber string) (mo.Option[*models.Customer], error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	// Save inserts the customer, or updates it when a record with the same id exists.
	// A zero id lets the store assign one.
	Save(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	// SaveAll saves every customer atomically.
	SaveAll(ctx context.Context, customers []*models.Customer) ([]*models.Customer, error)
	// DeleteByID removes the customer; deleting a missing id is not an error.
	DeleteByID(ctx context.Context, id int64) error
}

const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusConflict = "conflict"
	statusError    = "error"
)

const (
	pqUniqueViolation  = "23505"
	pqNotNullViolation = "23502"
	pqCheckViolation   = "23514"

	constraintPhoneNumber = "customers_phone_number_key"
	constraintUserName    = "customers_user_name_key"
)

// postgresCustomerRepository implements CustomerRepository using PostgreSQL
type postgresCustomerRepository struct {
	db      *sqlx.DB
	metrics *telemetry.Metrics
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sqlx.DB, metrics *telemetry.Metrics) CustomerRepository {
	return &postgresCustomerRepository{db: db, metrics: metrics}
}

// track starts a span for a repository method and returns the function that
// ends it and records the call in the DB metrics.
func (r *postgresCustomerRepository) track(ctx context.Context, method string) (context.Context, func(status string)) {
	start := time.Now()
	ctx, span := telemetry.Tracer().Start(ctx, "CustomerRepository."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "postgresql")),
	)

	return ctx, func(status string) {
		span.SetAttributes(attribute.String("db.status", status))
		if status == statusError {
			span.SetStatus(codes.Error, method+" failed")
		}
		span.End()
		r.metrics.ObserveDB(method, status, time.Since(start))
	}
}

// FindAll retrieves every customer ordered by id
func (r *postgresCustomerRepository) FindAll(ctx context.Context) ([]*models.Customer, error) {
	ctx, done := r.track(ctx, "find_all")
	status := statusOK
	defer func() { done(status) }()

	query := `
		SELECT id, user_name, name, phone_number
		FROM customers
		ORDER BY id`

	customers := []*models.Customer{}
	if err := r.db.SelectContext(ctx, &customers, query); err != nil {
		status = statusError
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, nil
}

// FindByID retrieves a customer by ID
func (r *postgresCustomerRepository) FindByID(ctx context.Context, id int64) (mo.Option[*models.Customer], error) {
	query := `
		SELECT id, user_name, name, phone_number
		FROM customers
		WHERE id = $1`

	return r.findOne(ctx, "find_by_id", query, id)
}

// FindByUserName retrieves a customer by user name
func (r *postgresCustomerRepository) FindByUserName(ctx context.Context, userName string) (mo.Option[*models.Customer], error) {
	query := `
		SELECT id, user_name, name, phone_number
		FROM customers
		WHERE user_name = $1`

	return r.findOne(ctx, "find_by_user_name", query, userName)
}

// SelectCustomerByPhoneNumber retrieves a customer by exact phone number
func (r *postgresCustomerRepository) SelectCustomerByPhoneNumber(ctx context.Context, phoneNumber string) (mo.Option[*models.Customer], error) {
	query := `
		SELECT id, user_name, name, phone_number
		FROM customers
		WHERE phone_number = $1`

	return r.findOne(ctx, "select_by_phone_number", query, phoneNumber)
}

func (r *postgresCustomerRepository) findOne(ctx context.Context, method, query string, arg any) (mo.Option[*models.Customer], error) {
	ctx, done := r.track(ctx, method)
	status := statusOK
	defer func() { done(status) }()

	customer := &models.Customer{}
	if err := r.db.GetContext(ctx, customer, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = statusNotFound
			return mo.None[*models.Customer](), nil
		}
		status = statusError
		return mo.None[*models.Customer](), fmt.Errorf("failed to get customer: %w", err)
	}

	return mo.Some(customer), nil
}

// ExistsByID checks whether a customer with the given id exists
func (r *postgresCustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	ctx, done := r.track(ctx, "exists_by_id")
	status := statusOK
	defer func() { done(status) }()

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, id); err != nil {
		status = statusError
		return false, fmt.Errorf("failed to check customer existence: %w", err)
	}
	if !exists {
		status = statusNotFound
	}

	return exists, nil
}

// Save inserts or updates a customer
func (r *postgresCustomerRepository) Save(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	ctx, done := r.track(ctx, "save")
	status := statusOK
	defer func() { done(status) }()

	saved, err := saveCustomer(ctx, r.db, customer)
	if err != nil {
		status = writeStatus(err)
		return nil, err
	}

	return saved, nil
}

// SaveAll saves all customers in a single transaction
func (r *postgresCustomerRepository) SaveAll(ctx context.Context, customers []*models.Customer) ([]*models.Customer, error) {
	ctx, done := r.track(ctx, "save_all")
	status := statusOK
	defer func() { done(status) }()

	if len(customers) == 0 {
		return []*models.Customer{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		status = statusError
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	saved := make([]*models.Customer, 0, len(customers))
	for _, customer := range customers {
		s, err := saveCustomer(ctx, tx, customer)
		if err != nil {
			status = writeStatus(err)
			return nil, err
		}
		saved = append(saved, s)
	}

	if err := tx.Commit(); err != nil {
		status = statusError
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return saved, nil
}

// DeleteByID removes a customer
func (r *postgresCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, done := r.track(ctx, "delete_by_id")
	status := statusOK
	defer func() { done(status) }()

	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		status = statusError
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		status = statusError
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		status = statusNotFound
	}

	return nil
}

// saveCustomer runs the insert or upsert on either the pool or a transaction
func saveCustomer(ctx context.Context, q sqlx.ExtContext, customer *models.Customer) (*models.Customer, error) {
	saved := &models.Customer{}

	if customer.ID == 0 {
		query := `
			INSERT INTO customers (user_name, name, phone_number)
			VALUES ($1, $2, $3)
			RETURNING id, user_name, name, phone_number`

		if err := sqlx.GetContext(ctx, q, saved, query, customer.UserName, customer.Name, customer.PhoneNumber); err != nil {
			return nil, mapWriteError(err, customer)
		}
		return saved, nil
	}

	query := `
		INSERT INTO customers (id, user_name, name, phone_number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET user_name = EXCLUDED.user_name,
		    name = EXCLUDED.name,
		    phone_number = EXCLUDED.phone_number
		RETURNING id, user_name, name, phone_number`

	if err := sqlx.GetContext(ctx, q, saved, query, customer.ID, customer.UserName, customer.Name, customer.PhoneNumber); err != nil {
		return nil, mapWriteError(err, customer)
	}

	// Explicit ids bypass the sequence; move it past them so generated ids stay free.
	syncSequence := `SELECT setval(pg_get_serial_sequence('customers', 'id'), GREATEST((SELECT MAX(id) FROM customers), 1))`
	if _, err := q.ExecContext(ctx, syncSequence); err != nil {
		return nil, fmt.Errorf("failed to sync customer id sequence: %w", err)
	}

	return saved, nil
}

// mapWriteError translates constraint violations into application errors
func mapWriteError(err error, customer *models.Customer) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("failed to save customer: %w", err)
	}

	switch pqErr.Code {
	case pqUniqueViolation:
		switch pqErr.Constraint {
		case constraintPhoneNumber:
			return models.ErrPhoneNumberTaken(customer.PhoneNumber)
		case constraintUserName:
			return models.ErrConflictWithMsg(fmt.Sprintf("User-Name %s taken", customer.UserName))
		default:
			return models.ErrConflictWithMsg(fmt.Sprintf("customer with id %d conflicts with an existing record", customer.ID))
		}
	case pqNotNullViolation, pqCheckViolation:
		return models.ErrInvalidInput(fmt.Sprintf("customer violates constraint %s", pqErr.Constraint))
	default:
		return fmt.Errorf("failed to save customer: %w", err)
	}
}

func writeStatus(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return statusConflict
	}
	return statusError
}
