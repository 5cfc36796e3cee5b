package worker

//go:generate mockgen -source=processor.go -destination=mocks/mocks.go -package=mocks CustomerAdder,JobPublisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/telemetry"
)

// CustomerAdder stores a single customer under the add rules
type CustomerAdder interface {
	AddCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}

// JobPublisher requeues jobs that failed transiently
type JobPublisher interface {
	Publish(ctx context.Context, job *models.ImportJob) error
}

// ImportProcessor processes import jobs from the queue
type ImportProcessor struct {
	customers  CustomerAdder
	publisher  JobPublisher
	metrics    *telemetry.Metrics
	maxRetries int
	logger     *slog.Logger
}

// NewImportProcessor creates a new import processor
func NewImportProcessor(
	customers CustomerAdder,
	publisher JobPublisher,
	metrics *telemetry.Metrics,
	maxRetries int,
	logger *slog.Logger,
) *ImportProcessor {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ImportProcessor{
		customers:  customers,
		publisher:  publisher,
		metrics:    metrics,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Process handles a single import job. Business rule violations are final and
// the job is dropped; any other failure is requeued until maxRetries attempts
// have been made.
func (p *ImportProcessor) Process(ctx context.Context, job *models.ImportJob) error {
	customer := job.Customer

	saved, err := p.customers.AddCustomer(ctx, &customer)
	if err == nil {
		p.metrics.ObserveImport(models.ImportOutcomeImported)
		p.logger.Info("customer imported",
			slog.String("batch_id", job.BatchID),
			slog.Int64("customer_id", saved.ID),
		)
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		p.metrics.ObserveImport(models.ImportOutcomeRejected)
		p.logger.Warn("customer import rejected",
			slog.String("batch_id", job.BatchID),
			slog.String("phone_number", customer.PhoneNumber),
			slog.String("code", appErr.Code),
			slog.String("reason", appErr.Message),
		)
		return nil
	}

	return p.handleFailure(ctx, job, err)
}

// handleFailure requeues the job or gives up once attempts are exhausted
func (p *ImportProcessor) handleFailure(ctx context.Context, job *models.ImportJob, importErr error) error {
	if !job.CanRetry(p.maxRetries) {
		p.metrics.ObserveImport(models.ImportOutcomeFailed)
		p.logger.Error("customer import permanently failed after max retries",
			slog.String("batch_id", job.BatchID),
			slog.Int("attempt", job.Attempt+1),
			slog.Int("max_retries", p.maxRetries),
			slog.String("error", importErr.Error()),
		)
		return fmt.Errorf("import failed after %d attempts: %w", job.Attempt+1, importErr)
	}

	retry := *job
	retry.Attempt++

	if err := p.publisher.Publish(ctx, &retry); err != nil {
		p.metrics.ObserveImport(models.ImportOutcomeFailed)
		p.logger.Error("failed to requeue import job",
			slog.String("batch_id", job.BatchID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to requeue import job: %w", err)
	}

	p.metrics.ObserveImport(models.ImportOutcomeRetried)
	p.logger.Info("customer import will be retried",
		slog.String("batch_id", job.BatchID),
		slog.Int("attempt", retry.Attempt),
		slog.Int("max_retries", p.maxRetries),
		slog.String("error", importErr.Error()),
	)

	return nil
}
