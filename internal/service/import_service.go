package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/queue"
)

// ImportService queues customers for asynchronous import by the worker
type ImportService interface {
	Enqueue(ctx context.Context, req *ImportRequest) (*models.ImportBatch, error)
}

type importService struct {
	queueClient queue.Client
	logger      *slog.Logger
}

// NewImportService creates a new import service
func NewImportService(queueClient queue.Client, logger *slog.Logger) ImportService {
	return &importService{
		queueClient: queueClient,
		logger:      logger,
	}
}

// Enqueue publishes one job per customer under a shared batch id. Jobs that
// fail to publish are logged and skipped.
func (s *importService) Enqueue(ctx context.Context, req *ImportRequest) (*models.ImportBatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()

	queuedCount := 0
	for _, customer := range req.Customers {
		job := &models.ImportJob{
			BatchID:  batchID,
			Customer: customer,
		}

		if err := s.queueClient.Publish(ctx, job); err != nil {
			s.logger.Error("failed to queue customer import",
				slog.String("batch_id", batchID),
				slog.String("phone_number", customer.PhoneNumber),
				slog.String("error", err.Error()),
			)
			continue
		}
		queuedCount++
	}

	if queuedCount == 0 {
		return nil, fmt.Errorf("failed to queue import batch %s", batchID)
	}

	s.logger.Info("import batch queued",
		slog.String("batch_id", batchID),
		slog.Int("customers_queued", queuedCount),
	)

	return &models.ImportBatch{
		BatchID: batchID,
		Queued:  queuedCount,
	}, nil
}
