package service

import (
	"fmt"

	"github.com/Raymond9734/customer-registry/internal/models"
)

// MaxImportBatchSize bounds the number of customers accepted per import request
const MaxImportBatchSize = 1000

// ImportRequest represents a request to import customers asynchronously
type ImportRequest struct {
	Customers []models.Customer `json:"customers"`
}

// Validate performs validation on the import request
func (r *ImportRequest) Validate() error {
	if len(r.Customers) == 0 {
		return models.ErrInvalidInput("customers is required and cannot be empty")
	}
	if len(r.Customers) > MaxImportBatchSize {
		return models.ErrInvalidInput(fmt.Sprintf("cannot import more than %d customers at once", MaxImportBatchSize))
	}
	return nil
}
