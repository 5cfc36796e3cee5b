package models

// ImportJob represents a single customer queued for asynchronous import
type ImportJob struct {
	BatchID  string   `json:"batch_id"`
	Customer Customer `json:"customer"`
	Attempt  int      `json:"attempt"`
}

// ImportBatch is returned to the caller after a batch has been queued
type ImportBatch struct {
	BatchID string `json:"batch_id"`
	Queued  int    `json:"queued"`
}

// Import outcome labels
const (
	ImportOutcomeImported = "imported"
	ImportOutcomeRejected = "rejected"
	ImportOutcomeRetried  = "retried"
	ImportOutcomeFailed   = "failed"
)

// CanRetry checks if a job may be requeued
func (j *ImportJob) CanRetry(maxRetries int) bool {
	return j.Attempt+1 < maxRetries
}
