package ports

import (
	"context"

	"github.com/csg33k/churn-advisor/internal/domain"
)

// Predictor defines the prediction backend port.
type Predictor interface {
	// Predict sends the payload to the backend and returns the validated
	// response. Errors are *domain.RequestError, *domain.ParseError or
	// *domain.NetworkError.
	Predict(ctx context.Context, payload domain.FormPayload) (*domain.Prediction, error)
}

// SequenceStore orders submissions that target the same result container.
type SequenceStore interface {
	// Begin returns the next sequence number for container, starting at 1.
	Begin(ctx context.Context, container string) (uint64, error)
	// IsLatest reports whether seq is still the newest submission for container.
	IsLatest(ctx context.Context, container string, seq uint64) (bool, error)
}

// SubmissionJournal defines persistence of completed submissions.
type SubmissionJournal interface {
	Record(ctx context.Context, e *domain.JournalEntry) error
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}
