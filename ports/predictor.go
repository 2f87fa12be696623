package ports

import (
	"context"

	"datacheck/domain/loan"
)

// Predictor calls the remote prediction service
type Predictor interface {
	// Predict posts an encoded form payload and decodes the response
	Predict(ctx context.Context, payload []byte) (*loan.Response, error)
	// SubmitBatch posts headerless CSV records. The response is not decoded.
	SubmitBatch(ctx context.Context, records []byte) error
}
