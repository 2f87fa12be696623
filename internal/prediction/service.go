package prediction

import (
	"context"

	"datacheck/domain/core"
	"datacheck/domain/dataset"
	"datacheck/domain/loan"
	"datacheck/internal/errors"
	"datacheck/internal/metrics"
	"datacheck/ports"

	"github.com/rs/zerolog"
)

// Submission paths, used as metric labels
const (
	PathForm  = "form"
	PathBatch = "batch"
)

// Service encodes submissions and sends them to the prediction service
type Service struct {
	predictor ports.Predictor
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewService creates a prediction service. m may be nil.
func NewService(predictor ports.Predictor, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		predictor: predictor,
		metrics:   m,
		logger:    logger.With().Str("component", "prediction").Logger(),
	}
}

// PredictApplication scores one application and thresholds the score
func (s *Service) PredictApplication(ctx context.Context, app loan.Application) (loan.Label, error) {
	if err := app.Validate(); err != nil {
		return "", errors.WithCode(errors.CodeInvalidInput, err)
	}
	payload, err := EncodeApplication(app)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode application")
	}

	resp, err := s.predictor.Predict(ctx, payload)
	if err != nil {
		s.metrics.CountPrediction(PathForm, metrics.OutcomeError)
		return "", err
	}
	if resp == nil || resp.Prediction == nil {
		s.metrics.CountPrediction(PathForm, metrics.OutcomeError)
		return "", errors.ExternalServiceError("prediction", core.ErrMissingPrediction)
	}

	label := loan.LabelFor(*resp.Prediction)
	s.metrics.CountPrediction(PathForm, string(label))
	s.logger.Info().Float64("prediction", *resp.Prediction).Str("label", string(label)).Msg("application scored")
	return label, nil
}

// SubmitBatch sends every row of frame in one request. The response is not
// inspected.
func (s *Service) SubmitBatch(ctx context.Context, frame *dataset.Frame) error {
	records, err := EncodeBatch(frame)
	if err != nil {
		return errors.Wrap(err, "failed to encode batch")
	}
	if err := s.predictor.SubmitBatch(ctx, records); err != nil {
		s.metrics.CountPrediction(PathBatch, metrics.OutcomeError)
		return err
	}
	s.metrics.CountPrediction(PathBatch, "submitted")
	s.logger.Info().Int("rows", frame.NumRows()).Int("bytes", len(records)).Msg("batch submitted")
	return nil
}
