package integrity

import (
	"context"
	"time"

	"datacheck/domain/check"
	"datacheck/domain/dataset"
	"datacheck/internal/errors"
	"datacheck/internal/metrics"
	"datacheck/ports"

	"github.com/rs/zerolog"
)

// Dispatcher maps a check selection to the routine that configures and runs it
type Dispatcher struct {
	runner   ports.CheckRunner
	routines map[check.Name]routine
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher over the built-in routines. m may be nil.
func NewDispatcher(runner ports.CheckRunner, m *metrics.Metrics, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		runner:   runner,
		routines: routines,
		metrics:  m,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Names lists the dispatchable checks in display order
func (d *Dispatcher) Names() []check.Name {
	names := make([]check.Name, 0, len(d.routines))
	for _, name := range check.All() {
		if _, ok := d.routines[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Dispatch runs the selected check. Train-only checks ignore test. An unknown
// selection yields a nil result and no error.
func (d *Dispatcher) Dispatch(ctx context.Context, name check.Name, train, test *dataset.Frame) (*check.Result, error) {
	run, ok := d.routines[name]
	if !ok {
		d.logger.Warn().Str("check", name.String()).Msg("no routine for selected check")
		return nil, nil
	}
	if train == nil {
		return nil, errors.MissingInput("train dataset is required")
	}
	if name.Arity() == 2 && test == nil {
		return nil, errors.MissingInput("test dataset is required")
	}

	start := time.Now()
	result, err := run(ctx, d.runner, train, test)
	elapsed := time.Since(start)
	if err != nil {
		d.metrics.ObserveCheck(name.String(), metrics.OutcomeError, elapsed)
		d.logger.Error().Err(err).Str("check", name.String()).Dur("elapsed", elapsed).Msg("check failed")
		return nil, errors.CheckFailed(name.String(), err)
	}

	outcome := metrics.OutcomeNone
	if first, ok := result.FirstCondition(); ok {
		outcome = metrics.OutcomeFail
		if first.Passed() {
			outcome = metrics.OutcomePass
		}
	}
	d.metrics.ObserveCheck(name.String(), outcome, elapsed)
	d.logger.Info().
		Str("check", name.String()).
		Str("outcome", outcome).
		Int("train_rows", train.NumRows()).
		Dur("elapsed", elapsed).
		Msg("check completed")
	return result, nil
}
