package validation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"datacheck/domain/check"
	"datacheck/domain/dataset"
	"datacheck/ports"

	"github.com/rs/zerolog"
)

// condition pairs a declared condition with its evaluator
type condition[T any] struct {
	check.Condition
	eval func(T) (bool, string)
}

// base carries the identity and conditions shared by every check. T is the
// type of the value the check computes.
type base[T any] struct {
	typ        string
	header     string
	summary    string
	params     map[string]interface{}
	conditions []condition[T]
}

func newBase[T any](typ, header, summary string) base[T] {
	return base[T]{
		typ:     typ,
		header:  header,
		summary: summary,
		params:  map[string]interface{}{},
	}
}

// Type returns the check's type name
func (b *base[T]) Type() string {
	return b.typ
}

// Conditions returns the declared conditions in the order they were added
func (b *base[T]) Conditions() []check.Condition {
	out := make([]check.Condition, len(b.conditions))
	for i, c := range b.conditions {
		out[i] = c.Condition
	}
	return out
}

func (b *base[T]) addCondition(name string, params map[string]interface{}, eval func(T) (bool, string)) {
	b.conditions = append(b.conditions, condition[T]{
		Condition: check.Condition{Name: name, Params: params},
		eval:      eval,
	})
}

// finish evaluates the conditions against value and assembles the result
func (b *base[T]) finish(value T) *check.Result {
	results := make([]check.ConditionResult, 0, len(b.conditions))
	for _, c := range b.conditions {
		status := check.StatusFail
		passed, info := c.eval(value)
		if passed {
			status = check.StatusPass
		}
		results = append(results, check.ConditionResult{
			Status:    status,
			Condition: c.Name,
			MoreInfo:  info,
		})
	}
	return &check.Result{
		Type: "CheckResult",
		Check: check.Info{
			Type:    b.typ,
			Name:    b.header,
			Summary: b.summary,
			Params:  b.params,
		},
		Header:            b.header,
		Value:             value,
		ConditionsResults: results,
		Display:           []interface{}{},
	}
}

// formatPercent renders a ratio as a percentage with at most two decimals
func formatPercent(ratio float64) string {
	pct := math.Round(ratio*10000) / 100
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// formatNumber renders a float with at most two decimals
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// formatScores renders column scores sorted by column name, e.g. {'a': '0.5'}
func formatScores(scores map[string]string) string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("'%s': '%s'", k, scores[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// kindOf infers the column kind over the values of both datasets
func kindOf(train, test []string) dataset.Kind {
	combined := make([]string, 0, len(train)+len(test))
	combined = append(combined, train...)
	combined = append(combined, test...)
	return dataset.InferKind(combined)
}

// Runner executes library checks and logs each run
type Runner struct {
	logger zerolog.Logger
}

// NewRunner creates a check runner
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

var _ ports.CheckRunner = (*Runner)(nil)

// RunSingle runs a check against one dataset
func (r *Runner) RunSingle(ctx context.Context, c ports.SingleDatasetCheck, ds *dataset.Dataset) (*check.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := c.Run(ctx, ds)
	r.logRun(c, start, result, err)
	return result, err
}

// RunTrainTest runs a check comparing train and test datasets
func (r *Runner) RunTrainTest(ctx context.Context, c ports.TrainTestCheck, train, test *dataset.Dataset) (*check.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := c.Run(ctx, train, test)
	r.logRun(c, start, result, err)
	return result, err
}

func (r *Runner) logRun(c ports.Check, start time.Time, result *check.Result, err error) {
	if err != nil {
		r.logger.Warn().Err(err).Str("check", c.Type()).Dur("elapsed", time.Since(start)).Msg("check run failed")
		return
	}
	event := r.logger.Debug().Str("check", c.Type()).Dur("elapsed", time.Since(start))
	if first, ok := result.FirstCondition(); ok {
		event = event.Str("status", first.Status)
	}
	event.Msg("check run completed")
}
