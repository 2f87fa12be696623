package validation

import (
	"context"
	"fmt"
	"testing"

	"datacheck/domain/check"
	"datacheck/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureLabelCorrelationClassification(t *testing.T) {
	rows := make([][]string, 20)
	for i := range rows {
		label, leak := "N", "b"
		if i%4 < 2 {
			label, leak = "Y", "a"
		}
		rows[i] = []string{leak, "same", label}
	}
	ds := labelled(t, []string{"leak", "constant", "Loan_Status"}, rows)

	result, err := NewFeatureLabelCorrelation().AddConditionFeaturePPSLessThan(0.8).Run(context.Background(), ds)
	require.NoError(t, err)

	scores := result.Value.(map[string]float64)
	assert.InDelta(t, 1.0, scores["leak"], 1e-9)
	assert.Equal(t, 0.0, scores["constant"])

	first := firstCondition(t, result)
	assert.Equal(t, "Features' Predictive Power Score is less than 0.8", first.Condition)
	assert.Equal(t, check.StatusFail, first.Status)
	assert.Equal(t, "Found 1 out of 2 features with PPS above threshold: {'leak': '1'}", first.MoreInfo)
}

func TestFeatureLabelCorrelationRegression(t *testing.T) {
	rows := make([][]string, 20)
	for i := range rows {
		y := fmt.Sprint(i + 1)
		rows[i] = []string{y, "same", y}
	}
	ds := labelled(t, []string{"copy", "constant", "amount"}, rows)

	result, err := NewFeatureLabelCorrelation().AddConditionFeaturePPSLessThan(0.9).Run(context.Background(), ds)
	require.NoError(t, err)

	scores := result.Value.(map[string]float64)
	assert.Greater(t, scores["copy"], 0.7)
	assert.Equal(t, 0.0, scores["constant"])
	assert.Equal(t, check.StatusPass, firstCondition(t, result).Status)
}

func TestFeatureLabelCorrelationErrors(t *testing.T) {
	_, err := NewFeatureLabelCorrelation().Run(context.Background(), unlabelled(t, []string{"x"}, nil))
	assert.ErrorIs(t, err, core.ErrLabelRequired)

	_, err = NewFeatureLabelCorrelation().Run(context.Background(), labelled(t, []string{"x", "y"}, [][]string{{"1", "Y"}}))
	assert.ErrorIs(t, err, core.ErrInsufficientSamples)
}
