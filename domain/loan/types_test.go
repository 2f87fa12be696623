package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{0.73, Positive},
		{0.2, Negative},
		{0.5, Negative},
		{0.5000001, Positive},
		{1, Positive},
		{0, Negative},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelFor(tt.score), "score %v", tt.score)
	}
}

func TestDefaultApplicationIsValid(t *testing.T) {
	app := DefaultApplication()
	assert.NoError(t, app.Validate())
	assert.Equal(t, "Male", app.Gender)
	assert.Equal(t, "Semiurban", app.PropertyArea)
	assert.Zero(t, app.LoanAmount)
}

func TestValidateRejectsUnknownOption(t *testing.T) {
	app := DefaultApplication()
	app.Dependents = "4"
	err := app.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dependents")
}
