package loan

import (
	"fmt"
	"slices"
)

// Allowed values for the categorical application fields
var (
	GenderOptions        = []string{"Male", "Female"}
	MarriedOptions       = []string{"Yes", "No"}
	DependentsOptions    = []string{"0", "1", "2", "3+"}
	EducationOptions     = []string{"Graduate", "Not Graduate"}
	SelfEmployedOptions  = []string{"Yes", "No"}
	PropertyAreaOptions  = []string{"Semiurban", "Urban", "Rural"}
	CreditHistoryOptions = []string{"0", "1"}
)

// Application holds the eleven fields of the prediction form
type Application struct {
	Gender            string  `json:"gender"`
	Married           string  `json:"married"`
	Dependents        string  `json:"dependents"`
	Education         string  `json:"education"`
	SelfEmployed      string  `json:"self_employed"`
	ApplicationIncome float64 `json:"application_income"`
	CoApplicantIncome float64 `json:"co_applicant_income"`
	LoanAmount        float64 `json:"loan_amount"`
	LoanAmountTerm    float64 `json:"loan_amount_term"`
	CreditHistory     string  `json:"credit_history"`
	PropertyArea      string  `json:"property_area"`
}

// DefaultApplication returns the form's initial state: first option of every
// select box and zero for every number
func DefaultApplication() Application {
	return Application{
		Gender:        GenderOptions[0],
		Married:       MarriedOptions[0],
		Dependents:    DependentsOptions[0],
		Education:     EducationOptions[0],
		SelfEmployed:  SelfEmployedOptions[0],
		CreditHistory: CreditHistoryOptions[0],
		PropertyArea:  PropertyAreaOptions[0],
	}
}

// Validate checks every categorical field against its option set
func (a Application) Validate() error {
	fields := []struct {
		name    string
		value   string
		options []string
	}{
		{"gender", a.Gender, GenderOptions},
		{"married", a.Married, MarriedOptions},
		{"dependents", a.Dependents, DependentsOptions},
		{"education", a.Education, EducationOptions},
		{"self_employed", a.SelfEmployed, SelfEmployedOptions},
		{"credit_history", a.CreditHistory, CreditHistoryOptions},
		{"property_area", a.PropertyArea, PropertyAreaOptions},
	}
	for _, f := range fields {
		if !slices.Contains(f.options, f.value) {
			return fmt.Errorf("%s: %q is not one of %v", f.name, f.value, f.options)
		}
	}
	return nil
}

// Label is the binary loan status shown to the user
type Label string

const (
	Positive Label = "Positive"
	Negative Label = "Negative"
)

// PositiveThreshold is the score above which a prediction is Positive
const PositiveThreshold = 0.5

// LabelFor thresholds a score; exactly PositiveThreshold is Negative
func LabelFor(score float64) Label {
	if score > PositiveThreshold {
		return Positive
	}
	return Negative
}

// Response is the body returned by the prediction service
type Response struct {
	Prediction *float64 `json:"prediction"`
}
