package prediction

import (
	"encoding/json"
	"strconv"
	"strings"

	"datacheck/adapters/tabular"
	"datacheck/domain/dataset"
	"datacheck/domain/loan"
)

// envelope is the JSON body of a form submission
type envelope struct {
	Data string `json:"data"`
}

// Record joins the eleven application fields into one comma separated record
// in the order the prediction service expects
func Record(app loan.Application) string {
	return strings.Join([]string{
		app.Gender,
		app.Married,
		app.Dependents,
		app.Education,
		app.SelfEmployed,
		formatNumber(app.ApplicationIncome),
		formatNumber(app.CoApplicantIncome),
		formatNumber(app.LoanAmount),
		formatNumber(app.LoanAmountTerm),
		app.CreditHistory,
		app.PropertyArea,
	}, ",")
}

// EncodeApplication wraps the record as {"data": "<record>"}
func EncodeApplication(app loan.Application) ([]byte, error) {
	return json.Marshal(envelope{Data: Record(app)})
}

// EncodeBatch serializes an uploaded frame as CSV without header and index.
// Unlike the form path the bytes are not wrapped in JSON; the client sends
// them as the form field "data".
func EncodeBatch(frame *dataset.Frame) ([]byte, error) {
	return tabular.EncodeCSV(frame, false)
}

// formatNumber uses the shortest decimal form, so 5000 stays "5000"
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
