package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"datacheck/domain/loan"
	"datacheck/internal/errors"
)

// MissingSourceMessage is shown when a batch run is requested without a file
const MissingSourceMessage = "Please upload your source data to get started"

type formOptions struct {
	Gender        []string
	Married       []string
	Dependents    []string
	Education     []string
	SelfEmployed  []string
	PropertyArea  []string
	CreditHistory []string
}

type predictionPage struct {
	Title   string
	Options formOptions
	Form    loan.Application
	Label   loan.Label
	Message string
	Error   string
}

func newPredictionPage() *predictionPage {
	return &predictionPage{
		Title: "Prediction",
		Options: formOptions{
			Gender:        loan.GenderOptions,
			Married:       loan.MarriedOptions,
			Dependents:    loan.DependentsOptions,
			Education:     loan.EducationOptions,
			SelfEmployed:  loan.SelfEmployedOptions,
			PropertyArea:  loan.PropertyAreaOptions,
			CreditHistory: loan.CreditHistoryOptions,
		},
		Form: loan.DefaultApplication(),
	}
}

func (a *App) handlePredictionPage(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "prediction.html", newPredictionPage())
}

// handlePredictionForm scores the application entered in the form
func (a *App) handlePredictionForm(w http.ResponseWriter, r *http.Request) {
	page := newPredictionPage()

	app, err := applicationFromRequest(r)
	if err != nil {
		a.renderPredictionError(w, page, err)
		return
	}
	page.Form = app

	label, err := a.predictions.PredictApplication(r.Context(), app)
	if err != nil {
		a.renderPredictionError(w, page, err)
		return
	}
	page.Label = label
	a.renderTemplate(w, http.StatusOK, "prediction.html", page)
}

// handlePredictionBatch forwards an uploaded file to the prediction service.
// The service's answer is not shown.
func (a *App) handlePredictionBatch(w http.ResponseWriter, r *http.Request) {
	page := newPredictionPage()

	if err := a.parseUpload(w, r); err != nil {
		a.renderPredictionError(w, page, err)
		return
	}
	if !hasFile(r, "source") {
		a.renderPredictionError(w, page, errors.MissingInput(MissingSourceMessage))
		return
	}
	frame, err := a.readUpload(r, "source")
	if err != nil {
		a.renderPredictionError(w, page, err)
		return
	}
	if err := a.predictions.SubmitBatch(r.Context(), frame); err != nil {
		a.renderPredictionError(w, page, err)
		return
	}
	a.renderTemplate(w, http.StatusOK, "prediction.html", page)
}

func (a *App) renderPredictionError(w http.ResponseWriter, page *predictionPage, err error) {
	if errors.GetCode(err) == errors.CodeMissingInput {
		page.Message = errors.Message(err)
		a.renderTemplate(w, http.StatusOK, "prediction.html", page)
		return
	}
	a.logger.Error().Err(err).Msg("prediction failed")
	err = publicError(err)
	page.Error = err.Error()
	a.renderTemplate(w, errors.HTTPStatus(err), "prediction.html", page)
}

// applicationFromRequest reads the eleven form fields. Blank numbers are zero.
func applicationFromRequest(r *http.Request) (loan.Application, error) {
	if err := r.ParseForm(); err != nil {
		return loan.Application{}, errors.WithCode(errors.CodeInvalidInput, err)
	}

	app := loan.Application{
		Gender:        r.PostFormValue("gender"),
		Married:       r.PostFormValue("married"),
		Dependents:    r.PostFormValue("dependents"),
		Education:     r.PostFormValue("education"),
		SelfEmployed:  r.PostFormValue("self_employed"),
		CreditHistory: r.PostFormValue("credit_history"),
		PropertyArea:  r.PostFormValue("property_area"),
	}
	numbers := []struct {
		field string
		dest  *float64
	}{
		{"application_income", &app.ApplicationIncome},
		{"co_applicant_income", &app.CoApplicantIncome},
		{"loan_amount", &app.LoanAmount},
		{"loan_amount_term", &app.LoanAmountTerm},
	}
	for _, n := range numbers {
		raw := strings.TrimSpace(r.PostFormValue(n.field))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return app, errors.InvalidInput(fmt.Sprintf("%s must be a number, got %q", n.field, raw))
		}
		*n.dest = v
	}
	return app, nil
}
