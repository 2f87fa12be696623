package ui

import (
	"fmt"
	"net/http"

	"datacheck/domain/check"
	"datacheck/domain/core"
	"datacheck/domain/dataset"
	"datacheck/internal/errors"
	"datacheck/internal/integrity"
)

// MissingDatasetsMessage is shown when a check is requested without both uploads
const MissingDatasetsMessage = "Please upload your datasets to get started"

type integrityPage struct {
	Title    string
	Checks   []check.Name
	Selected check.Name
	View     *integrity.View
	Message  string
	Error    string
}

func (a *App) newIntegrityPage() *integrityPage {
	checks := a.dispatcher.Names()
	page := &integrityPage{
		Title:  "Train Test Validation",
		Checks: checks,
	}
	if len(checks) > 0 {
		page.Selected = checks[0]
	}
	return page
}

func (a *App) handleIntegrityPage(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "integrity.html", a.newIntegrityPage())
}

// handleIntegrityCheck runs the selected check on the uploaded train and test files
func (a *App) handleIntegrityCheck(w http.ResponseWriter, r *http.Request) {
	page := a.newIntegrityPage()

	name, train, test, err := a.integrityInput(w, r)
	if name != "" {
		page.Selected = name
	}
	if err != nil {
		a.renderIntegrityError(w, page, err)
		return
	}

	result, err := a.dispatcher.Dispatch(r.Context(), page.Selected, train, test)
	if err != nil {
		a.renderIntegrityError(w, page, err)
		return
	}
	view, err := integrity.NewView(result)
	if err != nil {
		a.renderIntegrityError(w, page, errors.Wrapf(err, "failed to render %s result", page.Selected))
		return
	}
	page.View = view
	a.renderTemplate(w, http.StatusOK, "integrity.html", page)
}

// integrityInput collects the check selection and both datasets. Both files
// must be present before either is parsed.
func (a *App) integrityInput(w http.ResponseWriter, r *http.Request) (check.Name, *dataset.Frame, *dataset.Frame, error) {
	if err := a.parseUpload(w, r); err != nil {
		return "", nil, nil, err
	}
	name := check.Name(r.FormValue("check"))
	train, test, err := a.integrityFiles(r)
	return name, train, test, err
}

// integrityFiles reads the train and test uploads of an already parsed request
func (a *App) integrityFiles(r *http.Request) (*dataset.Frame, *dataset.Frame, error) {
	if !hasFile(r, "train") || !hasFile(r, "test") {
		return nil, nil, errors.MissingInput(MissingDatasetsMessage)
	}
	train, err := a.readUpload(r, "train")
	if err != nil {
		return nil, nil, err
	}
	test, err := a.readUpload(r, "test")
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// renderIntegrityError shows missing input as a message with status 200 and
// everything else as an error panel
func (a *App) renderIntegrityError(w http.ResponseWriter, page *integrityPage, err error) {
	if errors.GetCode(err) == errors.CodeMissingInput {
		page.Message = errors.Message(err)
		a.renderTemplate(w, http.StatusOK, "integrity.html", page)
		return
	}
	a.logger.Error().Err(err).Str("check", page.Selected.String()).Msg("integrity check failed")
	err = publicError(err)
	page.Error = err.Error()
	if core.IsDatasetError(err) {
		page.Error = fmt.Sprintf("The uploaded datasets do not fit this check. %v", err)
	}
	a.renderTemplate(w, errors.HTTPStatus(err), "integrity.html", page)
}

// publicError replaces errors that carry no application code, so internal
// details are never shown to the user
func publicError(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	return errors.InternalError("internal error")
}
