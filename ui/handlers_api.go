package ui

import (
	"net/http"

	"datacheck/domain/check"
	"datacheck/internal/errors"
)

type checkInfo struct {
	Name  string `json:"name"`
	Arity int    `json:"arity"`
}

// handleAPIChecks lists the available checks
func (a *App) handleAPIChecks(w http.ResponseWriter, r *http.Request) {
	names := a.dispatcher.Names()
	checks := make([]checkInfo, len(names))
	for i, name := range names {
		checks[i] = checkInfo{Name: name.String(), Arity: name.Arity()}
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"checks": checks})
}

// handleAPIIntegrity runs a check and returns the raw result. An unknown
// check yields 204 No Content without reading the uploads.
func (a *App) handleAPIIntegrity(w http.ResponseWriter, r *http.Request) {
	if err := a.parseUpload(w, r); err != nil {
		a.writeAPIError(w, err)
		return
	}
	name := check.Name(r.FormValue("check"))
	if name == "" {
		a.writeAPIError(w, errors.MissingInput("check is required"))
		return
	}
	if !name.Valid() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	train, test, err := a.integrityFiles(r)
	if err != nil {
		a.writeAPIError(w, err)
		return
	}

	result, err := a.dispatcher.Dispatch(r.Context(), name, train, test)
	if err != nil {
		a.writeAPIError(w, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	a.writeJSON(w, http.StatusOK, result)
}

func (a *App) writeAPIError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error().Err(err).Msg("api request failed")
	}
	err = publicError(err)
	a.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
