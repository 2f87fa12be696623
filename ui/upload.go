package ui

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"datacheck/domain/dataset"
	"datacheck/internal/errors"
)

const (
	defaultMaxUploadBytes = 50 << 20
	multipartMemory       = 32 << 20
)

// parseUpload parses a multipart body within the configured size limit. A
// body that is not multipart simply carries no files.
func (a *App) parseUpload(w http.ResponseWriter, r *http.Request) error {
	limit := a.config.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || stderrors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.InvalidInput(fmt.Sprintf("upload exceeds the %d MB limit", limit>>20))
	}
	return errors.WithCode(errors.CodeInvalidInput, err)
}

// hasFile reports whether the parsed request carries a file in field
func hasFile(r *http.Request, field string) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File[field]) > 0
}

// readUpload parses the file uploaded in field
func (a *App) readUpload(r *http.Request, field string) (*dataset.Frame, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, errors.MissingInput(fmt.Sprintf("no file uploaded as %s", field))
	}
	defer file.Close()
	return a.reader.Read(file, header.Filename)
}
