package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := MalformedFile("train.csv", stderrors.New("bad quote"))
	wrapped := Wrap(base, "reading uploads")

	assert.Equal(t, CodeMalformedFile, GetCode(wrapped))
	assert.Equal(t, "reading uploads: cannot read train.csv: bad quote", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrapf(stderrors.New("boom"), "step %d", 2)
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "step 2: boom", wrapped.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x"))
	assert.Nil(t, WithCode(CodeInvalidInput, nil))
}

func TestGetCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", ExternalServiceError("prediction", stderrors.New("refused")))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeExternalService, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{MissingInput("x"), http.StatusBadRequest},
		{InvalidInput("x"), http.StatusBadRequest},
		{MalformedFile("f", nil), http.StatusBadRequest},
		{CheckFailed("Percent Of Nulls", nil), http.StatusUnprocessableEntity},
		{ExternalServiceError("prediction", nil), http.StatusBadGateway},
		{ConfigInvalid("x"), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestMessage(t *testing.T) {
	err := CheckFailed("Feature Drift", stderrors.New("no shared features"))
	assert.Equal(t, "Feature Drift check failed", Message(err))
	assert.Equal(t, "plain", Message(stderrors.New("plain")))
}
