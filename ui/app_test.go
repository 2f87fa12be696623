package ui

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"datacheck/adapters/tabular"
	"datacheck/domain/check"
	"datacheck/domain/core"
	"datacheck/domain/dataset"
	"datacheck/domain/loan"
	"datacheck/internal/errors"
	"datacheck/internal/logging"
	"datacheck/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Names() []check.Name {
	return check.All()
}

func (m *mockDispatcher) Dispatch(ctx context.Context, name check.Name, train, test *dataset.Frame) (*check.Result, error) {
	args := m.Called(ctx, name, train, test)
	result, _ := args.Get(0).(*check.Result)
	return result, args.Error(1)
}

type mockPredictions struct {
	mock.Mock
}

func (m *mockPredictions) PredictApplication(ctx context.Context, app loan.Application) (loan.Label, error) {
	args := m.Called(ctx, app)
	return args.Get(0).(loan.Label), args.Error(1)
}

func (m *mockPredictions) SubmitBatch(ctx context.Context, frame *dataset.Frame) error {
	return m.Called(ctx, frame).Error(0)
}

const (
	trainCSV = "Gender,ApplicantIncome,Loan_Status\nMale,5000,Y\nFemale,3000,N\n"
	testCSV  = "Gender,ApplicantIncome\nMale,4000\n"
)

type testApp struct {
	app         *App
	dispatcher  *mockDispatcher
	predictions *mockPredictions
}

func newTestApp(t *testing.T, config Config) *testApp {
	t.Helper()
	ta := &testApp{dispatcher: &mockDispatcher{}, predictions: &mockPredictions{}}
	app, err := NewApp(config, ta.dispatcher, ta.predictions, tabular.NewReader(logging.Nop()), logging.Nop())
	require.NoError(t, err)
	ta.app = app
	return ta
}

func (ta *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, target string, fields, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, content := range files {
		part, err := w.CreateFormFile(name, name+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func rows(n int) interface{} {
	return mock.MatchedBy(func(f *dataset.Frame) bool { return f != nil && f.NumRows() == n })
}

func TestHealthAndIndex(t *testing.T) {
	ta := newTestApp(t, Config{})

	rec := ta.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = ta.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data Integrity")

	rec = ta.do(httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIntegrityPageListsChecks(t *testing.T) {
	rec := newTestApp(t, Config{}).do(httptest.NewRequest(http.MethodGet, "/integrity", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	for _, name := range check.All() {
		assert.Contains(t, rec.Body.String(), `<option value="`+name.String()+`"`)
	}
}

func TestIntegrityMissingUploads(t *testing.T) {
	tests := map[string]map[string]string{
		"no files":   {},
		"train only": {"train": trainCSV},
		"test only":  {"test": testCSV},
	}
	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			ta := newTestApp(t, Config{})
			rec := ta.do(multipartRequest(t, "/integrity", map[string]string{"check": "Feature Drift"}, files))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), MissingDatasetsMessage)
			ta.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestIntegrityRendersResult(t *testing.T) {
	ta := newTestApp(t, Config{})
	result := &check.Result{
		Header: "Percent Of Nulls",
		Check:  check.Info{Summary: "Percent of <b>missing</b> values in each column."},
		ConditionsResults: []check.ConditionResult{
			{Status: check.StatusPass, Condition: "Percent of null values in each column is not greater than 95%"},
			{Status: check.StatusFail, Condition: "second condition"},
		},
	}
	ta.dispatcher.On("Dispatch", mock.Anything, check.PercentOfNulls, rows(2), rows(1)).Return(result, nil).Once()

	rec := ta.do(multipartRequest(t, "/integrity",
		map[string]string{"check": "Percent Of Nulls"},
		map[string]string{"train": trainCSV, "test": testCSV},
	))

	assert.Equal(t, http.StatusOK, rec.Code)
	ta.dispatcher.AssertExpectations(t)
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>Percent Of Nulls</h2>")
	assert.Contains(t, body, "<b>missing</b>")
	assert.Contains(t, body, "&#34;Status&#34;: &#34;PASS&#34;")
	assert.NotContains(t, body, "second condition")
	assert.Contains(t, body, `<option value="Percent Of Nulls" selected>`)
}

func TestIntegrityUnknownCheckRendersNothing(t *testing.T) {
	ta := newTestApp(t, Config{})
	ta.dispatcher.On("Dispatch", mock.Anything, check.Name("Bogus"), mock.Anything, mock.Anything).Return(nil, nil)

	rec := ta.do(multipartRequest(t, "/integrity",
		map[string]string{"check": "Bogus"},
		map[string]string{"train": trainCSV, "test": testCSV},
	))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `class="result"`)
}

func TestIntegrityCheckFailure(t *testing.T) {
	ta := newTestApp(t, Config{})
	ta.dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.CheckFailed("Feature Drift", assert.AnError))

	rec := ta.do(multipartRequest(t, "/integrity",
		map[string]string{"check": "Feature Drift"},
		map[string]string{"train": trainCSV, "test": testCSV},
	))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Feature Drift check failed")
}

func TestIntegrityIncompatibleDatasets(t *testing.T) {
	ta := newTestApp(t, Config{})
	ta.dispatcher.On("Dispatch", mock.Anything, check.FeatureDrift, mock.Anything, mock.Anything).
		Return(nil, errors.CheckFailed("Feature Drift", core.ErrNoSharedFeatures))

	rec := ta.do(multipartRequest(t, "/integrity",
		map[string]string{"check": "Feature Drift"},
		map[string]string{"train": trainCSV, "test": testCSV},
	))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "The uploaded datasets do not fit this check.")
	assert.Contains(t, body, "share no feature columns")
}

func TestIntegrityHidesUncodedErrors(t *testing.T) {
	ta := newTestApp(t, Config{})
	ta.dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, stderrors.New("connection string leaked"))

	rec := ta.do(multipartRequest(t, "/integrity",
		map[string]string{"check": "Is Single Value"},
		map[string]string{"train": trainCSV, "test": testCSV},
	))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotContains(t, rec.Body.String(), "connection string leaked")
}

func TestIntegrityMalformedFile(t *testing.T) {
	ta := newTestApp(t, Config{})

	rec := ta.do(multipartRequest(t, "/integrity",
		map[string]string{"check": "Feature Drift"},
		map[string]string{"train": "a,b\n1,2,3\n", "test": testCSV},
	))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot read train.csv")
	ta.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadLimit(t *testing.T) {
	ta := newTestApp(t, Config{MaxUploadBytes: 64})

	rec := ta.do(multipartRequest(t, "/integrity", nil, map[string]string{
		"train": strings.Repeat("a,b\n", 100),
		"test":  testCSV,
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ta.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPredictionPageDefaults(t *testing.T) {
	rec := newTestApp(t, Config{}).do(httptest.NewRequest(http.MethodGet, "/prediction", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Prediction Form")
	assert.Contains(t, body, `name="loan_amount" value="0"`)
	// html/template escapes "+" in both attribute and text context
	assert.Contains(t, body, `<option value="3&#43;">3&#43;</option>`)
	assert.Contains(t, body, `<option value="Rural">Rural</option>`)
	assert.NotContains(t, body, "Loan Status")
}

func predictionForm() url.Values {
	return url.Values{
		"gender":              {"Male"},
		"married":             {"Yes"},
		"dependents":          {"0"},
		"education":           {"Graduate"},
		"self_employed":       {"No"},
		"application_income":  {"5000"},
		"co_applicant_income": {"0"},
		"loan_amount":         {"128"},
		"loan_amount_term":    {"360"},
		"credit_history":      {"1"},
		"property_area":       {"Urban"},
	}
}

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/prediction/form", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPredictionForm(t *testing.T) {
	ta := newTestApp(t, Config{})
	want := loan.Application{
		Gender: "Male", Married: "Yes", Dependents: "0", Education: "Graduate", SelfEmployed: "No",
		ApplicationIncome: 5000, CoApplicantIncome: 0, LoanAmount: 128, LoanAmountTerm: 360,
		CreditHistory: "1", PropertyArea: "Urban",
	}
	ta.predictions.On("PredictApplication", mock.Anything, want).Return(loan.Positive, nil).Once()

	rec := ta.do(formRequest(predictionForm()))

	assert.Equal(t, http.StatusOK, rec.Code)
	ta.predictions.AssertExpectations(t)
	assert.Contains(t, rec.Body.String(), "Loan Status: <strong>Positive</strong>")
	assert.Contains(t, rec.Body.String(), `name="application_income" value="5000"`)
}

func TestPredictionFormBadNumber(t *testing.T) {
	ta := newTestApp(t, Config{})
	form := predictionForm()
	form.Set("loan_amount", "lots")

	rec := ta.do(formRequest(form))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "loan_amount must be a number")
	ta.predictions.AssertNotCalled(t, "PredictApplication", mock.Anything, mock.Anything)
}

func TestPredictionFormServiceError(t *testing.T) {
	ta := newTestApp(t, Config{})
	ta.predictions.On("PredictApplication", mock.Anything, mock.Anything).
		Return(loan.Label(""), errors.ExternalServiceError("prediction", assert.AnError))

	rec := ta.do(formRequest(predictionForm()))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Loan Status")
}

func TestPredictionBatchMissingFile(t *testing.T) {
	ta := newTestApp(t, Config{})

	rec := ta.do(multipartRequest(t, "/prediction/batch", nil, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), MissingSourceMessage)
	ta.predictions.AssertNotCalled(t, "SubmitBatch", mock.Anything, mock.Anything)
}

func TestPredictionBatch(t *testing.T) {
	ta := newTestApp(t, Config{})
	ta.predictions.On("SubmitBatch", mock.Anything, rows(2)).Return(nil).Once()

	rec := ta.do(multipartRequest(t, "/prediction/batch", nil, map[string]string{"source": trainCSV}))

	assert.Equal(t, http.StatusOK, rec.Code)
	ta.predictions.AssertExpectations(t)
	assert.NotContains(t, rec.Body.String(), "Loan Status")
}

func TestAPIChecks(t *testing.T) {
	rec := newTestApp(t, Config{}).do(httptest.NewRequest(http.MethodGet, "/api/checks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Checks []checkInfo `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Checks, len(check.All()))
	assert.Equal(t, checkInfo{Name: "Is Single Value", Arity: 1}, body.Checks[0])
	assert.Equal(t, checkInfo{Name: "Train Test Samples Mix", Arity: 2}, body.Checks[8])
}

func TestAPIIntegrity(t *testing.T) {
	ta := newTestApp(t, Config{})
	result := &check.Result{
		Type:              "CheckResult",
		Header:            "Class Imbalance",
		ConditionsResults: []check.ConditionResult{{Status: check.StatusPass, Condition: "c"}},
	}
	ta.dispatcher.On("Dispatch", mock.Anything, check.ClassImbalance, rows(2), rows(1)).Return(result, nil)

	rec := ta.do(multipartRequest(t, "/api/integrity",
		map[string]string{"check": "Class Imbalance"},
		map[string]string{"train": trainCSV, "test": testCSV},
	))

	require.Equal(t, http.StatusOK, rec.Code)
	var got check.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Class Imbalance", got.Header)
	assert.Equal(t, check.StatusPass, got.ConditionsResults[0].Status)
}

func TestAPIIntegrityErrors(t *testing.T) {
	ta := newTestApp(t, Config{})

	rec := ta.do(multipartRequest(t, "/api/integrity", map[string]string{"check": "Feature Drift"}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), MissingDatasetsMessage)

	rec = ta.do(multipartRequest(t, "/api/integrity", nil, map[string]string{"train": trainCSV, "test": testCSV}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ta.do(multipartRequest(t, "/api/integrity",
		map[string]string{"check": "Bogus"},
		map[string]string{"train": trainCSV, "test": "not,a\n\"broken"},
	))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	ta.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAPIIntegrityHidesUncodedErrors(t *testing.T) {
	ta := newTestApp(t, Config{})
	ta.dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, stderrors.New("connection string leaked"))

	rec := ta.do(multipartRequest(t, "/api/integrity",
		map[string]string{"check": "Is Single Value"},
		map[string]string{"train": trainCSV, "test": testCSV},
	))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeInternalError, body["code"])
	assert.Equal(t, "internal error", body["error"])
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	ta := newTestApp(t, Config{})
	rec := httptest.NewRecorder()

	ta.app.writeJSON(rec, http.StatusOK, map[string]interface{}{"value": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEqual(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "JSON encoding failed")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newTestApp(t, Config{}).do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	m := metrics.New()
	m.CountPrediction("form", "Positive")
	rec = newTestApp(t, Config{Metrics: m}).do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datacheck_predictions_total")
}
