package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const approvedBody = `{
	"success": true,
	"result": {
		"status": "Loan Approved",
		"status_class": "success",
		"eligibility_score": 82,
		"estimated_emi": 10624.57,
		"emi_ratio": 17.7,
		"reasons": ["Strong credit history"],
		"criteria_scores": {"CIBIL Score": "Excellent", "Income": "Good"},
		"recommendation": "You qualify for the requested amount.",
		"loan_details": {
			"amount": 500000,
			"tenure": 5,
			"estimated_interest_rate": 10.5,
			"processing_fee": 5000,
			"total_payable": 637474.2
		},
		"ml_prediction": {"prediction": "Approved", "confidence": 0.914}
	}
}`

type recordedRequest struct {
	Path string
	Body map[string]interface{}
}

// fakeService stands in for the loan scoring service.
type fakeService struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest

	calculate func(w http.ResponseWriter, body map[string]interface{})
	chatbot   func(w http.ResponseWriter, body map[string]interface{})
	translate func(w http.ResponseWriter, body map[string]interface{})
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		calculate: func(w http.ResponseWriter, _ map[string]interface{}) {
			writeJSON(w, http.StatusOK, approvedBody)
		},
		chatbot: func(w http.ResponseWriter, body map[string]interface{}) {
			writeJSON(w, http.StatusOK, fmt.Sprintf(`{"success": true, "response": "You asked: %s", "is_loan_related": true}`, body["message"]))
		},
		translate: func(w http.ResponseWriter, body map[string]interface{}) {
			writeJSON(w, http.StatusOK, fmt.Sprintf(`{"success": true, "translated_text": "[%s] %s"}`, body["target_lang"], body["text"]))
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/calculate_loan", f.handle(func() func(http.ResponseWriter, map[string]interface{}) { return f.calculate }))
	mux.HandleFunc("/api/chatbot", f.handle(func() func(http.ResponseWriter, map[string]interface{}) { return f.chatbot }))
	mux.HandleFunc("/api/translate", f.handle(func() func(http.ResponseWriter, map[string]interface{}) { return f.translate }))
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path, nil)
		writeJSON(w, http.StatusOK, `{"status": "healthy", "version": "2.1.0", "frontend_built": true, "timestamp": "2026-10-19T09:00:00"}`)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeService) handle(pick func() func(http.ResponseWriter, map[string]interface{})) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		f.record(r.URL.Path, body)
		pick()(w, body)
	}
}

func (f *fakeService) record(path string, body map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{Path: path, Body: body})
}

func (f *fakeService) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	content := fmt.Sprintf(`app:
  name: loanctl-test
scoring:
  base_url: %q
  path_prefix: /api
  timeout: 5000
logging:
  level: error
  format: json
  output: stderr
metrics:
  enabled: false
session:
  default_language: en
`, baseURL)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

type cmdResult struct {
	out    string
	errOut string
	err    error
}

func execute(t *testing.T, configPath, stdin string, args ...string) cmdResult {
	t.Helper()
	root := NewRootCommand()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", configPath}, args...))

	err := root.Execute()
	return cmdResult{out: out.String(), errOut: errOut.String(), err: err}
}

const validApplicationYAML = `bank_balance: 250000
cibil_score: 780
loan_amount: 500000
monthly_income: 60000
loan_tenure: 5
age: 35
employment_type: Permanent
income_source: Salary
existing_loans: "No"
emi_existing: 0
`
