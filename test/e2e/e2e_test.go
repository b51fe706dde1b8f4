// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-approval-client/internal/common/config"
	apperrors "loan-approval-client/internal/common/errors"
	"loan-approval-client/internal/common/logger"
	"loan-approval-client/internal/common/observability"
	"loan-approval-client/internal/common/scoring"
	chatassistant "loan-approval-client/internal/loan/chat-assistant"
	presentresult "loan-approval-client/internal/loan/present-result"
	submitapplication "loan-approval-client/internal/loan/submit-application"
	validateapplication "loan-approval-client/internal/loan/validate-application"
	"loan-approval-client/internal/models"
)

const approvedBody = `{
	"success": true,
	"result": {
		"status": "Loan Approved",
		"status_class": "success",
		"eligibility_score": 82,
		"estimated_emi": 10624.57,
		"emi_ratio": 17.7,
		"reasons": ["Excellent credit score"],
		"criteria_scores": {"CIBIL Score": "Excellent", "EMI Burden": "Good"},
		"recommendation": "Proceed with the application.",
		"loan_details": {"amount": 500000, "tenure": 5, "estimated_interest_rate": 10.5, "processing_fee": 5000, "total_payable": 637474.2}
	}
}`

const rejectedBody = `{"success": false, "error": "Failed to process loan application"}`

// fakeScoringService counts calculate_loan calls and answers with body.
type fakeScoringService struct {
	*httptest.Server
	calls atomic.Int32
}

func newFakeScoringService(t *testing.T, status int, body string) *fakeScoringService {
	t.Helper()
	f := &fakeScoringService{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/calculate_loan", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("/api/chatbot", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success": true, "response": "A CIBIL score of 750 or more is preferred.", "is_loan_related": true}`)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

type session struct {
	ctrl   *submitapplication.Controller
	client *scoring.Client
}

func newSession(t *testing.T, baseURL string) *session {
	t.Helper()
	appCfg := &config.Config{
		Scoring: config.ScoringConfig{BaseURL: baseURL, PathPrefix: "/api", Timeout: 5000},
		Session: config.SessionConfig{DefaultLanguage: "en"},
	}
	log := logger.NewNoOpLogger()
	client := scoring.NewClient(appCfg.Scoring, log)
	ctrl := submitapplication.NewController(
		submitapplication.LoadConfig(appCfg), client, log,
		submitapplication.WithRecorder(observability.NewNoOp()),
	)
	return &session{ctrl: ctrl, client: client}
}

func (s *session) fill(t *testing.T, fields map[string]string) {
	t.Helper()
	for name, value := range fields {
		require.NoError(t, s.ctrl.SetField(name, value))
	}
}

func (s *session) submitAndWait(t *testing.T) submitapplication.Snapshot {
	t.Helper()
	outcome, err := s.ctrl.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, submitapplication.OutcomeStarted, outcome)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, err := s.ctrl.Wait(ctx)
	require.NoError(t, err)
	return snap
}

func scenarioDraft() map[string]string {
	return map[string]string{
		models.FieldBankBalance:    "50000",
		models.FieldCibilScore:     "750",
		models.FieldLoanAmount:     "500000",
		models.FieldMonthlyIncome:  "60000",
		models.FieldLoanTenure:     "5",
		models.FieldAge:            "30",
		models.FieldEmploymentType: "Permanent",
		models.FieldIncomeSource:   "Salary",
	}
}

// ============================================================================
// Scenario A: a complete draft validates and reaches the service
// ============================================================================

func TestScenarioA_ValidDraftIsSubmitted(t *testing.T) {
	svc := newFakeScoringService(t, http.StatusOK, approvedBody)
	s := newSession(t, svc.URL)
	s.fill(t, scenarioDraft())

	assert.True(t, validateapplication.Validate(s.ctrl.Snapshot().Draft).Valid())

	s.submitAndWait(t)
	assert.Equal(t, int32(1), svc.calls.Load())
}

// ============================================================================
// Scenario B: an out-of-range CIBIL score stops submission locally
// ============================================================================

func TestScenarioB_InvalidCibilNeverLeavesClient(t *testing.T) {
	svc := newFakeScoringService(t, http.StatusOK, approvedBody)
	s := newSession(t, svc.URL)
	fields := scenarioDraft()
	fields[models.FieldCibilScore] = "250"
	s.fill(t, fields)

	errs := validateapplication.Validate(s.ctrl.Snapshot().Draft)
	require.Len(t, errs, 1)
	assert.Contains(t, errs, models.FieldCibilScore)

	outcome, err := s.ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, submitapplication.OutcomeInvalid, outcome)
	assert.Equal(t, submitapplication.StateIdleEditing, s.ctrl.State())
	assert.Equal(t, errs, s.ctrl.Snapshot().Errors)
	assert.Zero(t, svc.calls.Load())
}

// ============================================================================
// Scenario C: a successful response is shown with the success tier
// ============================================================================

func TestScenarioC_ResultIsPresented(t *testing.T) {
	svc := newFakeScoringService(t, http.StatusOK, approvedBody)
	s := newSession(t, svc.URL)
	s.fill(t, scenarioDraft())

	snap := s.submitAndWait(t)
	require.Equal(t, submitapplication.StateShowingResult, snap.State)
	require.NotNil(t, snap.Result)

	view := presentresult.Present(snap.Result)
	assert.Equal(t, presentresult.TierSuccess, view.Tier)
	assert.Equal(t, float64(82), view.EligibilityScore)
	assert.Equal(t, presentresult.BandSafe, view.EMIBand)
	assert.Equal(t, "₹10,624.57", presentresult.FormatRupees(view.EstimatedEMI))
	require.Len(t, view.Criteria, 2)
	assert.Equal(t, presentresult.BucketExcellent, view.Criteria[0].Bucket)
	assert.Nil(t, view.ML)

	s.ctrl.Reset()
	assert.Equal(t, submitapplication.StateIdleEditing, s.ctrl.State())
	assert.Equal(t, models.NewLoanApplication("en"), s.ctrl.Snapshot().Draft)
}

// ============================================================================
// Scenario D: connection refused is distinguishable from a rejection
// ============================================================================

func TestScenarioD_TransportFailureDiffersFromRejection(t *testing.T) {
	down := newFakeScoringService(t, http.StatusOK, approvedBody)
	downURL := down.URL
	down.Close()

	s := newSession(t, downURL)
	s.fill(t, scenarioDraft())
	transport := s.submitAndWait(t)

	require.Equal(t, submitapplication.StateShowingError, transport.State)
	assert.True(t, apperrors.IsUnreachable(transport.Err))
	assert.Contains(t, transport.ErrorMessage, downURL)

	rejecting := newFakeScoringService(t, http.StatusOK, rejectedBody)
	r := newSession(t, rejecting.URL)
	r.fill(t, scenarioDraft())
	rejection := r.submitAndWait(t)

	require.Equal(t, submitapplication.StateShowingError, rejection.State)
	assert.True(t, apperrors.IsApplicationRejection(rejection.Err))
	assert.Equal(t, apperrors.DefaultRejectionMessage, rejection.ErrorMessage)

	assert.NotEqual(t, rejection.ErrorMessage, transport.ErrorMessage)
}

// ============================================================================
// Assistant round trip
// ============================================================================

func TestAssistantRoundTrip(t *testing.T) {
	svc := newFakeScoringService(t, http.StatusOK, approvedBody)
	s := newSession(t, svc.URL)

	assistant := chatassistant.NewAssistant(s.client, "en", logger.NewNoOpLogger())
	reply, err := assistant.Send(context.Background(), chatassistant.QuickActions()[1])
	require.NoError(t, err)

	assert.False(t, reply.IsUser)
	assert.Equal(t, "A CIBIL score of 750 or more is preferred.", reply.Text)
	assert.Len(t, assistant.Transcript(), 3)
}
