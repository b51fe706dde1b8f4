package submitapplication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "loan-approval-client/internal/common/errors"
	"loan-approval-client/internal/common/logger"
	"loan-approval-client/internal/common/metrics"
	"loan-approval-client/internal/models"
	"loan-approval-client/pkg/registry"
)

// ==========================
// Test doubles
// ==========================

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) CalculateLoan(ctx context.Context, app models.LoanApplication) (*models.LoanResult, error) {
	args := m.Called(ctx, app)
	res, _ := args.Get(0).(*models.LoanResult)
	return res, args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordSubmission(ctx context.Context, outcome string) {
	m.Called(ctx, outcome)
}

func (m *mockRecorder) RecordRoundTrip(ctx context.Context, d time.Duration, outcome string) {
	m.Called(ctx, d, outcome)
}

func newController(t *testing.T, scorer Scorer, opts ...Option) *Controller {
	t.Helper()
	return NewController(&Config{DefaultLanguage: "en", BaseURL: "http://localhost:5000"}, scorer, logger.NewTestLogger(t), opts...)
}

func fillValid(t *testing.T, c *Controller) {
	t.Helper()
	fields := map[string]string{
		models.FieldBankBalance:    "50000",
		models.FieldCibilScore:     "750",
		models.FieldLoanAmount:     "500000",
		models.FieldMonthlyIncome:  "60000",
		models.FieldLoanTenure:     "5",
		models.FieldAge:            "30",
		models.FieldEmploymentType: "Permanent",
		models.FieldIncomeSource:   "Salary",
	}
	for name, value := range fields {
		require.NoError(t, c.SetField(name, value))
	}
}

func successResult() *models.LoanResult {
	return &models.LoanResult{
		Status:           "Loan Approved",
		StatusClass:      models.StatusSuccess,
		EligibilityScore: 82,
	}
}

func waitSettled(t *testing.T, c *Controller) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := c.Wait(ctx)
	require.NoError(t, err)
	return snap
}

// ==========================
// Editing
// ==========================

func TestNewController_InitialState(t *testing.T) {
	c := newController(t, &mockScorer{})
	snap := c.Snapshot()

	assert.Equal(t, StateIdleEditing, snap.State)
	assert.Equal(t, models.NewLoanApplication("en"), snap.Draft)
	assert.Empty(t, snap.Errors)
	assert.Nil(t, snap.Result)
	assert.NotEmpty(t, c.SessionID())
}

func TestSetField(t *testing.T) {
	c := newController(t, &mockScorer{})

	require.NoError(t, c.SetField(models.FieldLoanAmount, " 250000.50 "))
	require.NoError(t, c.SetField(models.FieldCibilScore, "720"))
	require.NoError(t, c.SetField(models.FieldEmploymentType, "Government"))
	require.NoError(t, c.SetField(models.FieldExistingLoans, "Yes"))
	require.NoError(t, c.SetField(models.FieldEMIExisting, "12,500"))
	require.NoError(t, c.SetField(models.FieldLanguage, "ta"))

	d := c.Snapshot().Draft
	assert.Equal(t, 250000.50, d.LoanAmount)
	assert.Equal(t, 720, d.CibilScore)
	assert.Equal(t, models.EmploymentGovernment, d.EmploymentType)
	assert.Equal(t, "Yes", d.ExistingLoans)
	assert.Equal(t, 12500.0, d.EMIExisting)
	assert.Equal(t, "ta", d.Language)

	err := c.SetField("favourite_colour", "blue")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSetField_UnparsableNumbersBecomeZero(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{models.FieldBankBalance, "abc"},
		{models.FieldBankBalance, ""},
		{models.FieldMonthlyIncome, "NaN"},
		{models.FieldLoanAmount, "Inf"},
		{models.FieldAge, "thirty"},
		{models.FieldLoanTenure, "5.5"},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			app := models.NewLoanApplication("en")
			require.NoError(t, applyField(&app, tt.field, tt.value))
			assert.Zero(t, app.BankBalance)
			assert.Zero(t, app.MonthlyIncome)
			assert.Zero(t, app.LoanAmount)
			assert.Zero(t, app.Age)
			assert.Zero(t, app.LoanTenure)
		})
	}

	app := models.NewLoanApplication("en")
	require.NoError(t, applyField(&app, models.FieldLoanTenure, "5.0"))
	assert.Equal(t, 5, app.LoanTenure)
}

func TestSetField_ClearsOnlyThatFieldError(t *testing.T) {
	scorer := &mockScorer{}
	c := newController(t, scorer)

	outcome, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeInvalid, outcome)
	require.Len(t, c.Snapshot().Errors, len(models.RequiredFields))

	require.NoError(t, c.SetField(models.FieldAge, "15"))

	errs := c.Snapshot().Errors
	assert.NotContains(t, errs, models.FieldAge, "edited field is cleared even if still invalid")
	assert.Contains(t, errs, models.FieldCibilScore)
	assert.Len(t, errs, len(models.RequiredFields)-1)
}

func TestLoadDraft(t *testing.T) {
	c := newController(t, &mockScorer{})
	_, _ = c.Submit(context.Background())

	app := models.LoanApplication{CibilScore: 700}
	require.NoError(t, c.LoadDraft(app))

	snap := c.Snapshot()
	assert.Empty(t, snap.Errors)
	assert.Equal(t, "en", snap.Draft.Language)
	assert.Equal(t, models.ExistingLoansNo, snap.Draft.ExistingLoans)
	assert.Equal(t, 700, snap.Draft.CibilScore)
}

// ==========================
// Submit
// ==========================

func TestSubmit_InvalidDoesNotCallService(t *testing.T) {
	scorer := &mockScorer{}
	c := newController(t, scorer)
	fillValid(t, c)
	require.NoError(t, c.SetField(models.FieldCibilScore, "250"))

	outcome, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, outcome)
	snap := c.Snapshot()
	assert.Equal(t, StateIdleEditing, snap.State)
	assert.Len(t, snap.Errors, 1)
	assert.Contains(t, snap.Errors, models.FieldCibilScore)
	scorer.AssertNotCalled(t, "CalculateLoan", mock.Anything, mock.Anything)
}

func TestSubmit_ChecksChoicesAgainstRegistry(t *testing.T) {
	reg := registry.Default()
	require.NoError(t, reg.AddOption(registry.SectionEmploymentTypes, registry.Option{Value: "Freelancer", Label: "Freelancer"}))

	t.Run("built-in choices reject it", func(t *testing.T) {
		scorer := &mockScorer{}
		c := newController(t, scorer)
		fillValid(t, c)
		require.NoError(t, c.SetField(models.FieldEmploymentType, "Freelancer"))

		outcome, err := c.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvalid, outcome)
		assert.Contains(t, c.Snapshot().Errors, models.FieldEmploymentType)
		scorer.AssertNotCalled(t, "CalculateLoan", mock.Anything, mock.Anything)
	})

	t.Run("registry choice is accepted", func(t *testing.T) {
		scorer := &mockScorer{}
		scorer.On("CalculateLoan", mock.Anything, mock.MatchedBy(func(app models.LoanApplication) bool {
			return app.EmploymentType == "Freelancer"
		})).Return(successResult(), nil).Once()

		c := newController(t, scorer, WithRegistry(reg))
		fillValid(t, c)
		require.NoError(t, c.SetField(models.FieldEmploymentType, "Freelancer"))

		outcome, err := c.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeStarted, outcome)
		assert.Equal(t, StateShowingResult, waitSettled(t, c).State)
		scorer.AssertExpectations(t)
	})
}

func TestSubmit_SuccessShowsResult(t *testing.T) {
	scorer := &mockScorer{}
	recorder := &mockRecorder{}
	release := make(chan struct{})

	scorer.On("CalculateLoan", mock.Anything, mock.MatchedBy(func(app models.LoanApplication) bool {
		return app.CibilScore == 750 && app.EmploymentType == models.EmploymentPermanent
	})).Run(func(args mock.Arguments) { <-release }).Return(successResult(), nil).Once()
	recorder.On("RecordSubmission", mock.Anything, "result").Once()
	recorder.On("RecordRoundTrip", mock.Anything, mock.AnythingOfType("time.Duration"), "result").Once()

	c := newController(t, scorer, WithRecorder(recorder))
	fillValid(t, c)

	outcome, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeStarted, outcome)
	assert.Equal(t, StateSubmitting, c.State())

	// editing is locked while the request is out
	assert.ErrorIs(t, c.SetField(models.FieldAge, "40"), ErrNotEditable)

	close(release)
	snap := waitSettled(t, c)

	assert.Equal(t, StateShowingResult, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 82.0, snap.Result.EligibilityScore)
	assert.Empty(t, snap.ErrorMessage)
	scorer.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestSubmit_SecondSubmitWhileInFlightIsIgnored(t *testing.T) {
	scorer := &mockScorer{}
	release := make(chan struct{})
	scorer.On("CalculateLoan", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-release }).
		Return(successResult(), nil).Once()

	c := newController(t, scorer)
	fillValid(t, c)

	first, err := c.Submit(context.Background())
	require.NoError(t, err)
	second, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeStarted, first)
	assert.Equal(t, OutcomeIgnored, second)

	close(release)
	waitSettled(t, c)
	scorer.AssertNumberOfCalls(t, "CalculateLoan", 1)
}

func TestSubmit_CallerCancellationDoesNotAbortRequest(t *testing.T) {
	scorer := &mockScorer{}
	release := make(chan struct{})
	scorer.On("CalculateLoan", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-release
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(successResult(), nil).Once()

	c := newController(t, scorer)
	fillValid(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.Submit(ctx)
	require.NoError(t, err)
	cancel()
	close(release)

	assert.Equal(t, StateShowingResult, waitSettled(t, c).State)
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "application rejection",
			err:      apperrors.NewApplicationRejectedError("Age exceeds policy limit", 200),
			contains: "Age exceeds policy limit",
		},
		{
			name:     "rejection without text",
			err:      apperrors.NewApplicationRejectedError("", 200),
			contains: "Failed to process loan application",
		},
		{
			name:     "unreachable",
			err:      apperrors.NewServiceUnreachableError("http://localhost:5000", errors.New("connection refused")),
			contains: "Unable to connect to the loan scoring service at http://localhost:5000",
		},
		{
			name:     "malformed",
			err:      apperrors.NewMalformedResponseError("calculate_loan", "bad json"),
			contains: "unexpected response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &mockScorer{}
			scorer.On("CalculateLoan", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			c := newController(t, scorer)
			fillValid(t, c)
			_, err := c.Submit(context.Background())
			require.NoError(t, err)

			snap := waitSettled(t, c)

			assert.Equal(t, StateShowingError, snap.State)
			assert.Contains(t, snap.ErrorMessage, tt.contains)
			assert.Nil(t, snap.Result)
			assert.ErrorIs(t, snap.Err, tt.err)
		})
	}
}

func TestSubmit_NilResultWithoutErrorIsError(t *testing.T) {
	scorer := &mockScorer{}
	scorer.On("CalculateLoan", mock.Anything, mock.Anything).Return(nil, nil).Once()

	c := newController(t, scorer)
	fillValid(t, c)
	_, _ = c.Submit(context.Background())

	snap := waitSettled(t, c)
	assert.Equal(t, StateShowingError, snap.State)
	assert.NotEmpty(t, snap.ErrorMessage)
}

func TestSubmit_FromSettledStateRequiresReset(t *testing.T) {
	scorer := &mockScorer{}
	scorer.On("CalculateLoan", mock.Anything, mock.Anything).Return(successResult(), nil).Once()

	c := newController(t, scorer)
	fillValid(t, c)
	_, _ = c.Submit(context.Background())
	waitSettled(t, c)

	outcome, err := c.Submit(context.Background())

	assert.Equal(t, OutcomeIgnored, outcome)
	assert.ErrorIs(t, err, ErrNotEditable)
	scorer.AssertNumberOfCalls(t, "CalculateLoan", 1)
}

// ==========================
// Reset
// ==========================

func TestReset_FromSettledStates(t *testing.T) {
	for _, failing := range []bool{false, true} {
		scorer := &mockScorer{}
		if failing {
			scorer.On("CalculateLoan", mock.Anything, mock.Anything).Return(nil, apperrors.NewUnexpectedStatusError(500, "")).Once()
		} else {
			scorer.On("CalculateLoan", mock.Anything, mock.Anything).Return(successResult(), nil).Once()
		}

		c := newController(t, scorer)
		require.NoError(t, c.SetField(models.FieldLanguage, "hi"))
		fillValid(t, c)
		_, _ = c.Submit(context.Background())
		settled := waitSettled(t, c)
		require.NotEqual(t, StateIdleEditing, settled.State)

		c.Reset()

		snap := c.Snapshot()
		assert.Equal(t, StateIdleEditing, snap.State)
		assert.Equal(t, models.NewLoanApplication("en"), snap.Draft, "reset yields a blank draft, not the previous one")
		assert.Empty(t, snap.Errors)
		assert.Nil(t, snap.Result)
		assert.Empty(t, snap.ErrorMessage)
		assert.Greater(t, snap.Generation, settled.Generation)
	}
}

func TestReset_DiscardsStaleResponse(t *testing.T) {
	scorer := &mockScorer{}
	release := make(chan struct{})
	scorer.On("CalculateLoan", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-release }).
		Return(successResult(), nil).Once()

	c := newController(t, scorer)
	fillValid(t, c)
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	staleBefore := testutil.ToFloat64(metrics.StaleResponsesTotal)
	c.Reset()

	// waiters of the abandoned request are released by the reset
	snap := waitSettled(t, c)
	assert.Equal(t, StateIdleEditing, snap.State)

	close(release)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.StaleResponsesTotal) > staleBefore
	}, 2*time.Second, 10*time.Millisecond)

	snap = c.Snapshot()
	assert.Equal(t, StateIdleEditing, snap.State)
	assert.Nil(t, snap.Result)
	assert.Equal(t, models.NewLoanApplication("en"), snap.Draft)
}

func TestReset_ThenNewSubmissionIsNotClobbered(t *testing.T) {
	scorer := &mockScorer{}
	releaseOld := make(chan struct{})

	scorer.On("CalculateLoan", mock.Anything, mock.MatchedBy(func(app models.LoanApplication) bool { return app.Age == 30 })).
		Run(func(args mock.Arguments) { <-releaseOld }).
		Return(nil, apperrors.NewUnexpectedStatusError(500, "")).Once()
	scorer.On("CalculateLoan", mock.Anything, mock.MatchedBy(func(app models.LoanApplication) bool { return app.Age == 45 })).
		Return(successResult(), nil).Once()

	c := newController(t, scorer)
	fillValid(t, c)
	_, _ = c.Submit(context.Background())
	c.Reset()

	fillValid(t, c)
	require.NoError(t, c.SetField(models.FieldAge, "45"))
	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateShowingResult, waitSettled(t, c).State)

	staleBefore := testutil.ToFloat64(metrics.StaleResponsesTotal)
	close(releaseOld)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.StaleResponsesTotal) > staleBefore
	}, 2*time.Second, 10*time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, StateShowingResult, snap.State, "late failure from the abandoned request is ignored")
	assert.Empty(t, snap.ErrorMessage)
}

func TestWait_ContextEnds(t *testing.T) {
	scorer := &mockScorer{}
	release := make(chan struct{})
	defer close(release)
	scorer.On("CalculateLoan", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-release }).
		Return(successResult(), nil).Maybe()

	// the request settles after the test returns
	c := NewController(&Config{DefaultLanguage: "en"}, scorer, logger.NewNoOpLogger())
	fillValid(t, c)
	_, _ = c.Submit(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snap, err := c.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateSubmitting, snap.State)
}

func TestWait_NothingInFlight(t *testing.T) {
	c := newController(t, &mockScorer{})
	snap, err := c.Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateIdleEditing, snap.State)
}
