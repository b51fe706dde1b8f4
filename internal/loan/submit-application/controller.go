// internal/loan/submit-application/controller.go
package submitapplication

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "loan-approval-client/internal/common/errors"
	"loan-approval-client/internal/common/logger"
	"loan-approval-client/internal/common/metrics"
	validateapplication "loan-approval-client/internal/loan/validate-application"
	"loan-approval-client/internal/models"
	"loan-approval-client/pkg/registry"
)

const ComponentName = "submit-application"

var (
	ErrNotEditable  = errors.New("NOT_EDITABLE")
	ErrUnknownField = errors.New("UNKNOWN_FIELD")
)

// Scorer is the part of the scoring client the controller needs.
type Scorer interface {
	CalculateLoan(ctx context.Context, app models.LoanApplication) (*models.LoanResult, error)
}

// Recorder receives session-level measurements.
type Recorder interface {
	RecordSubmission(ctx context.Context, outcome string)
	RecordRoundTrip(ctx context.Context, duration time.Duration, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordSubmission(context.Context, string) {}

func (noopRecorder) RecordRoundTrip(context.Context, time.Duration, string) {}

type Option func(*Controller)

func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

func WithSessionID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// WithRegistry sets the form options that employment type and income source are checked against.
func WithRegistry(reg *registry.FormRegistry) Option {
	return func(c *Controller) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// Controller owns one application session: the draft, its validation errors,
// and the settled result or error. At most one scoring request is in flight.
type Controller struct {
	mu sync.Mutex

	config     *Config
	scorer     Scorer
	recorder   Recorder
	registry   *registry.FormRegistry
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	sessionID  string

	state      State
	draft      models.LoanApplication
	errs       validateapplication.ValidationErrors
	result     *models.LoanResult
	errMsg     string
	lastErr    error
	generation uint64
	settled    chan struct{}
}

func NewController(config *Config, scorer Scorer, log logger.Logger, opts ...Option) *Controller {
	if config == nil {
		config = LoadConfig(nil)
	}
	c := &Controller{
		config:    config,
		scorer:    scorer,
		recorder:  noopRecorder{},
		registry:  registry.Default(),
		sessionID: uuid.NewString(),
		state:     StateIdleEditing,
		draft:     models.NewLoanApplication(config.DefaultLanguage),
		errs:      validateapplication.ValidationErrors{},
		settled:   closedChan(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.WithFields(map[string]interface{}{
		"component": ComponentName,
		"sessionId": c.sessionID,
	})
	c.errHandler = apperrors.NewErrorHandler(c.logger, config.BaseURL)
	return c
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:    c.sessionID,
		Generation:   c.generation,
		State:        c.state,
		Draft:        c.draft,
		Errors:       c.errs.Clone(),
		Result:       c.result,
		ErrorMessage: c.errMsg,
		Err:          c.lastErr,
	}
}

// SetField applies one form edit given as text and clears that field's error.
// Numeric text that does not parse leaves the field at zero, which validation
// reports as missing.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdleEditing {
		return fmt.Errorf("%w: cannot edit %s while %s", ErrNotEditable, name, c.state)
	}
	if err := applyField(&c.draft, name, value); err != nil {
		return err
	}
	delete(c.errs, name)
	return nil
}

// LoadDraft replaces the whole draft, e.g. from a file, and clears all errors.
func (c *Controller) LoadDraft(app models.LoanApplication) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdleEditing {
		return fmt.Errorf("%w: cannot load a draft while %s", ErrNotEditable, c.state)
	}
	if app.Language == "" {
		app.Language = c.config.DefaultLanguage
	}
	if app.ExistingLoans == "" {
		app.ExistingLoans = models.ExistingLoansNo
	}
	c.draft = app
	c.errs = validateapplication.ValidationErrors{}
	return nil
}

// Submit validates the draft and, when it is ready, starts the scoring request
// on its own goroutine. A submit while a request is in flight does nothing.
// The request is not bound to ctx cancellation; only the client timeout ends it.
func (c *Controller) Submit(ctx context.Context) (SubmitOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateSubmitting:
		c.logger.Debug("submit ignored, request in flight", map[string]interface{}{"generation": c.generation})
		return OutcomeIgnored, nil
	case StateShowingResult, StateShowingError:
		return OutcomeIgnored, fmt.Errorf("%w: reset before submitting again", ErrNotEditable)
	}

	errs := validateapplication.ValidateWith(c.draft, c.registry)
	if !errs.Valid() {
		c.errs = errs
		c.logger.Info("application failed validation", map[string]interface{}{
			"fields": errs.Summary(),
		})
		return OutcomeInvalid, nil
	}

	c.errs = validateapplication.ValidationErrors{}
	c.result = nil
	c.errMsg = ""
	c.lastErr = nil
	c.transitionLocked(StateSubmitting)

	gen := c.generation
	done := make(chan struct{})
	c.settled = done
	draft := c.draft

	c.logger.Info("submitting application", draft.LogFields())

	go c.run(context.WithoutCancel(ctx), gen, draft, done, time.Now())
	return OutcomeStarted, nil
}

func (c *Controller) run(ctx context.Context, gen uint64, draft models.LoanApplication, done chan struct{}, started time.Time) {
	result, err := c.scorer.CalculateLoan(ctx, draft)
	c.settle(ctx, gen, result, err, done, started)
}

func (c *Controller) settle(ctx context.Context, gen uint64, result *models.LoanResult, err error, done chan struct{}, started time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != StateSubmitting {
		c.logger.Info("stale response discarded", map[string]interface{}{
			"responseGeneration": gen,
			"currentGeneration":  c.generation,
		})
		metrics.StaleResponsesTotal.Inc()
		return
	}

	if err == nil && result == nil {
		err = apperrors.NewMalformedResponseError("calculate_loan", "empty result")
	}

	outcome := "result"
	if err != nil {
		outcome = outcomeFor(err)
		c.lastErr = err
		c.errMsg = c.errHandler.UserMessage(err)
		c.transitionLocked(StateShowingError)
	} else {
		c.result = result
		c.logger.Info("application scored", map[string]interface{}{
			"status":           result.Status,
			"statusClass":      string(result.StatusClass),
			"eligibilityScore": result.EligibilityScore,
		})
		c.transitionLocked(StateShowingResult)
	}

	c.recorder.RecordSubmission(ctx, outcome)
	c.recorder.RecordRoundTrip(ctx, time.Since(started), outcome)
	close(done)
}

func outcomeFor(err error) string {
	switch {
	case apperrors.IsApplicationRejection(err):
		return "rejected"
	case apperrors.IsTransportError(err):
		return "transport_error"
	}
	return "error"
}

// Wait blocks until the in-flight submission settles or ctx ends, and returns
// the state at that point. With nothing in flight it returns immediately.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	done := c.settled
	c.mu.Unlock()

	select {
	case <-done:
		return c.Snapshot(), nil
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	}
}

// Reset starts over with a blank draft. Any in-flight response is discarded
// when it arrives.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.generation++
	c.draft = models.NewLoanApplication(c.config.DefaultLanguage)
	c.errs = validateapplication.ValidationErrors{}
	c.result = nil
	c.errMsg = ""
	c.lastErr = nil

	select {
	case <-c.settled:
	default:
		// wake waiters of the abandoned request
		close(c.settled)
	}
	c.settled = closedChan()

	if prev != StateIdleEditing {
		c.transitionLocked(StateIdleEditing)
	}
	c.logger.Debug("session reset", map[string]interface{}{
		"from":       string(prev),
		"generation": c.generation,
	})
}

func (c *Controller) transitionLocked(to State) {
	from := c.state
	c.state = to
	metrics.SessionTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	c.logger.Debug("state transition", map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
}

// applyField writes one textual form value into the draft.
func applyField(app *models.LoanApplication, name, value string) error {
	value = strings.TrimSpace(value)

	switch name {
	case models.FieldBankBalance:
		app.BankBalance = parseAmount(value)
	case models.FieldLoanAmount:
		app.LoanAmount = parseAmount(value)
	case models.FieldMonthlyIncome:
		app.MonthlyIncome = parseAmount(value)
	case models.FieldEMIExisting:
		app.EMIExisting = parseAmount(value)
	case models.FieldCibilScore:
		app.CibilScore = parseWhole(value)
	case models.FieldLoanTenure:
		app.LoanTenure = parseWhole(value)
	case models.FieldAge:
		app.Age = parseWhole(value)
	case models.FieldEmploymentType:
		app.EmploymentType = models.EmploymentType(value)
	case models.FieldIncomeSource:
		app.IncomeSource = models.IncomeSource(value)
	case models.FieldExistingLoans:
		app.ExistingLoans = value
	case models.FieldLanguage:
		app.Language = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

func parseAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseWhole accepts "5" and "5.0" but not "5.5".
func parseWhole(s string) int {
	f := parseAmount(s)
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}
