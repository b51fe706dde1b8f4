// Package scoring is the HTTP client for the external loan scoring service.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loan-approval-client/internal/common/cache"
	"loan-approval-client/internal/common/config"
	apperrors "loan-approval-client/internal/common/errors"
	commonhttp "loan-approval-client/internal/common/http"
	"loan-approval-client/internal/common/logger"
	"loan-approval-client/internal/common/metrics"
	"loan-approval-client/internal/common/validation"
	"loan-approval-client/internal/models"
)

const (
	maxBodyBytes    = 1 << 20
	maxErrorTextLen = 200

	translationFailedMessage = "Translation failed"
	chatFailedMessage        = "Chatbot request failed"
)

// Client talks to the scoring service. It never retries; callers decide.
type Client struct {
	baseURL string
	prefix  string
	http    *commonhttp.Client
	cache   *cache.TranslationCache
	tracer  trace.Tracer
	log     logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the timeout-bounded default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = commonhttp.Wrap(hc)
	}
}

// WithTranslationCache puts a cache in front of Translate.
func WithTranslationCache(tc *cache.TranslationCache) Option {
	return func(c *Client) {
		c.cache = tc
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tr
	}
}

func NewClient(cfg config.ScoringConfig, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.URL(),
		prefix:  cfg.Prefix(),
		http:    commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		tracer:  otel.Tracer("loan-approval-client/scoring"),
		log:     log.WithFields(map[string]interface{}{"component": "scoring-client"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the configured service root, used in setup guidance.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EndpointURL returns the absolute URL for an endpoint name such as "calculate_loan".
func (c *Client) EndpointURL(endpoint string) string {
	return c.baseURL + c.prefix + "/" + endpoint
}

// CalculateLoan posts the application and returns the scoring verdict.
// A success:false answer is returned as an APPLICATION_REJECTED error.
func (c *Client) CalculateLoan(ctx context.Context, app models.LoanApplication) (result *models.LoanResult, err error) {
	ctx, span := c.start(ctx, validation.EndpointCalculateLoan)
	defer func() { c.finish(span, validation.EndpointCalculateLoan, err) }()

	c.log.Debug("submitting loan application", app.LogFields())

	var resp models.CalculateLoanResponse
	status, err := c.doJSON(ctx, http.MethodPost, validation.EndpointCalculateLoan, app, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperrors.NewApplicationRejectedError(resp.Error, status)
	}
	if resp.Result == nil {
		return nil, apperrors.NewMalformedResponseError(validation.EndpointCalculateLoan, "success response without result")
	}
	return resp.Result, nil
}

// Translate returns text rendered in targetLang, consulting the cache first when one is set.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (translated string, err error) {
	if c.cache != nil {
		if hit, ok := c.cache.Get(ctx, text, targetLang); ok {
			return hit, nil
		}
	}

	ctx, span := c.start(ctx, validation.EndpointTranslate)
	defer func() { c.finish(span, validation.EndpointTranslate, err) }()

	var resp models.TranslateResponse
	req := models.TranslateRequest{Text: text, TargetLang: targetLang}
	status, err := c.doJSON(ctx, http.MethodPost, validation.EndpointTranslate, req, &resp)
	if err != nil {
		return "", err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = translationFailedMessage
		}
		return "", apperrors.NewApplicationRejectedError(msg, status)
	}

	if c.cache != nil {
		c.cache.Set(ctx, text, targetLang, resp.TranslatedText)
	}
	return resp.TranslatedText, nil
}

// ChatbotQuery sends one assistant message and returns the service reply.
func (c *Client) ChatbotQuery(ctx context.Context, message, language string) (reply *models.ChatbotResponse, err error) {
	ctx, span := c.start(ctx, validation.EndpointChatbot)
	defer func() { c.finish(span, validation.EndpointChatbot, err) }()

	var resp models.ChatbotResponse
	req := models.ChatbotRequest{Message: message, Language: language}
	status, err := c.doJSON(ctx, http.MethodPost, validation.EndpointChatbot, req, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = chatFailedMessage
		}
		return nil, apperrors.NewApplicationRejectedError(msg, status)
	}
	return &resp, nil
}

func (c *Client) HealthCheck(ctx context.Context) (health *models.HealthStatus, err error) {
	ctx, span := c.start(ctx, validation.EndpointHealth)
	defer func() { c.finish(span, validation.EndpointHealth, err) }()

	var resp models.HealthStatus
	if _, err := c.doJSON(ctx, http.MethodGet, validation.EndpointHealth, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON performs one request and decodes a schema-checked 2xx body into out.
// It returns the HTTP status code when a response was received.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, apperrors.NewRequestEncodingFailedError(err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.EndpointURL(endpoint)
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return 0, apperrors.NewRequestEncodingFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", url),
	)

	resp, err := c.http.DoWithContext(ctx, endpoint, req)
	if err != nil {
		c.log.Warn("scoring service unreachable", map[string]interface{}{
			"endpoint": endpoint,
			"url":      url,
			"error":    err.Error(),
		})
		return 0, apperrors.NewServiceUnreachableError(c.baseURL, err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, apperrors.NewServiceUnreachableError(c.baseURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, classifyStatus(resp.StatusCode, data)
	}

	check, err := validation.ValidateResponse(endpoint, data)
	if err != nil {
		return resp.StatusCode, apperrors.NewMalformedResponseError(endpoint, err.Error())
	}
	if !check.Valid {
		return resp.StatusCode, apperrors.NewMalformedResponseError(endpoint, strings.Join(check.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, apperrors.NewMalformedResponseError(endpoint, err.Error())
	}
	return resp.StatusCode, nil
}

// classifyStatus maps a non-2xx response. An explicit success:false body is a
// rejection; anything else is an unexpected status with the best message available.
func classifyStatus(status int, body []byte) error {
	var env models.ErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Success != nil && !*env.Success {
			return apperrors.NewApplicationRejectedError(env.Error, status)
		}
		if env.Error != "" {
			return apperrors.NewUnexpectedStatusError(status, env.Error)
		}
		if env.Message != "" {
			return apperrors.NewUnexpectedStatusError(status, env.Message)
		}
	}
	return apperrors.NewUnexpectedStatusError(status, truncate(strings.TrimSpace(string(body)), maxErrorTextLen))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func (c *Client) start(ctx context.Context, endpoint string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "scoring."+endpoint, trace.WithSpanKind(trace.SpanKindClient))
}

func (c *Client) finish(span trace.Span, endpoint string, err error) {
	outcome := Outcome(err)
	metrics.ScoringRequestsTotal.WithLabelValues(endpoint, outcome).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("%s: %s", outcome, apperrors.FromError(err).Message))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Outcome is the metrics label for the result of a request.
func Outcome(err error) string {
	switch apperrors.CodeOf(err) {
	case "":
		return metrics.OutcomeSuccess
	case apperrors.ErrCodeApplicationRejected:
		return metrics.OutcomeRejected
	case apperrors.ErrCodeServiceUnreachable:
		return metrics.OutcomeUnreachable
	case apperrors.ErrCodeUnexpectedStatus:
		return metrics.OutcomeBadStatus
	default:
		return metrics.OutcomeMalformed
	}
}
