// internal/common/errors/handler.go
package errors

import "fmt"

const genericTransportMessage = "Received an unexpected response from the loan scoring service. Please verify that the backend is running correctly and try again."

// ErrorHandler turns client errors into the single message shown to the user.
type ErrorHandler struct {
	logger  Logger
	baseURL string
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger, baseURL string) *ErrorHandler {
	return &ErrorHandler{logger: logger, baseURL: baseURL}
}

// UserMessage logs err and returns the text to display for it.
func (h *ErrorHandler) UserMessage(err error) string {
	stdErr := FromError(err)
	if stdErr == nil {
		return ""
	}
	h.logError(stdErr)
	return UserMessage(stdErr, h.baseURL)
}

// UserMessage maps an error to user-facing text without logging.
// Rejections carry the server's own words; transport failures carry setup guidance.
func UserMessage(err error, baseURL string) string {
	stdErr := FromError(err)
	if stdErr == nil {
		return ""
	}

	switch stdErr.Code {
	case ErrCodeApplicationRejected:
		if stdErr.Message == "" {
			return DefaultRejectionMessage
		}
		return stdErr.Message
	case ErrCodeValidationFailed:
		return "Please correct the highlighted fields and submit again."
	case ErrCodeServiceUnreachable:
		if u, ok := stdErr.Metadata["baseUrl"].(string); ok && u != "" {
			baseURL = u
		}
		return unreachableMessage(baseURL)
	}

	if GetErrorCategory(stdErr.Code) == CategoryTransport {
		return genericTransportMessage
	}
	return DefaultRejectionMessage
}

func unreachableMessage(baseURL string) string {
	if baseURL == "" {
		return "Unable to connect to the loan scoring service. Please check that the backend is running and reachable."
	}
	return fmt.Sprintf("Unable to connect to the loan scoring service at %s. Please check that the backend is running and reachable.", baseURL)
}

func (h *ErrorHandler) logError(stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"category":  GetErrorCategory(stdErr.Code),
		"message":   stdErr.Message,
		"retryable": stdErr.Retryable,
	}
	if stdErr.Details != "" {
		fields["details"] = stdErr.Details
	}
	if stdErr.StatusCode != 0 {
		fields["statusCode"] = stdErr.StatusCode
	}
	h.logger.Error("request failed", fields)
}
