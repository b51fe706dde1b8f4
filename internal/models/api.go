// internal/models/api.go
package models

// CalculateLoanResponse is the envelope returned by calculate_loan.
type CalculateLoanResponse struct {
	Success bool        `json:"success"`
	Result  *LoanResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

type TranslateResponse struct {
	Success        bool   `json:"success"`
	TranslatedText string `json:"translated_text,omitempty"`
	Error          string `json:"error,omitempty"`
}

type ChatbotRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

type ChatbotResponse struct {
	Success       bool   `json:"success"`
	Response      string `json:"response,omitempty"`
	IsLoanRelated bool   `json:"is_loan_related,omitempty"`
	Error         string `json:"error,omitempty"`
}

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp,omitempty"`
	Version       string `json:"version,omitempty"`
	FrontendBuilt bool   `json:"frontend_built,omitempty"`
}

// ErrorEnvelope matches the body of non-2xx responses.
type ErrorEnvelope struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
