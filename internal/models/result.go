// internal/models/result.go
package models

import "github.com/shopspring/decimal"

type StatusClass string

const (
	StatusSuccess StatusClass = "success"
	StatusWarning StatusClass = "warning"
	StatusInfo    StatusClass = "info"
	StatusDanger  StatusClass = "danger"
)

// LoanResult is the eligibility verdict returned by the scoring service.
type LoanResult struct {
	Status           string            `json:"status"`
	StatusClass      StatusClass       `json:"status_class"`
	EligibilityScore float64           `json:"eligibility_score"`
	EstimatedEMI     decimal.Decimal   `json:"estimated_emi"`
	EMIRatio         float64           `json:"emi_ratio"`
	Reasons          []string          `json:"reasons"`
	CriteriaScores   map[string]string `json:"criteria_scores"`
	Recommendation   string            `json:"recommendation"`
	LoanDetails      LoanDetails       `json:"loan_details"`
	MLPrediction     *MLPrediction     `json:"ml_prediction,omitempty"`
}

type LoanDetails struct {
	Amount                decimal.Decimal `json:"amount"`
	Tenure                int             `json:"tenure"`
	EstimatedInterestRate float64         `json:"estimated_interest_rate"`
	ProcessingFee         decimal.Decimal `json:"processing_fee"`
	TotalPayable          decimal.Decimal `json:"total_payable"`
}

type MLPrediction struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}
