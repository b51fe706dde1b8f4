// internal/loan/present-result/models.go
package presentresult

import (
	"github.com/shopspring/decimal"

	"loan-approval-client/internal/models"
)

// Tier is the display emphasis of a verdict.
type Tier string

const (
	TierSuccess Tier = "success"
	TierWarning Tier = "warning"
	TierInfo    Tier = "info"
	TierDanger  Tier = "danger"
	TierNeutral Tier = "neutral"
)

// Bucket is the qualitative group of a criterion rating.
type Bucket string

const (
	BucketExcellent Bucket = "excellent"
	BucketGood      Bucket = "good"
	BucketModerate  Bucket = "moderate"
	BucketFair      Bucket = "fair"
	BucketPoor      Bucket = "poor"
	BucketUnrated   Bucket = "unrated"
)

// Band is the EMI-to-income risk band.
type Band string

const (
	BandSafe     Band = "safe"
	BandCaution  Band = "caution"
	BandHighRisk Band = "high-risk"
)

type CriterionView struct {
	Name   string
	Rating string
	Bucket Bucket
}

type MLView struct {
	Prediction        string
	Confidence        float64
	ConfidencePercent string
	Tier              Tier
}

// View is a LoanResult with every display category already derived.
type View struct {
	Status           string
	Tier             Tier
	EligibilityScore float64
	EstimatedEMI     decimal.Decimal
	EMIRatio         float64
	EMIBand          Band
	EMIBarWidth      float64
	Reasons          []string
	Criteria         []CriterionView
	Recommendation   string
	LoanDetails      models.LoanDetails
	// ML is nil when the service sent no prediction.
	ML *MLView
}
