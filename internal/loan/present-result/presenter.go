// internal/loan/present-result/presenter.go
package presentresult

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"loan-approval-client/internal/models"
)

const approvedPrediction = "approved"

var ratingBuckets = map[string]Bucket{
	"excellent":  BucketExcellent,
	"very good":  BucketGood,
	"good":       BucketGood,
	"optimal":    BucketGood,
	"stable":     BucketGood,
	"moderate":   BucketModerate,
	"acceptable": BucketModerate,
	"fair":       BucketFair,
	"high":       BucketFair,
	"poor":       BucketPoor,
	"low":        BucketPoor,
	"very high":  BucketPoor,
	"risky":      BucketPoor,
}

// SeverityFor maps a status class to its tier; unknown classes are neutral.
func SeverityFor(class models.StatusClass) Tier {
	switch models.StatusClass(strings.ToLower(strings.TrimSpace(string(class)))) {
	case models.StatusSuccess:
		return TierSuccess
	case models.StatusWarning:
		return TierWarning
	case models.StatusInfo:
		return TierInfo
	case models.StatusDanger:
		return TierDanger
	}
	return TierNeutral
}

// BucketForRating groups a free-form rating, ignoring case. New vocabulary
// falls into BucketUnrated.
func BucketForRating(rating string) Bucket {
	if b, ok := ratingBuckets[strings.ToLower(strings.TrimSpace(rating))]; ok {
		return b
	}
	return BucketUnrated
}

// BandForEMIRatio bands a percentage: above 50 is high risk, above 30 is caution.
func BandForEMIRatio(ratio float64) Band {
	switch {
	case ratio > 50:
		return BandHighRisk
	case ratio > 30:
		return BandCaution
	}
	return BandSafe
}

// BarWidth clamps the EMI ratio to a 0-100 bar.
func BarWidth(ratio float64) float64 {
	switch {
	case math.IsNaN(ratio), ratio < 0:
		return 0
	case ratio > 100:
		return 100
	}
	return ratio
}

// Present derives the display view of a result. A nil result gives a nil view.
func Present(result *models.LoanResult) *View {
	if result == nil {
		return nil
	}

	v := &View{
		Status:           result.Status,
		Tier:             SeverityFor(result.StatusClass),
		EligibilityScore: result.EligibilityScore,
		EstimatedEMI:     result.EstimatedEMI,
		EMIRatio:         result.EMIRatio,
		EMIBand:          BandForEMIRatio(result.EMIRatio),
		EMIBarWidth:      BarWidth(result.EMIRatio),
		Reasons:          append([]string(nil), result.Reasons...),
		Recommendation:   result.Recommendation,
		LoanDetails:      result.LoanDetails,
	}

	names := make([]string, 0, len(result.CriteriaScores))
	for name := range result.CriteriaScores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rating := result.CriteriaScores[name]
		v.Criteria = append(v.Criteria, CriterionView{
			Name:   name,
			Rating: rating,
			Bucket: BucketForRating(rating),
		})
	}

	if ml := result.MLPrediction; ml != nil {
		tier := TierDanger
		if strings.EqualFold(strings.TrimSpace(ml.Prediction), approvedPrediction) {
			tier = TierSuccess
		}
		v.ML = &MLView{
			Prediction:        ml.Prediction,
			Confidence:        ml.Confidence,
			ConfidencePercent: FormatPercent(ml.Confidence * 100),
			Tier:              tier,
		}
	}
	return v
}

// FormatPercent renders one decimal place, e.g. "17.7%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatRupees renders an amount with thousands separators and at most two decimals.
func FormatRupees(d decimal.Decimal) string {
	s := d.Round(2).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + "₹" + b.String()
}
