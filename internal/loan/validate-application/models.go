// internal/loan/validate-application/models.go
package validateapplication

import (
	"sort"
	"strings"

	"loan-approval-client/internal/models"
)

// ValidationErrors maps a field name to its user-facing message.
// An empty mapping means the application is ready to submit.
type ValidationErrors map[string]string

func (v ValidationErrors) Valid() bool {
	return len(v) == 0
}

// Fields returns the failing fields in form order.
func (v ValidationErrors) Fields() []string {
	order := make(map[string]int, len(models.RequiredFields))
	for i, f := range models.RequiredFields {
		order[f] = i
	}
	out := make([]string, 0, len(v))
	for f := range v {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iok := order[out[i]]
		oj, jok := order[out[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		}
		return out[i] < out[j]
	})
	return out
}

// Clone returns an independent copy.
func (v ValidationErrors) Clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}

// Summary joins the failing fields for logs and error details.
func (v ValidationErrors) Summary() string {
	return strings.Join(v.Fields(), ", ")
}

var requiredMessages = map[string]string{
	models.FieldBankBalance:    "Bank balance is required and must be positive",
	models.FieldCibilScore:     "CIBIL score must be between 300 and 900",
	models.FieldLoanAmount:     "Loan amount is required and must be positive",
	models.FieldMonthlyIncome:  "Monthly income is required and must be positive",
	models.FieldLoanTenure:     "Loan tenure must be between 1 and 30 years",
	models.FieldAge:            "Age must be between 18 and 70 years",
	models.FieldEmploymentType: "Employment type is required",
	models.FieldIncomeSource:   "Income source is required",
}

// Message returns the rule text shown for a failing field.
func Message(field string) string {
	return requiredMessages[field]
}
