package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	presentresult "loan-approval-client/internal/loan/present-result"
	validateapplication "loan-approval-client/internal/loan/validate-application"
	"loan-approval-client/internal/models"
	"loan-approval-client/pkg/registry"
)

const barCells = 20

var fieldLabels = map[string]string{
	models.FieldBankBalance:    "Bank balance (₹)",
	models.FieldCibilScore:     "CIBIL score (300-900)",
	models.FieldLoanAmount:     "Loan amount (₹)",
	models.FieldMonthlyIncome:  "Monthly income (₹)",
	models.FieldLoanTenure:     "Loan tenure (years)",
	models.FieldAge:            "Age",
	models.FieldEmploymentType: "Employment type",
	models.FieldIncomeSource:   "Income source",
	models.FieldExistingLoans:  "Existing loans",
	models.FieldEMIExisting:    "Existing EMI (₹/month)",
	models.FieldLanguage:       "Language",
}

func fieldLabel(name string) string {
	if l, ok := fieldLabels[name]; ok {
		return l
	}
	return name
}

// renderer writes user-facing output. Colors follow color.NoColor.
type renderer struct {
	out io.Writer
	reg *registry.FormRegistry

	bold  *color.Color
	faint *color.Color
	red   *color.Color
	cyan  *color.Color
}

func newRenderer(out io.Writer, reg *registry.FormRegistry) *renderer {
	return &renderer{
		out:   out,
		reg:   reg,
		bold:  color.New(color.Bold),
		faint: color.New(color.Faint),
		red:   color.New(color.FgRed),
		cyan:  color.New(color.FgCyan, color.Bold),
	}
}

func tierColor(t presentresult.Tier) *color.Color {
	switch t {
	case presentresult.TierSuccess:
		return color.New(color.FgGreen, color.Bold)
	case presentresult.TierWarning:
		return color.New(color.FgYellow, color.Bold)
	case presentresult.TierInfo:
		return color.New(color.FgBlue, color.Bold)
	case presentresult.TierDanger:
		return color.New(color.FgRed, color.Bold)
	}
	return color.New(color.Bold)
}

func bucketColor(b presentresult.Bucket) *color.Color {
	switch b {
	case presentresult.BucketExcellent:
		return color.New(color.FgGreen, color.Bold)
	case presentresult.BucketGood:
		return color.New(color.FgCyan)
	case presentresult.BucketModerate:
		return color.New(color.FgYellow)
	case presentresult.BucketFair:
		return color.New(color.FgHiYellow)
	case presentresult.BucketPoor:
		return color.New(color.FgRed)
	}
	return color.New(color.Faint)
}

func bandColor(b presentresult.Band) *color.Color {
	switch b {
	case presentresult.BandHighRisk:
		return color.New(color.FgRed)
	case presentresult.BandCaution:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgGreen)
}

func (r *renderer) line(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *renderer) result(v *presentresult.View) {
	if v == nil {
		return
	}
	tier := tierColor(v.Tier)

	r.line("")
	tier.Fprintln(r.out, v.Status)
	r.line("Eligibility score: %s", tier.Sprintf("%.0f/100", v.EligibilityScore))
	r.line("")

	r.cyan.Fprintln(r.out, "Loan details")
	d := v.LoanDetails
	r.line("  Loan amount:     %s", presentresult.FormatRupees(d.Amount))
	r.line("  Tenure:          %d years", d.Tenure)
	r.line("  Interest rate:   %s", presentresult.FormatPercent(d.EstimatedInterestRate))
	r.line("  Monthly EMI:     %s", presentresult.FormatRupees(v.EstimatedEMI))
	r.line("  Processing fee:  %s", presentresult.FormatRupees(d.ProcessingFee))
	r.line("  Total payable:   %s", r.bold.Sprint(presentresult.FormatRupees(d.TotalPayable)))
	r.line("")

	band := bandColor(v.EMIBand)
	r.line("EMI to income:     %s %s %s",
		band.Sprint(presentresult.FormatPercent(v.EMIRatio)),
		band.Sprint(bar(v.EMIBarWidth)),
		r.faint.Sprint(string(v.EMIBand)))

	if len(v.Criteria) > 0 {
		r.line("")
		r.cyan.Fprintln(r.out, "Criteria")
		width := 0
		for _, c := range v.Criteria {
			if len(c.Name) > width {
				width = len(c.Name)
			}
		}
		for _, c := range v.Criteria {
			r.line("  %-*s  %s", width, c.Name, bucketColor(c.Bucket).Sprint(c.Rating))
		}
	}

	if len(v.Reasons) > 0 {
		r.line("")
		r.cyan.Fprintln(r.out, "Reasons")
		for _, reason := range v.Reasons {
			r.line("  - %s", reason)
		}
	}

	if v.Recommendation != "" {
		r.line("")
		r.cyan.Fprintln(r.out, "Recommendation")
		r.line("  %s", v.Recommendation)
	}

	if v.ML != nil {
		r.line("")
		r.cyan.Fprintln(r.out, "AI prediction")
		r.line("  %s (%s confidence)", tierColor(v.ML.Tier).Sprint(v.ML.Prediction), v.ML.ConfidencePercent)
	}
}

func bar(width float64) string {
	filled := int(width/100*barCells + 0.5)
	if filled > barCells {
		filled = barCells
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barCells-filled) + "]"
}

func (r *renderer) validationErrors(errs validateapplication.ValidationErrors) {
	r.red.Fprintln(r.out, "Please fix the following fields:")
	for _, f := range errs.Fields() {
		r.line("  %s %s: %s", r.red.Sprint("x"), fieldLabel(f), errs[f])
	}
}

func (r *renderer) failure(msg string) {
	r.red.Fprintf(r.out, "Error: %s\n", msg)
}

func (r *renderer) chatMessage(m models.ChatMessage) {
	if m.IsUser {
		r.line("%s %s", r.bold.Sprint("You:"), m.Text)
		return
	}
	r.line("%s %s", r.cyan.Sprint("Assistant:"), m.Text)
}

// formOptions lists every section of the form registry.
func (r *renderer) formOptions() {
	sections := []struct {
		title string
		opts  []registry.Option
	}{
		{"Languages", r.reg.Languages},
		{"Employment types", r.reg.EmploymentTypes},
		{"Income sources", r.reg.IncomeSources},
		{"Existing loans", r.reg.ExistingLoans},
	}
	for i, s := range sections {
		if i > 0 {
			r.line("")
		}
		r.cyan.Fprintln(r.out, s.title)
		for n, o := range s.opts {
			r.line("  %d) %-14s %s", n+1, o.Value, r.faint.Sprint(o.Label))
		}
	}
}
