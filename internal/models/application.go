// internal/models/application.go
package models

type EmploymentType string

const (
	EmploymentPermanent    EmploymentType = "Permanent"
	EmploymentContract     EmploymentType = "Contract"
	EmploymentGovernment   EmploymentType = "Government"
	EmploymentSelfEmployed EmploymentType = "Self-employed"
	EmploymentBusiness     EmploymentType = "Business"
)

type IncomeSource string

const (
	IncomeSalary     IncomeSource = "Salary"
	IncomeBusiness   IncomeSource = "Business"
	IncomeFreelance  IncomeSource = "Freelance"
	IncomeInvestment IncomeSource = "Investment"
	IncomeOther      IncomeSource = "Other"
)

const (
	ExistingLoansYes = "Yes"
	ExistingLoansNo  = "No"

	DefaultLanguage = "en"
)

// Field names as they travel on the wire and key ValidationErrors.
const (
	FieldBankBalance    = "bank_balance"
	FieldCibilScore     = "cibil_score"
	FieldLoanAmount     = "loan_amount"
	FieldMonthlyIncome  = "monthly_income"
	FieldLoanTenure     = "loan_tenure"
	FieldAge            = "age"
	FieldEmploymentType = "employment_type"
	FieldIncomeSource   = "income_source"
	FieldExistingLoans  = "existing_loans"
	FieldEMIExisting    = "emi_existing"
	FieldLanguage       = "language"
)

// RequiredFields lists the fields that gate submission, in form order.
var RequiredFields = []string{
	FieldBankBalance,
	FieldCibilScore,
	FieldLoanAmount,
	FieldMonthlyIncome,
	FieldLoanTenure,
	FieldAge,
	FieldEmploymentType,
	FieldIncomeSource,
}

// LoanApplication is the applicant draft posted to the scoring service.
// A zero numeric value means the field has not been filled in.
type LoanApplication struct {
	BankBalance    float64        `json:"bank_balance" yaml:"bank_balance" validate:"required,gt=0"`
	CibilScore     int            `json:"cibil_score" yaml:"cibil_score" validate:"required,min=300,max=900"`
	LoanAmount     float64        `json:"loan_amount" yaml:"loan_amount" validate:"required,gt=0"`
	MonthlyIncome  float64        `json:"monthly_income" yaml:"monthly_income" validate:"required,gt=0"`
	LoanTenure     int            `json:"loan_tenure" yaml:"loan_tenure" validate:"required,min=1,max=30"`
	Age            int            `json:"age" yaml:"age" validate:"required,min=18,max=70"`
	EmploymentType EmploymentType `json:"employment_type" yaml:"employment_type" validate:"required,formoption=employmentTypes"`
	IncomeSource   IncomeSource   `json:"income_source" yaml:"income_source" validate:"required,formoption=incomeSources"`
	ExistingLoans  string         `json:"existing_loans" yaml:"existing_loans"`
	EMIExisting    float64        `json:"emi_existing" yaml:"emi_existing"`
	Language       string         `json:"language" yaml:"language"`
}

// NewLoanApplication returns a blank draft with the optional fields defaulted.
func NewLoanApplication(language string) LoanApplication {
	if language == "" {
		language = DefaultLanguage
	}
	return LoanApplication{
		ExistingLoans: ExistingLoansNo,
		EMIExisting:   0,
		Language:      language,
	}
}

// LogFields returns the draft without the amounts that must not reach logs.
func (a LoanApplication) LogFields() map[string]interface{} {
	return map[string]interface{}{
		FieldCibilScore:     a.CibilScore,
		FieldLoanAmount:     a.LoanAmount,
		FieldLoanTenure:     a.LoanTenure,
		FieldAge:            a.Age,
		FieldEmploymentType: string(a.EmploymentType),
		FieldIncomeSource:   string(a.IncomeSource),
		FieldExistingLoans:  a.ExistingLoans,
		FieldLanguage:       a.Language,
	}
}
