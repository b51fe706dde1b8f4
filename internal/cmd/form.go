package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	submitapplication "loan-approval-client/internal/loan/submit-application"
	"loan-approval-client/internal/models"
	"loan-approval-client/pkg/registry"
)

var errInputClosed = errors.New("input closed")

// formField is one prompt of the interactive form. choices is nil for text input.
type formField struct {
	name    string
	choices func(*registry.FormRegistry) []registry.Option
}

var formFields = []formField{
	{name: models.FieldBankBalance},
	{name: models.FieldCibilScore},
	{name: models.FieldLoanAmount},
	{name: models.FieldMonthlyIncome},
	{name: models.FieldLoanTenure},
	{name: models.FieldAge},
	{name: models.FieldEmploymentType, choices: func(r *registry.FormRegistry) []registry.Option { return r.EmploymentTypes }},
	{name: models.FieldIncomeSource, choices: func(r *registry.FormRegistry) []registry.Option { return r.IncomeSources }},
	{name: models.FieldExistingLoans, choices: func(r *registry.FormRegistry) []registry.Option { return r.ExistingLoans }},
	{name: models.FieldEMIExisting},
	{name: models.FieldLanguage, choices: func(r *registry.FormRegistry) []registry.Option { return r.Languages }},
}

// NewFormCommand fills in an application interactively.
func NewFormCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Fill in and submit a loan application interactively",
		Long: `Prompt for every application field, validate locally and submit.
Fields that fail validation are asked again. Leave an optional
field empty to keep its default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, global)
			if err != nil {
				return err
			}
			defer e.close()

			ctrl := submitapplication.NewController(
				submitapplication.LoadConfig(e.cfg), e.client, e.log,
				submitapplication.WithRecorder(e.obs),
		submitapplication.WithRegistry(e.registry),
			)
			p := &prompter{in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout(), reg: e.registry}
			return runForm(cmd, e, ctrl, p)
		},
	}
}

func runForm(cmd *cobra.Command, e *env, ctrl *submitapplication.Controller, p *prompter) error {
	pending := formFields
	for {
		if err := p.fill(ctrl, pending); err != nil {
			return err
		}

		err := submitAndShow(cmd, e, ctrl)
		if errors.Is(err, errInvalidApplication) {
			pending = failing(ctrl.Snapshot().Errors.Fields())
			continue
		}
		if err != nil && !IsReported(err) {
			return err
		}

		again, perr := p.confirm("Start a new application?")
		if perr != nil || !again {
			return err
		}
		ctrl.Reset()
		pending = formFields
	}
}

func failing(names []string) []formField {
	var out []formField
	for _, f := range formFields {
		for _, n := range names {
			if f.name == n {
				out = append(out, f)
			}
		}
	}
	return out
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
	reg *registry.FormRegistry
}

func (p *prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) fill(ctrl *submitapplication.Controller, fields []formField) error {
	for _, f := range fields {
		value, err := p.ask(f)
		if err != nil {
			return err
		}
		if value == "" && !isRequired(f.name) {
			continue
		}
		if err := ctrl.SetField(f.name, value); err != nil {
			return err
		}
	}
	return nil
}

// ask prompts for one field. Choice fields accept a number or a value and are
// asked again until the answer matches.
func (p *prompter) ask(f formField) (string, error) {
	if f.choices == nil {
		fmt.Fprintf(p.out, "%s: ", fieldLabel(f.name))
		return p.readLine()
	}

	opts := f.choices(p.reg)
	for {
		fmt.Fprintln(p.out, fieldLabel(f.name))
		for i, o := range opts {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, o.Label)
		}
		fmt.Fprint(p.out, "> ")
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" && !isRequired(f.name) {
			return "", nil
		}
		if v, ok := pick(opts, answer); ok {
			return v, nil
		}
		fmt.Fprintf(p.out, "%q is not one of the choices\n", answer)
	}
}

func pick(opts []registry.Option, answer string) (string, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(opts) {
			return opts[n-1].Value, true
		}
		return "", false
	}
	for _, o := range opts {
		if strings.EqualFold(o.Value, answer) {
			return o.Value, true
		}
	}
	return "", false
}

func (p *prompter) confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func isRequired(name string) bool {
	for _, f := range models.RequiredFields {
		if f == name {
			return true
		}
	}
	return false
}
