package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	presentresult "loan-approval-client/internal/loan/present-result"
	submitapplication "loan-approval-client/internal/loan/submit-application"
	"loan-approval-client/internal/models"
)

// errInvalidApplication is returned after validation errors were printed.
var errInvalidApplication = errors.New("application has invalid fields")

type submitOptions struct {
	file   string
	fields []string
	lang   string
}

// NewSubmitCommand submits an application assembled from a draft file and flags.
func NewSubmitCommand(global *globalOptions) *cobra.Command {
	o := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate and submit a loan application",
		Long: `Validate a loan application and submit it to the scoring service.

Fields come from a YAML draft (--file) and are overridden by --set:

  loanctl submit --file application.yaml --set loan_amount=750000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, global, o)
		},
	}

	cmd.Flags().StringVarP(&o.file, "file", "f", "", "YAML file with the application draft")
	cmd.Flags().StringArrayVar(&o.fields, "set", nil, "Set a field, as name=value (repeatable)")
	cmd.Flags().StringVar(&o.lang, "lang", "", "Response language code")

	return cmd
}

func runSubmit(cmd *cobra.Command, global *globalOptions, o *submitOptions) error {
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

	if o.file != "" {
		draft, err := readDraft(o.file)
		if err != nil {
			return err
		}
		if err := ctrl.LoadDraft(draft); err != nil {
			return err
		}
	}
	for _, kv := range o.fields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q, expected name=value", kv)
		}
		if err := ctrl.SetField(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}
	if o.lang != "" {
		if !e.registry.HasLanguage(o.lang) {
			return fmt.Errorf("unsupported language %q", o.lang)
		}
		if err := ctrl.SetField(models.FieldLanguage, o.lang); err != nil {
			return err
		}
	}

	return submitAndShow(cmd, e, ctrl)
}

// submitAndShow runs one submission to completion and renders its outcome.
func submitAndShow(cmd *cobra.Command, e *env, ctrl *submitapplication.Controller) error {
	ctx, span := e.obs.StartSpan(cmd.Context(), "loanctl.submit")
	defer span.End()

	outcome, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	if outcome == submitapplication.OutcomeInvalid {
		e.ui.validationErrors(ctrl.Snapshot().Errors)
		return reported(errInvalidApplication)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Analyzing application...")
	snap, err := ctrl.Wait(ctx)
	if err != nil {
		return err
	}

	switch snap.State {
	case submitapplication.StateShowingResult:
		e.ui.result(presentresult.Present(snap.Result))
		return nil
	case submitapplication.StateShowingError:
		e.ui.failure(snap.ErrorMessage)
		return reported(snap.Err)
	}
	return fmt.Errorf("submission ended in state %s", snap.State)
}

func readDraft(path string) (models.LoanApplication, error) {
	var draft models.LoanApplication
	data, err := os.ReadFile(path)
	if err != nil {
		return draft, fmt.Errorf("read draft: %w", err)
	}
	if err := yaml.Unmarshal(data, &draft); err != nil {
		return draft, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return draft, nil
}
