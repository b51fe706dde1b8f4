package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "loan-approval-client/internal/common/errors"
)

// NewHealthCommand checks that the scoring service answers.
func NewHealthCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the loan scoring service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, global)
			if err != nil {
				return err
			}
			defer e.close()

			status, err := e.client.HealthCheck(cmd.Context())
			if err != nil {
				e.ui.failure(apperrors.UserMessage(err, e.cfg.Scoring.URL()))
				return reported(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Service:   %s\n", e.cfg.Scoring.URL())
			fmt.Fprintf(out, "Status:    %s\n", status.Status)
			if status.Version != "" {
				fmt.Fprintf(out, "Version:   %s\n", status.Version)
			}
			fmt.Fprintf(out, "Frontend:  %t\n", status.FrontendBuilt)
			if status.Timestamp != "" {
				fmt.Fprintf(out, "Checked:   %s\n", status.Timestamp)
			}
			return nil
		},
	}
}
