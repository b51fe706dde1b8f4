package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "loan-approval-client/internal/common/errors"
)

// NewTranslateCommand translates text through the scoring service.
func NewTranslateCommand(global *globalOptions) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "translate --lang <code> <text...>",
		Short: "Translate text into a supported language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, global)
			if err != nil {
				return err
			}
			defer e.close()

			if !e.registry.HasLanguage(lang) {
				return fmt.Errorf("unsupported language %q", lang)
			}

			translated, err := e.client.Translate(cmd.Context(), strings.Join(args, " "), lang)
			if err != nil {
				e.ui.failure(apperrors.UserMessage(err, e.cfg.Scoring.URL()))
				return reported(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), translated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language code")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}
