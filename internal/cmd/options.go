package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewOptionsCommand lists the choices offered by the application form.
func NewOptionsCommand(global *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List languages, employment types and income sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, global)
			if err != nil {
				return err
			}
			defer e.close()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(e.registry)
			}

			e.ui.formOptions()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
