package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

type globalOptions struct {
	configPath  string
	logLevel    string
	optionsFile string
	noColor     bool
}

// NewRootCommand creates and returns the root cobra command for loanctl
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "loanctl",
		Short: "Loan application client for the loan scoring service",
		Long: `loanctl fills in a loan application, validates it locally, submits it
to the loan scoring service and shows the eligibility verdict.

It also talks to the service's loan assistant, translates text and
checks that the service is reachable.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a config file (default: configs/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.optionsFile, "options-file", "", "JSON file with form options (languages, employment types, income sources)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewFormCommand(opts))
	cmd.AddCommand(NewChatCommand(opts))
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewOptionsCommand(opts))

	return cmd
}
