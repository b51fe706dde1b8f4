package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	chatassistant "loan-approval-client/internal/loan/chat-assistant"
)

// NewChatCommand talks to the service's loan assistant.
func NewChatCommand(global *globalOptions) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Ask the loan assistant a question",
		Long: `Ask the loan assistant a question. With a message the reply is printed
and the command exits; without one an interactive session starts.

In a session, enter a number to send a suggested question,
"/lang <code>" to switch language and "/quit" to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, global)
			if err != nil {
				return err
			}
			defer e.close()

			if lang == "" {
				lang = e.cfg.Session.DefaultLanguage
			}
			if !e.registry.HasLanguage(lang) {
				return fmt.Errorf("unsupported language %q", lang)
			}

			assistant := chatassistant.NewAssistant(e.client, lang, e.log,
				chatassistant.WithRecorder(e.obs))

			if len(args) > 0 {
				reply, err := assistant.Send(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				e.ui.chatMessage(reply)
				return nil
			}
			return runChatSession(cmd, e, assistant)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Language code for replies")
	return cmd
}

func runChatSession(cmd *cobra.Command, e *env, assistant *chatassistant.Assistant) error {
	out := cmd.OutOrStdout()
	for _, m := range assistant.Transcript() {
		e.ui.chatMessage(m)
	}
	actions := chatassistant.QuickActions()
	fmt.Fprintln(out, "Suggested questions:")
	for i, a := range actions {
		fmt.Fprintf(out, "  %d) %s\n", i+1, a)
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case strings.HasPrefix(line, "/lang"):
			code := strings.TrimSpace(strings.TrimPrefix(line, "/lang"))
			if !e.registry.HasLanguage(code) {
				fmt.Fprintf(out, "unsupported language %q\n", code)
				continue
			}
			assistant.SetLanguage(code)
			fmt.Fprintf(out, "Language set to %s\n", e.registry.LanguageName(code))
			continue
		}

		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(actions) {
			line = actions[n-1]
		}

		reply, err := assistant.Send(cmd.Context(), line)
		if errors.Is(err, chatassistant.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return err
		}
		e.ui.chatMessage(reply)
	}
}
