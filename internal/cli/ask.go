package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the portfolio assistant a question",
	Long: `Send one question to the portfolio assistant and print its reply.

The assistant answers from the current catalog. When the completion service
cannot be reached the fixed apology is printed; details go to the log.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if NewAssistant == nil {
			return fmt.Errorf("assistant not initialized")
		}

		question := strings.Join(args, " ")
		session := NewAssistant()
		done, ok := session.SendTurn(commandContext(cmd), question)
		if !ok {
			return fmt.Errorf("question must not be blank")
		}

		turn := <-done
		fmt.Fprintln(cmd.OutOrStdout(), turn.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
