package account

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/ledger"
	"github.com/bluepython508/monfari/internal/ui/prompts"
)

func NewAccountCmd(sess *app.Session) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Create, inspect and update accounts",
		Long:  `Create, inspect and update accounts on either axis.`,
	}

	accountCmd.AddCommand(NewCreateCmd(sess))
	accountCmd.AddCommand(NewListCmd(sess))
	accountCmd.AddCommand(NewShowCmd(sess))
	accountCmd.AddCommand(NewRenameCmd(sess))
	accountCmd.AddCommand(NewNotesCmd(sess))
	accountCmd.AddCommand(NewDisableCmd(sess))

	return accountCmd
}

// resolveAccount turns an optional positional argument into an account,
// falling back to an interactive picker over both axes.
func resolveAccount(application *app.App, args []string, message string) (ledger.Account, error) {
	if len(args) == 1 {
		id, err := ledger.ParseAccountID(args[0])
		if err != nil {
			return ledger.Account{}, fmt.Errorf("invalid account id %q: %w", args[0], err)
		}
		return application.Store.Account(id)
	}

	accounts, err := application.Store.Accounts()
	if err != nil {
		return ledger.Account{}, err
	}

	axis, err := prompts.PromptAccountType()
	if err != nil {
		return ledger.Account{}, err
	}

	return prompts.PromptAccount(message, accounts, axis)
}
