package transaction

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/ledger"
	"github.com/bluepython508/monfari/internal/ui/prompts"
)

func NewTransactionCmd(sess *app.Session) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Record and list transactions",
		Long:    `Record and list transactions. Every shape moves one amount; what it means depends on the shape.`,
	}

	txCmd.AddCommand(NewAddCmd(sess))
	txCmd.AddCommand(NewListCmd(sess))

	return txCmd
}

// pickPhysical resolves a physical account from a flag value or a prompt.
func pickPhysical(application *app.App, flagVal, message string) (ledger.PhysicalID, error) {
	acc, err := pickAccount(application, flagVal, message, ledger.Physical)
	if err != nil {
		return ledger.PhysicalID{}, err
	}
	return acc.ID.Physical(), nil
}

func pickVirtual(application *app.App, flagVal, message string) (ledger.VirtualID, error) {
	acc, err := pickAccount(application, flagVal, message, ledger.Virtual)
	if err != nil {
		return ledger.VirtualID{}, err
	}
	return acc.ID.Virtual(), nil
}

func pickAccount(application *app.App, flagVal, message string, axis ledger.AccountType) (ledger.Account, error) {
	if flagVal != "" {
		id, err := ledger.ParseAccountID(flagVal)
		if err != nil {
			return ledger.Account{}, fmt.Errorf("invalid account id %q: %w", flagVal, err)
		}
		acc, err := application.Store.Account(id)
		if err != nil {
			return ledger.Account{}, err
		}
		if acc.Type != axis {
			return ledger.Account{}, fmt.Errorf("%w: %s is %s, expected %s", ledger.ErrWrongAxis, acc.ID, acc.Type, axis)
		}
		return acc, nil
	}

	accounts, err := application.Store.Accounts()
	if err != nil {
		return ledger.Account{}, err
	}
	return prompts.PromptAccount(message, accounts, axis)
}

// getAmount resolves an amount from a flag value or a prompt. A bare number
// uses the configured default currency.
func getAmount(sess *app.Session, flagVal, message string) (ledger.Amount, error) {
	defaultCurrency := sess.Config.Defaults.Currency
	if flagVal != "" {
		amount, err := ledger.ParseAmount(flagVal)
		if err != nil && defaultCurrency != "" {
			if withDefault, retry := ledger.ParseAmount(flagVal + " " + defaultCurrency); retry == nil {
				return withDefault, nil
			}
		}
		return amount, err
	}
	return prompts.PromptAmount(message, defaultCurrency)
}
