package account

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/ledger"
)

type listFlags struct {
	Type         string
	ShowDisabled bool
}

func NewListCmd(sess *app.Session) *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		Long: `List accounts with their current balances.
You can filter by axis or include disabled accounts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			accounts, err := application.Store.Accounts()
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}

			if flags.Type != "" {
				axis, err := ledger.ParseAccountType(flags.Type)
				if err != nil {
					return err
				}
				accounts = filterByType(accounts, axis)
			}

			if !flags.ShowDisabled {
				accounts = filterDisabled(accounts)
			}

			displayAccountList(accounts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.Type, "type", "t", "", "Filter accounts by type (physical, virtual)")
	cmd.Flags().BoolVar(&flags.ShowDisabled, "show-disabled", false, "Include disabled accounts")

	return cmd
}

func filterByType(accounts []ledger.Account, axis ledger.AccountType) []ledger.Account {
	var filtered []ledger.Account
	for _, acc := range accounts {
		if acc.Type == axis {
			filtered = append(filtered, acc)
		}
	}
	return filtered
}

func filterDisabled(accounts []ledger.Account) []ledger.Account {
	var filtered []ledger.Account
	for _, acc := range accounts {
		if acc.Enabled {
			filtered = append(filtered, acc)
		}
	}
	return filtered
}

func displayAccountList(accounts []ledger.Account) {
	headers := []string{"ID", "Name", "Type", "Balance"}
	tableData := pterm.TableData{headers}

	for _, acc := range accounts {
		balance := acc.Current.String()
		if balance == "" {
			balance = "-"
		}

		var row []string
		switch {
		case !acc.Enabled:
			row = []string{pterm.Gray(acc.ID.String()), pterm.Gray(acc.Name), pterm.Gray(acc.Type.String()), pterm.Gray(balance)}
		case acc.Type == ledger.Physical:
			row = []string{acc.ID.String(), pterm.Green(acc.Name), acc.Type.String(), pterm.Green(balance)}
		default:
			row = []string{acc.ID.String(), pterm.Cyan(acc.Name), acc.Type.String(), pterm.Cyan(balance)}
		}
		tableData = append(tableData, row)
	}

	pterm.DefaultSection.Printf("Account List")
	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	pterm.Info.Printf("Total: %d accounts\n", len(accounts))
}
