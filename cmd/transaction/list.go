package transaction

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/ledger"
	"github.com/bluepython508/monfari/internal/ui/prompts"
)

func NewListCmd(sess *app.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "list [account-id]",
		Short: "List the transactions touching one account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			accounts, err := application.Store.Accounts()
			if err != nil {
				return err
			}

			var acc ledger.Account
			if len(args) == 1 {
				id, err := ledger.ParseAccountID(args[0])
				if err != nil {
					return fmt.Errorf("invalid account id %q: %w", args[0], err)
				}
				acc, err = application.Store.Account(id)
				if err != nil {
					return err
				}
			} else {
				axis, err := prompts.PromptAccountType()
				if err != nil {
					return err
				}
				acc, err = prompts.PromptAccount("Account:", accounts, axis)
				if err != nil {
					return err
				}
			}

			txs, err := application.Store.Transactions(acc.ID)
			if err != nil {
				return err
			}

			names := make(map[ledger.AccountID]string, len(accounts))
			for _, a := range accounts {
				names[a.ID] = a.Name
			}

			displayTransactionList(acc, txs, names)
			return nil
		},
	}
}

func displayTransactionList(acc ledger.Account, txs []ledger.Transaction, names map[ledger.AccountID]string) {
	headers := []string{"ID", "Type", "Amount", "Details", "Notes"}
	tableData := pterm.TableData{headers}

	for _, t := range txs {
		record := t.Record()
		amount := t.Amount.String()
		var details string

		switch inner := t.Inner.(type) {
		case ledger.Received:
			amount = pterm.Green("+" + amount)
			details = fmt.Sprintf("from %s into %s / %s", inner.Source, name(names, inner.Dst.Erase()), name(names, inner.DstVirt.Erase()))
		case ledger.Paid:
			amount = pterm.Red("-" + amount)
			details = fmt.Sprintf("to %s out of %s / %s", inner.Dst, name(names, inner.Src.Erase()), name(names, inner.SrcVirt.Erase()))
		case ledger.MovePhys:
			details = fmt.Sprintf("%s -> %s", name(names, inner.Src.Erase()), name(names, inner.Dst.Erase()))
		case ledger.MoveVirt:
			details = fmt.Sprintf("%s -> %s", name(names, inner.Src.Erase()), name(names, inner.Dst.Erase()))
		case ledger.Convert:
			details = fmt.Sprintf("into %s in %s / %s", inner.NewAmount, name(names, inner.Acc.Erase()), name(names, inner.AccVirt.Erase()))
		}

		tableData = append(tableData, []string{t.ID.String(), record.Type, amount, details, t.Notes})
	}

	pterm.DefaultSection.Printf("Transactions of %s", acc.Name)
	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

	balance := ledger.BalanceOf(acc.ID, txs).String()
	if balance == "" {
		balance = "-"
	}
	pterm.Info.Printf("%d transactions, balance %s\n", len(txs), balance)
}

func name(names map[ledger.AccountID]string, id ledger.AccountID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id.String()
}
