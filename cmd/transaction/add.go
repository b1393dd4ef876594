package transaction

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/ledger"
	"github.com/bluepython508/monfari/internal/ui/prompts"
)

type addFlags struct {
	Amount    string
	NewAmount string
	Party     string
	Src       string
	Dst       string
	Virt      string
	Notes     string
}

func NewAddCmd(sess *app.Session) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new transaction",
		Long: `Record a new transaction. Each subcommand is one shape; with no flags it
walks through the fields interactively.`,
	}

	addCmd.AddCommand(newReceivedCmd(sess))
	addCmd.AddCommand(newPaidCmd(sess))
	addCmd.AddCommand(newMovePhysCmd(sess))
	addCmd.AddCommand(newMoveVirtCmd(sess))
	addCmd.AddCommand(newConvertCmd(sess))

	return addCmd
}

func newReceivedCmd(sess *app.Session) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "received",
		Short: "Money entering the system from an external source",
		Example: `  monfari tx add received -a "1000.00 EUR" --from "Employer" --dst <physical-id> --virt <virtual-id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			amount, err := getAmount(sess, flags.Amount, "Amount received:")
			if err != nil {
				return err
			}

			source := flags.Party
			if source == "" {
				source, err = prompts.PromptNotes("Received from:", true)
				if err != nil {
					return err
				}
			}

			dst, err := pickPhysical(application, flags.Dst, "Into physical account:")
			if err != nil {
				return err
			}
			virt, err := pickVirtual(application, flags.Virt, "Earmarked for:")
			if err != nil {
				return err
			}

			notes, err := resolveNotes(cmd, flags)
			if err != nil {
				return err
			}

			return record(application, ledger.Transaction{
				ID:     ledger.NewTransactionID(),
				Notes:  notes,
				Amount: amount,
				Inner:  ledger.Received{Source: source, Dst: dst, DstVirt: virt},
			})
		},
	}

	cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", `Amount, e.g. "12.34 EUR"`)
	cmd.Flags().StringVar(&flags.Party, "from", "", "External source of the money")
	cmd.Flags().StringVar(&flags.Dst, "dst", "", "Destination physical account id")
	cmd.Flags().StringVar(&flags.Virt, "virt", "", "Destination virtual account id")
	cmd.Flags().StringVar(&flags.Notes, "notes", "", "Free-form notes")

	return cmd
}

func newPaidCmd(sess *app.Session) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "paid",
		Short: "Money leaving the system to an external party",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			amount, err := getAmount(sess, flags.Amount, "Amount paid:")
			if err != nil {
				return err
			}

			party := flags.Party
			if party == "" {
				party, err = prompts.PromptNotes("Paid to:", true)
				if err != nil {
					return err
				}
			}

			src, err := pickPhysical(application, flags.Src, "From physical account:")
			if err != nil {
				return err
			}
			virt, err := pickVirtual(application, flags.Virt, "Against earmark:")
			if err != nil {
				return err
			}

			notes, err := resolveNotes(cmd, flags)
			if err != nil {
				return err
			}

			return record(application, ledger.Transaction{
				ID:     ledger.NewTransactionID(),
				Notes:  notes,
				Amount: amount,
				Inner:  ledger.Paid{Src: src, SrcVirt: virt, Dst: party},
			})
		},
	}

	cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", `Amount, e.g. "12.34 EUR"`)
	cmd.Flags().StringVar(&flags.Party, "to", "", "External recipient of the money")
	cmd.Flags().StringVar(&flags.Src, "src", "", "Source physical account id")
	cmd.Flags().StringVar(&flags.Virt, "virt", "", "Source virtual account id")
	cmd.Flags().StringVar(&flags.Notes, "notes", "", "Free-form notes")

	return cmd
}

func newMovePhysCmd(sess *app.Session) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "move-phys",
		Short: "Move money between physical accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			amount, err := getAmount(sess, flags.Amount, "Amount to move:")
			if err != nil {
				return err
			}
			src, err := pickPhysical(application, flags.Src, "From:")
			if err != nil {
				return err
			}
			dst, err := pickPhysical(application, flags.Dst, "To:")
			if err != nil {
				return err
			}
			if src == dst {
				return fmt.Errorf("source and destination must differ")
			}

			notes, err := resolveNotes(cmd, flags)
			if err != nil {
				return err
			}

			return record(application, ledger.Transaction{
				ID:     ledger.NewTransactionID(),
				Notes:  notes,
				Amount: amount,
				Inner:  ledger.MovePhys{Src: src, Dst: dst},
			})
		},
	}

	cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", `Amount, e.g. "12.34 EUR"`)
	cmd.Flags().StringVar(&flags.Src, "src", "", "Source physical account id")
	cmd.Flags().StringVar(&flags.Dst, "dst", "", "Destination physical account id")
	cmd.Flags().StringVar(&flags.Notes, "notes", "", "Free-form notes")

	return cmd
}

func newMoveVirtCmd(sess *app.Session) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "move-virt",
		Short: "Move an earmark between virtual accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			amount, err := getAmount(sess, flags.Amount, "Amount to move:")
			if err != nil {
				return err
			}
			src, err := pickVirtual(application, flags.Src, "From:")
			if err != nil {
				return err
			}
			dst, err := pickVirtual(application, flags.Dst, "To:")
			if err != nil {
				return err
			}
			if src == dst {
				return fmt.Errorf("source and destination must differ")
			}

			notes, err := resolveNotes(cmd, flags)
			if err != nil {
				return err
			}

			return record(application, ledger.Transaction{
				ID:     ledger.NewTransactionID(),
				Notes:  notes,
				Amount: amount,
				Inner:  ledger.MoveVirt{Src: src, Dst: dst},
			})
		},
	}

	cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", `Amount, e.g. "12.34 EUR"`)
	cmd.Flags().StringVar(&flags.Src, "src", "", "Source virtual account id")
	cmd.Flags().StringVar(&flags.Dst, "dst", "", "Destination virtual account id")
	cmd.Flags().StringVar(&flags.Notes, "notes", "", "Free-form notes")

	return cmd
}

func newConvertCmd(sess *app.Session) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Exchange one currency for another in place",
		Long: `Exchange one currency for another in place. The old amount is removed and
the new amount added on both the physical account and its virtual earmark,
so the exchange never unbalances the two axes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			amount, err := getAmount(sess, flags.Amount, "Amount given up:")
			if err != nil {
				return err
			}

			var newAmount ledger.Amount
			if flags.NewAmount != "" {
				newAmount, err = ledger.ParseAmount(flags.NewAmount)
			} else {
				newAmount, err = prompts.PromptAmount("Amount received:", "")
			}
			if err != nil {
				return err
			}
			if newAmount.Currency == amount.Currency {
				return fmt.Errorf("conversion must change currency")
			}

			acc, err := pickPhysical(application, flags.Src, "In physical account:")
			if err != nil {
				return err
			}
			virt, err := pickVirtual(application, flags.Virt, "Under earmark:")
			if err != nil {
				return err
			}

			notes, err := resolveNotes(cmd, flags)
			if err != nil {
				return err
			}

			return record(application, ledger.Transaction{
				ID:     ledger.NewTransactionID(),
				Notes:  notes,
				Amount: amount,
				Inner:  ledger.Convert{Acc: acc, AccVirt: virt, NewAmount: newAmount},
			})
		},
	}

	cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", `Amount given up, e.g. "100.00 EUR"`)
	cmd.Flags().StringVar(&flags.NewAmount, "new-amount", "", `Amount received, e.g. "90.00 USD"`)
	cmd.Flags().StringVar(&flags.Src, "acc", "", "Physical account id")
	cmd.Flags().StringVar(&flags.Virt, "virt", "", "Virtual account id")
	cmd.Flags().StringVar(&flags.Notes, "notes", "", "Free-form notes")

	return cmd
}

// resolveNotes only prompts when the run is already interactive; a run with
// any flag set keeps whatever --notes said, including nothing.
func resolveNotes(cmd *cobra.Command, flags *addFlags) (string, error) {
	if cmd.Flags().NFlag() > 0 {
		return flags.Notes, nil
	}
	return prompts.PromptNotes("Notes (optional):", false)
}

func record(application *app.App, t ledger.Transaction) error {
	accounts, err := application.Store.RunCommand(ledger.Command{AddTransaction: &t})
	if err != nil {
		return fmt.Errorf("failed to add transaction: %w", err)
	}

	names := make(map[ledger.AccountID]string, len(accounts))
	balances := make(map[ledger.AccountID]string, len(accounts))
	for _, acc := range accounts {
		names[acc.ID] = acc.Name
		balances[acc.ID] = acc.Current.String()
	}

	tableData := pterm.TableData{
		{pterm.Blue("Transaction ID"), t.ID.String()},
		{pterm.Blue("Amount"), t.Amount.String()},
	}
	for _, id := range t.Accounts() {
		label := fmt.Sprintf("%s (%s)", names[id], id)
		tableData = append(tableData, []string{pterm.Blue(label), balances[id]})
	}
	pterm.DefaultTable.WithData(tableData).Render()
	pterm.Success.Println("Transaction recorded!")
	return nil
}
