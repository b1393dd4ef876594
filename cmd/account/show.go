package account

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
)

func NewShowCmd(sess *app.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [account-id]",
		Short: "Show one account in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			acc, err := resolveAccount(application, args, "Account:")
			if err != nil {
				return err
			}

			balance := acc.Current.String()
			if balance == "" {
				balance = "-"
			}
			notes := acc.Notes
			if notes == "" {
				notes = "None"
			}
			enabled := "yes"
			if !acc.Enabled {
				enabled = "no"
			}

			tableData := pterm.TableData{
				{pterm.Blue("Account ID"), acc.ID.String()},
				{pterm.Blue("Name"), acc.Name},
				{pterm.Blue("Type"), acc.Type.String()},
				{pterm.Blue("Balance"), balance},
				{pterm.Blue("Enabled"), enabled},
				{pterm.Blue("Notes"), notes},
			}
			pterm.DefaultTable.WithData(tableData).Render()
			return nil
		},
	}
}
