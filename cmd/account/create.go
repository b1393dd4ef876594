package account

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/ledger"
	"github.com/bluepython508/monfari/internal/ui/prompts"
)

type createFlags struct {
	Name  string
	Type  string
	Notes string
}

func NewCreateCmd(sess *app.Session) *cobra.Command {
	flags := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		Long: `Create a new account on one of the two axes.

Physical accounts describe where money actually sits (a bank account, a
wallet). Virtual accounts describe what money is earmarked for (rent,
savings). New accounts start enabled with an empty balance.

Example: monfari account create -t physical -n "Checking"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			name := flags.Name
			typ := ledger.AccountType(strings.ToLower(flags.Type))

			if !cmd.Flags().Changed("name") {
				name, err = prompts.PromptInput("Account Name:", "", func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a name is required")
					}
					return nil
				})
				if err != nil {
					return err
				}
			} else if strings.TrimSpace(name) == "" {
				return fmt.Errorf("account name must not be empty")
			}

			if !cmd.Flags().Changed("type") {
				typ, err = prompts.PromptAccountType()
				if err != nil {
					return err
				}
			} else if typ, err = ledger.ParseAccountType(flags.Type); err != nil {
				return err
			}

			notes, err := resolveNotes(cmd, flags)
			if err != nil {
				return err
			}

			account := ledger.NewAccount(name, typ, notes)
			if _, err := application.Store.RunCommand(ledger.Command{CreateAccount: &account}); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			tableData := pterm.TableData{
				{pterm.Blue("Account ID"), account.ID.String()},
				{pterm.Blue("Name"), account.Name},
				{pterm.Blue("Type"), account.Type.String()},
			}
			pterm.DefaultTable.WithData(tableData).Render()
			pterm.Success.Println("Account created successfully!")
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.Name, "name", "n", "", "Account name")
	cmd.Flags().StringVarP(&flags.Type, "type", "t", "", "Account type: physical or virtual")
	cmd.Flags().StringVarP(&flags.Notes, "notes", "d", "", "Account notes (optional)")

	return cmd
}

// resolveNotes prompts only in fully interactive runs. Any flag at all means
// the caller is scripting and gets the flag value, empty or not.
func resolveNotes(cmd *cobra.Command, flags *createFlags) (string, error) {
	if cmd.Flags().NFlag() > 0 {
		return flags.Notes, nil
	}
	return prompts.PromptNotes("Notes (optional):", false)
}
