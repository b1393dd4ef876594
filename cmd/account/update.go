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

// The three update commands share one shape: pick an account, build an
// UpdateAccount command with a single change, run it.

func NewRenameCmd(sess *app.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "rename [account-id] [new-name]",
		Short: "Rename an account",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			acc, err := resolveAccount(application, firstArg(args), "Account to rename:")
			if err != nil {
				return err
			}

			var name string
			if len(args) == 2 {
				name = args[1]
			} else {
				name, err = prompts.PromptInput(fmt.Sprintf("New name (was %q):", acc.Name), "", func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a name is required")
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("account name must not be empty")
			}

			return runUpdate(application, acc, ledger.SetName(name), fmt.Sprintf("Renamed %s to %q", acc.ID, name))
		},
	}
}

func NewNotesCmd(sess *app.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "notes [account-id] [notes]",
		Short: "Replace an account's notes",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			acc, err := resolveAccount(application, firstArg(args), "Account to annotate:")
			if err != nil {
				return err
			}

			var notes string
			if len(args) == 2 {
				notes = args[1]
			} else {
				notes, err = prompts.PromptNotes("Notes:", false)
				if err != nil {
					return err
				}
			}

			return runUpdate(application, acc, ledger.SetNotes(notes), fmt.Sprintf("Updated notes of %s", acc.ID))
		},
	}
}

func NewDisableCmd(sess *app.Session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "disable [account-id]",
		Short: "Disable an account",
		Long: `Disable an account. Disabled accounts keep their history and balance but
are hidden from listings and pickers by default. Disabling is permanent.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := sess.Open()
			if err != nil {
				return err
			}

			acc, err := resolveAccount(application, args, "Account to disable:")
			if err != nil {
				return err
			}

			if !yes {
				confirm, err := prompts.PromptConfirm(fmt.Sprintf("Disable %q permanently?", acc.Name), false)
				if err != nil {
					return err
				}
				if !confirm {
					return fmt.Errorf("disable cancelled")
				}
			}

			return runUpdate(application, acc, ledger.Disable(), fmt.Sprintf("Disabled %s", acc.ID))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func firstArg(args []string) []string {
	if len(args) > 1 {
		return args[:1]
	}
	return args
}

func runUpdate(application *app.App, acc ledger.Account, change ledger.AccountChange, success string) error {
	update := ledger.UpdateAccount{ID: acc.ID, Changes: []ledger.AccountChange{change}}
	if _, err := application.Store.RunCommand(ledger.Command{UpdateAccount: &update}); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	pterm.Success.Println(success)
	return nil
}
