package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/ledger"
	"github.com/bluepython508/monfari/internal/store"
)

func NewInitCmd(sess *app.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create a new ledger repository",
		Long: `Create a new ledger repository, seeded with the default virtual account.

Without a path the configured repository address is used. Git repositories
are created explicitly here; sqlite databases are created on first open, so
init just opens and closes one. Remote addresses cannot be initialized from
the client side.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := sess.Config.Repository.Address
			if len(args) == 1 {
				addr = args[0]
			} else if addr == "" {
				var err error
				addr, err = app.RepositoryAddress(sess.Config)
				if err != nil {
					return err
				}
			}

			switch {
			case strings.HasPrefix(addr, "tcp:"), strings.HasPrefix(addr, "http://"), strings.HasPrefix(addr, "https://"):
				return fmt.Errorf("remote repository %s must be initialized where it is hosted", addr)
			case strings.HasPrefix(addr, "sqlite:"):
				repo, err := store.Open(addr, sess.Migrations)
				if err != nil {
					return err
				}
				accounts, err := repo.Accounts()
				if err != nil {
					_ = repo.Close()
					return err
				}
				if len(accounts) == 0 {
					account := ledger.DefaultVirtualAccount()
					if _, err := repo.RunCommand(ledger.Command{CreateAccount: &account}); err != nil {
						_ = repo.Close()
						return err
					}
				}
				if err := repo.Close(); err != nil {
					return err
				}
			default:
				path := strings.TrimPrefix(addr, "path:")
				repo, err := store.InitLocal(path)
				if err != nil {
					return err
				}
				if err := repo.Close(); err != nil {
					return err
				}
			}

			pterm.Success.Printf("Initialized repository at %s\n", addr)
			return nil
		},
	}
}
