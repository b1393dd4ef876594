package cmd

import (
	"fmt"
	"net"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/store"
)

type serveFlags struct {
	Stdio bool
	Addr  string
	HTTP  string
}

func NewServeCmd(sess *app.Session) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the repository to remote clients",
		Long: `Expose the repository to remote clients.

--stdio speaks the stream protocol on stdin/stdout, for use behind inetd or
ssh. --addr listens for stream connections on a TCP address. --http serves
the HTTP form of the protocol. Exactly one must be given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			if flags.Stdio {
				modes++
			}
			if flags.Addr != "" {
				modes++
			}
			if flags.HTTP != "" {
				modes++
			}
			if modes != 1 {
				return fmt.Errorf("exactly one of --stdio, --addr or --http is required")
			}

			application, err := sess.Open()
			if err != nil {
				return err
			}
			server := store.NewServer(application.Store)

			switch {
			case flags.Stdio:
				return server.ServeConn(stdio{})
			case flags.Addr != "":
				l, err := net.Listen("tcp", flags.Addr)
				if err != nil {
					return err
				}
				defer l.Close()
				pterm.Info.Printf("Listening on %s\n", l.Addr())
				return server.ServeListener(l)
			default:
				pterm.Info.Printf("Serving HTTP on %s\n", flags.HTTP)
				return server.ListenHTTP(flags.HTTP)
			}
		},
	}

	cmd.Flags().BoolVar(&flags.Stdio, "stdio", false, "serve one session on stdin/stdout")
	cmd.Flags().StringVar(&flags.Addr, "addr", "", "serve the stream protocol on a TCP address")
	cmd.Flags().StringVar(&flags.HTTP, "http", "", "serve the HTTP protocol on an address")

	return cmd
}

// stdio joins stdin and stdout into the ReadWriter ServeConn expects.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
