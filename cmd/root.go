package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bluepython508/monfari/cmd/account"
	"github.com/bluepython508/monfari/cmd/transaction"
	"github.com/bluepython508/monfari/internal/app"
	"github.com/bluepython508/monfari/internal/config"
	"github.com/bluepython508/monfari/internal/errhandler"
)

var (
	cfgFile  string
	repoAddr string
	cfg      *config.Config
)

func Execute(migrations fs.FS) {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	sess := app.NewSession(nil, migrations)
	defer sess.Close()

	rootCmd := &cobra.Command{
		Use:           "monfari",
		Short:         "monfari is a two-axis personal finance ledger",
		Long: `monfari tracks money along two independent axes: physical accounts say
where money actually sits, virtual accounts say what it is earmarked for.
Every change goes through a command that either fully applies or is fully
rejected.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "set the config file path")
	rootCmd.PersistentFlags().StringVarP(&repoAddr, "repo", "r", "", "repository address (path, sqlite:, tcp:, http://)")

	cobra.OnInitialize(func() {
		if err := initConfig(); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		if repoAddr != "" {
			cfg.Repository.Address = repoAddr
		}
		sess.Config = cfg
	})

	rootCmd.AddCommand(NewInitCmd(sess))
	rootCmd.AddCommand(NewServeCmd(sess))
	rootCmd.AddCommand(account.NewAccountCmd(sess))
	rootCmd.AddCommand(transaction.NewTransactionCmd(sess))

	rootCmd.AddCommand(NewAccountsCmd(sess))

	if err := rootCmd.Execute(); err != nil {
		errhandler.HandleInterrupt(err)

		pterm.Error.Println(capitalize(err.Error()))
		sess.Close()
		os.Exit(1)
	}
}

// NewAccountsCmd is a top-level shorthand for "account list".
func NewAccountsCmd(sess *app.Session) *cobra.Command {
	cmd := account.NewListCmd(sess)
	cmd.Use = "accounts"
	cmd.Aliases = nil
	return cmd
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		appDir, err := getAppDataDir()
		if err != nil {
			return fmt.Errorf("error getting app dir: %w", err)
		}

		viper.AddConfigPath(appDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if err := createDefaultConfig(appDir); err != nil {
			return fmt.Errorf("failed to ensure config file: %w", err)
		}
	}

	viper.SetEnvPrefix("MONFARI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // allow using environment variables to override

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("config file error: %w", err)
		}
	}

	cfg = config.NewDefault()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode into struct, %v", err)
	}

	cfg.ConfigPath = viper.ConfigFileUsed()

	return nil
}

func getAppDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine user home directory: %w", err)
		}
		return filepath.Join(home, ".monfari"), nil
	}

	return filepath.Join(configDir, "monfari"), nil
}

func createDefaultConfig(appDir string) error {
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(appDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
