// regctl is the operator CLI for eventreg.
//
// Usage:
//
//	regctl token --email rh@empresa.com
//	regctl migrate up
//	regctl export --departamento TI --dia 2025-01-16 --out inscricoes.csv
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eventreg/internal/platform/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Subcommands read configuration through
// the --config flag the same way cmd/server does.
func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "regctl",
		Short: "Operate the eventreg workshop registration service",
		Long: `regctl issues dashboard tokens, applies database migrations and exports
registrations as CSV without going through the HTTP API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("EVENTREG_CONFIG"), "Path to a YAML config file")

	load := func() (config.Server, error) {
		return config.Load(configPath)
	}

	rootCmd.AddCommand(tokenCmd(load))
	rootCmd.AddCommand(migrateCmd(load))
	rootCmd.AddCommand(exportCmd(load))
	return rootCmd
}

type configLoader func() (config.Server, error)
