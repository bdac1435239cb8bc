// Package cli implements the sheetboard command-line client. It talks to a
// running analytics server over HTTP and prints the JSON results.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}

	rootCmd := &cobra.Command{
		Use:           "sheetboard",
		Short:         "Analytics dashboard CLI",
		Long:          "Command-line client for the sheetboard analytics API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Flag > env > default precedence for the host.
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("SHEETBOARD_HOST"); v != "" {
					opts.host = v
				}
			}
		},
	}
	addClientFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(
		newSummaryCmd(opts),
		newPlansCmd(opts),
		newRisksCmd(opts),
		newUsersCmd(opts),
		newUserCmd(opts),
		newDumpCmd(opts),
	)
	return rootCmd
}

// clientOptions are shared by every subcommand.
type clientOptions struct {
	host    string
	timeout time.Duration
}

func addClientFlags(fs *pflag.FlagSet, opts *clientOptions) {
	fs.StringVar(&opts.host, "host", "http://localhost:8080", "server base URL")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
}
