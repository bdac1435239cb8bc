package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Headline user metrics",
		Args:  cobra.NoArgs,
		RunE:  fetchAndPrint(opts, func([]string) string { return "/summary" }),
	}
}

func newPlansCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Completed users per investment plan",
		Args:  cobra.NoArgs,
		RunE:  fetchAndPrint(opts, func([]string) string { return "/plans" }),
	}
}

func newRisksCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "risks",
		Short: "Completed users per risk option",
		Args:  cobra.NoArgs,
		RunE:  fetchAndPrint(opts, func([]string) string { return "/risks" }),
	}
}

func newUsersCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List known usernames",
		Args:  cobra.NoArgs,
		RunE:  fetchAndPrint(opts, func([]string) string { return "/users-list" }),
	}
}

func newUserCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user <username>",
		Short: "Latest profile and activity timeline for one user",
		Args:  cobra.ExactArgs(1),
		RunE: fetchAndPrint(opts, func(args []string) string {
			return "/user/" + url.PathEscape(args[0])
		}),
	}
}

func newDumpCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "dump <users|subscriptions|all>",
		Short:     "Dump a normalized dataset",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"users", "subscriptions", "all"},
		RunE: fetchAndPrint(opts, func(args []string) string {
			switch args[0] {
			case "users":
				return "/users-master"
			case "subscriptions":
				return "/subscriptions"
			default:
				return "/data"
			}
		}),
	}
}

func fetchAndPrint(opts *clientOptions, path func(args []string) string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		raw, err := getJSON(cmd.Context(), opts, path(args))
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		return printJSON(os.Stdout, raw)
	}
}
