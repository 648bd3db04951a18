package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/felipediel/watcher/internal/app"
	"github.com/felipediel/watcher/internal/config"
	"github.com/felipediel/watcher/internal/filter"
	"github.com/felipediel/watcher/internal/repository"
	"github.com/felipediel/watcher/internal/votes"
)

var version = "0.1.0"

var recordKinds = []string{"legislators", "bills", "votes", "vote_results"}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "watcher",
		Short: "Query legislative vote records",
		Long: `Watcher reads legislators, bills, votes and vote results from CSV files
(local or s3://) or Postgres tables, and summarizes how each legislator voted
and how each bill fared.

Sources are configured through the same environment variables as the server.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("format", "f", formatTable, "Output format (table, json)")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(summarizeCmd())
	return rootCmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list <legislators|bills|votes|vote_results>",
		Short:     "List records of one kind",
		ValidArgs: recordKinds,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Example: `  watcher list bills --filter sponsor_id=412211
  watcher list legislators --search Young --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			switch args[0] {
			case "legislators":
				return listRecords(cmd, a.Sources.Legislators, votes.PersonQuery, personColumns, q)
			case "bills":
				return listRecords(cmd, a.Sources.Bills, votes.BillQuery, billColumns, q)
			case "votes":
				return listRecords(cmd, a.Sources.Votes, votes.VoteQuery, voteColumns, q)
			default:
				return listRecords(cmd, a.Sources.VoteResults, votes.VoteResultQuery, voteResultColumns, q)
			}
		},
	}

	addQueryFlags(cmd)
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <legislators|bills|votes|vote_results> <id>",
		Short: "Show the record with the given id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			switch args[0] {
			case "legislators":
				return getRecord(cmd, a.Sources.Legislators, personColumns, id)
			case "bills":
				return getRecord(cmd, a.Sources.Bills, billColumns, id)
			case "votes":
				return getRecord(cmd, a.Sources.Votes, voteColumns, id)
			case "vote_results":
				return getRecord(cmd, a.Sources.VoteResults, voteResultColumns, id)
			default:
				return fmt.Errorf("unknown record kind %q (want one of %s)", args[0], strings.Join(recordKinds, ", "))
			}
		},
	}
}

func summarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "summarize <legislators|bills>",
		Short:     "Summarize votes per legislator or per bill",
		ValidArgs: []string{"legislators", "bills"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Example: `  watcher summarize legislators
  watcher summarize bills --search "Build Back" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			format, _ := cmd.Flags().GetString("format")
			ctx := cmd.Context()

			if args[0] == "legislators" {
				s, err := votes.LegislatorVoteSummaryQuery.Filter(q)
				if err != nil {
					return err
				}
				items, err := a.Service.LegislatorSummaries(ctx, a.Sources, s)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, legislatorSummaryColumns, items)
			}

			s, err := votes.BillVoteSummaryQuery.Filter(q)
			if err != nil {
				return err
			}
			items, err := a.Service.BillSummaries(ctx, a.Sources, s)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, billSummaryColumns, items)
		},
	}

	addQueryFlags(cmd)
	return cmd
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("filter", nil, "Field filter as name=value; repeatable (e.g. sponsor_id__in=1,2)")
	cmd.Flags().String("search", "", "Search term matched against the searchable fields")
}

// queryFromFlags turns --filter and --search into query parameters
func queryFromFlags(cmd *cobra.Command) (url.Values, error) {
	filters, _ := cmd.Flags().GetStringArray("filter")
	search, _ := cmd.Flags().GetString("search")

	q := url.Values{}
	for _, f := range filters {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid filter %q: expected name=value", f)
		}
		q.Add(name, value)
	}
	if search != "" {
		q.Set(filter.SearchParam, search)
	}
	return q, nil
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return app.Open(ctx, cfg, cfg.NewLogger())
}

func listRecords[T any](cmd *cobra.Command, repo repository.Repository[T], query votes.Query[T], cols columns[T], q url.Values) error {
	s, err := query.Filter(q)
	if err != nil {
		return err
	}
	items, err := repo.All(cmd.Context(), s)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	return render(cmd.OutOrStdout(), format, cols, items)
}

func getRecord[T any](cmd *cobra.Command, repo repository.Repository[T], cols columns[T], id int64) error {
	item, err := repo.GetByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	return render(cmd.OutOrStdout(), format, cols, []T{item})
}
