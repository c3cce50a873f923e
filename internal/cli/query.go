package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/logplatform/backend/internal/logquery"
	"github.com/logplatform/backend/internal/models"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var (
		params logquery.QueryParams
		fleet  bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one log query and print matching lines",
		Long: `Run one query against the configured log stream, a peer, or the whole
fleet, and print the matching lines to stdout.

  logplatform query --date 2026-01-17 --start 10:00 --end 10:30
  logplatform query -k "order 42" --app app-1 --log-type error
  logplatform query --server server-2 -k timeout
  logplatform query --fleet -k timeout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			if params.Date == "" {
				params.Date = time.Now().Format(models.DateLayout)
			}
			criteria, err := logquery.BuildCriteria(params)
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			if fleet {
				return printFleet(ctx, cmd.OutOrStdout(), a, criteria)
			}
			result := a.engine.Query(ctx, criteria)
			for _, line := range result.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			for _, w := range result.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			if result.Peer != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "peer status: %s %s\n", result.Peer.Status, result.Peer.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&params.Date, "date", "d", "", "date to query, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&params.Keyword, "keyword", "k", "", "case-insensitive keyword")
	cmd.Flags().StringVar(&params.StartTime, "start", "", "window start, HH:MM or HH:MM:SS")
	cmd.Flags().StringVar(&params.EndTime, "end", "", "window end, HH:MM or HH:MM:SS")
	cmd.Flags().StringVar(&params.FileName, "file", "", "query exactly this file")
	cmd.Flags().StringVar(&params.AppID, "app", "", "app binding id")
	cmd.Flags().StringVar(&params.ServerID, "server", "", "run the query on this peer")
	cmd.Flags().StringVar(&params.LogType, "log-type", "", "info, error or all")
	cmd.Flags().BoolVar(&fleet, "fleet", false, "run the query on every registered server")

	return cmd
}

func printFleet(ctx context.Context, out io.Writer, a *app, criteria models.QueryCriteria) error {
	criteria.ServerID = ""
	for _, r := range a.aggregator.QueryFleet(ctx, criteria) {
		fmt.Fprintf(out, "== %s (%s) %s %s\n", r.ServerID, r.ServerName, r.Status, r.Message)
		for _, line := range r.Lines {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
