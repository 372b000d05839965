package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/recentmail/internal/mailbox"
	"github.com/joshsymonds/recentmail/internal/rate"
	"github.com/joshsymonds/recentmail/internal/report"
	"github.com/joshsymonds/recentmail/internal/runtime"
)

type fetchOptions struct {
	query       string
	label       string
	jsonOut     string
	summary     bool
	pageSize    int
	rps         int
	concurrency int
}

func newFetchCmd(opts *rootOptions) *cobra.Command {
	fo := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch every message matching a query under a label",
		Long: `Resolve the label, page through all message ids matching the query, then
fetch each full message concurrently. Messages are printed as a JSON array in
listing order unless --summary or --json is given.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := opts.setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.close(ctx); err == nil {
					err = closeErr
				}
			}()

			fetchCfg := a.cfg.Fetch
			flags := cmd.Flags()
			if flags.Changed("query") {
				fetchCfg.Query = fo.query
			}
			if flags.Changed("label") {
				fetchCfg.Label = fo.label
			}
			if flags.Changed("page-size") {
				fetchCfg.PageSize = fo.pageSize
			}
			if flags.Changed("rps") {
				fetchCfg.RPS = fo.rps
			}
			if flags.Changed("concurrency") {
				fetchCfg.Concurrency = fo.concurrency
			}

			session, err := a.authorize(ctx, cmd)
			if err != nil {
				return err
			}
			client, err := runtime.NewGmailClient(ctx, session, opts.gmailOptions...)
			if err != nil {
				return fmt.Errorf("create gmail client: %w", err)
			}

			limiter := rate.New(fetchCfg.RPS)
			defer rate.Stop(limiter)

			svc := mailbox.NewService(client, limiter, a.log)
			svc.PageSize = fetchCfg.PageSize
			svc.Concurrency = fetchCfg.Concurrency

			msgs, err := svc.GetRecentEmail(ctx, fetchCfg.Query, fetchCfg.Label)
			if err != nil {
				return fmt.Errorf("get recent email: %w", err)
			}

			if fo.jsonOut != "" {
				if writeErr := report.WriteJSON(msgs, fo.jsonOut); writeErr != nil {
					return fmt.Errorf("write json: %w", writeErr)
				}
			}
			if fo.summary {
				return report.PrintSummary(msgs, cmd.OutOrStdout())
			}
			if fo.jsonOut != "" {
				return nil
			}
			return report.EncodeJSON(msgs, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&fo.query, "query", "", "Gmail search query (overrides config)")
	f.StringVar(&fo.label, "label", mailbox.DefaultLabel, "label name to restrict to (overrides config)")
	f.StringVar(&fo.jsonOut, "json", "", "write messages as JSON to this relative path")
	f.BoolVar(&fo.summary, "summary", false, "print one line per message instead of JSON")
	f.IntVar(&fo.pageSize, "page-size", 500, "Gmail list page size (<=500)")
	f.IntVar(&fo.rps, "rps", 0, "max listing requests per second (0 = unlimited)")
	f.IntVar(&fo.concurrency, "concurrency", 0, "max concurrent message fetches (0 = unlimited)")
	return cmd
}
