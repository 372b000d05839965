package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/recentmail/internal/mailbox"
	"github.com/joshsymonds/recentmail/internal/runtime"
)

func newLabelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List label names and ids",
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

			session, err := a.authorize(ctx, cmd)
			if err != nil {
				return err
			}
			client, err := runtime.NewGmailClient(ctx, session, opts.gmailOptions...)
			if err != nil {
				return fmt.Errorf("create gmail client: %w", err)
			}
			labels, err := mailbox.NewService(client, nil, a.log).Labels(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range labels {
				if _, err := fmt.Fprintf(out, "%-30s %s\n", l.Name, l.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
