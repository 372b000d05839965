package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newAuthorizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Load the stored token or run the OAuth grant and store a new one",
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
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "authorized (token %s, refreshable: %t)\n",
				a.cfg.Auth.TokenKeyFor(), session.Token.RefreshToken != "")
			return err
		},
	}
}
