package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-photolist/internal/tui"
)

func newViewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Browse the catalog interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			// The list owns the terminal; logs go to the log file or to a
			// redirected stderr.
			var logOut io.Writer = io.Discard
			if !isTerminal(os.Stderr) {
				logOut = os.Stderr
			}
			if err := ctx.useLogger(logOut); err != nil {
				return err
			}
			logger := ctx.logger

			records, err := loadRecords(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			relay := &tui.Relay{}
			p, err := newPipeline(cfg, records, relay, logger)
			if err != nil {
				return err
			}
			defer p.close()

			if err := p.announce(relay.Post); err != nil {
				return err
			}
			return tui.Run(tui.NewModel(p.sched, logger), relay)
		},
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
