package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-photolist/internal/loop"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every item without a UI and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if err := ctx.useLogger(os.Stderr); err != nil {
				return err
			}
			logger := ctx.logger

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			records, err := loadRecords(runCtx, cfg, logger)
			if err != nil {
				return err
			}

			lp := loop.New()
			var p *pipeline
			onChange := func(id int) {
				if err := p.sched.Evaluate(id); err != nil {
					logger.Warn("evaluate changed item", "item", id, "err", err)
				}
				if p.sched.Done() {
					lp.Stop()
				}
			}
			p, err = newPipeline(cfg, records, lp.Notifier(onChange), logger)
			if err != nil {
				return err
			}

			if err := p.announce(lp.Post); err != nil {
				_ = p.close()
				return err
			}
			lp.Post(func() {
				if err := p.sched.EvaluateAll(); err != nil {
					logger.Warn("evaluate catalog", "err", err)
				}
				if p.sched.Done() {
					lp.Stop()
				}
			})

			runErr := lp.Run(runCtx)
			if err := p.close(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				logger.Warn("shutdown", "err", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummary(records, shouldColorize(out)))
			if runErr != nil {
				return fmt.Errorf("run interrupted: %w", runErr)
			}
			return nil
		},
	}
}
