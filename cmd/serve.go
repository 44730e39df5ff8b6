package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"story-shorts-pipeline/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveDryRun bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run both variants on their cron schedules until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// one job at a time; both variants share the state store
	var mu sync.Mutex
	job := func(name string, run variant) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			if _, err := run(p, ctx, pipeline.Options{DryRun: serveDryRun}); err != nil {
				log.Error().Err(err).Str("variant", name).Msg("scheduled run failed")
			}
		}
	}

	c := cron.New()
	if err := register(c, "shorts", cfg.Cron.Shorts, job("shorts", (*pipeline.Pipeline).Shorts)); err != nil {
		return err
	}
	if err := register(c, "long", cfg.Cron.Long, job("long", (*pipeline.Pipeline).Long)); err != nil {
		return err
	}
	if len(c.Entries()) == 0 {
		return fmt.Errorf("no cron schedule configured")
	}

	c.Start()
	log.Info().Int("jobs", len(c.Entries())).Msg("Scheduler started, waiting for jobs...")
	<-ctx.Done()

	log.Info().Msg("Stopping scheduler...")
	<-c.Stop().Done()
	return nil
}

// register adds job under spec; an empty spec leaves the variant unscheduled
func register(c *cron.Cron, name, spec string, job func()) error {
	if spec == "" {
		return nil
	}
	if _, err := c.AddFunc(spec, job); err != nil {
		return fmt.Errorf("cron.%s %q: %w", name, spec, err)
	}
	log.Info().Str("variant", name).Str("spec", spec).Msg("Scheduled")
	return nil
}

func init() {
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "skip uploads")
	rootCmd.AddCommand(serveCmd)
}
