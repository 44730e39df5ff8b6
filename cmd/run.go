package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"story-shorts-pipeline/pipeline"
	"story-shorts-pipeline/types"

	"github.com/spf13/cobra"
)

var (
	seed   int64
	dryRun bool
)

type variant func(p *pipeline.Pipeline, ctx context.Context, opts pipeline.Options) (*types.PipelineState, error)

var shortsCmd = &cobra.Command{
	Use:   "shorts",
	Short: "Produce one vertical chat-drama short",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce((*pipeline.Pipeline).Shorts)
	},
}

var longCmd = &cobra.Command{
	Use:   "long",
	Short: "Produce one long-form sleep story with chapters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce((*pipeline.Pipeline).Long)
	},
}

func runOnce(run variant) error {
	_, p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = run(p, ctx, pipeline.Options{Seed: seed, DryRun: dryRun})
	return err
}

func init() {
	for _, c := range []*cobra.Command{shortsCmd, longCmd} {
		c.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = from the clock)")
		c.Flags().BoolVar(&dryRun, "dry-run", false, "skip upload and keep the video in paths.output")
		rootCmd.AddCommand(c)
	}
}
