// build.go implements the "chartship build" command: the chart-tool
// invocation stage of the pipeline, runnable on its own.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/chartship/internal/chartpress"
	"github.com/mmr-tortoise/chartship/internal/ci"
	"github.com/mmr-tortoise/chartship/internal/config"
	"github.com/mmr-tortoise/chartship/internal/logger"
)

// buildFlags holds the flag values for the build command.
type buildFlags struct {
	push        bool   // --push: ask the tool to publish its output
	commitRange string // --commit-range: override the CI-supplied range
	rangeSet    bool   // whether --commit-range was given explicitly
}

// NewBuildCommand creates the "build" cobra command.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Invoke the external chart build tool",
		Long: `Invoke the chart build tool with the commit range from the CI
environment. The tool's output streams through unchanged.

Examples:
  chartship build
  chartship build --push
  chartship build --commit-range abc123...def456`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logger.WithName(cmd.Context(), "build")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			flags.rangeSet = cmd.Flags().Changed("commit-range")
			commitRange := flags.commitRange
			if !flags.rangeSet {
				commitRange = ci.FromEnviron().CommitRange
			}

			args := chartpress.BuildArgs(commitRange, flags.push)
			logger.InfoKV(ctx, "invoking chart build tool", "tool", cfg.Tool, "push", flags.push)
			return chartpress.NewExecRunner().Run(ctx, cfg.Tool, args)
		},
	}

	cmd.Flags().BoolVar(&flags.push, "push", false, "Ask the build tool to publish its output")
	cmd.Flags().StringVar(&flags.commitRange, "commit-range", "", "Commit range for the build tool (default: TRAVIS_COMMIT_RANGE)")

	return cmd
}
