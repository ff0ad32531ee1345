// deploy.go implements the "chartship deploy" command — the full CI
// pipeline, equivalent to the deploy shell script it replaces.
//
// Pipeline steps:
//  1. Snapshot the CI environment and load the deploy configuration
//  2. Evaluate the publish gate (non-PR build of the publish branch)
//  3. On publishing runs: decrypt credentials, authenticate to the
//     registry, and request a pushing build
//  4. Always: invoke the external chart build tool with the commit
//     range from the CI environment
//
// The pipeline is fail-fast: the first failing step aborts the run and
// its exit code is the process exit code.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/chartship/internal/chartpress"
	"github.com/mmr-tortoise/chartship/internal/ci"
	"github.com/mmr-tortoise/chartship/internal/config"
	"github.com/mmr-tortoise/chartship/internal/logger"
	"github.com/mmr-tortoise/chartship/internal/model"
	"github.com/mmr-tortoise/chartship/internal/registry"
	"github.com/mmr-tortoise/chartship/internal/secrets"
)

// deployFlags holds the flag values for the deploy command.
type deployFlags struct {
	dryRun bool // --dry-run: print the plan without executing stages
}

// NewDeployCommand creates the "deploy" cobra command.
func NewDeployCommand() *cobra.Command {
	flags := &deployFlags{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Run the full CI deploy pipeline",
		Long: `Run the deploy pipeline end to end.

On a non-pull-request build of the publish branch the pipeline
decrypts the credentials bundle, logs in to the container registry,
and invokes the chart build tool with --push. On any other build the
tool is invoked without --push and no credentials are touched.

Examples:
  chartship deploy
  chartship deploy --dry-run
  chartship deploy --config deploy-settings.jsonc`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the pipeline plan without executing it")

	return cmd
}

// pipeline carries the deploy stages as injectable functions so tests
// can record ordering and inject failures without a Docker daemon or
// a real build tool.
type pipeline struct {
	env ci.Env
	cfg *config.Config

	// decrypt decrypts the credentials bundle (in → out, 0400).
	decrypt func(inPath, outPath, keyHex, ivHex string) error

	// login authenticates to the container registry.
	login func(ctx context.Context, username, password, serverAddress string) error

	// runner invokes the external chart build tool.
	runner chartpress.Runner
}

// newPipeline wires the production stage implementations.
func newPipeline(env ci.Env, cfg *config.Config) *pipeline {
	return &pipeline{
		env:     env,
		cfg:     cfg,
		decrypt: secrets.DecryptFile,
		login:   dockerLogin,
		runner:  chartpress.NewExecRunner(),
	}
}

// dockerLogin dials the Docker daemon and performs the registry login.
// The client lives only for the duration of the call — the pipeline
// needs nothing else from the daemon.
func dockerLogin(ctx context.Context, username, password, serverAddress string) error {
	cli, err := registry.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	return cli.Login(ctx, username, password, serverAddress)
}

// runDeploy is the entry point for the deploy command.
func runDeploy(ctx context.Context, flags *deployFlags) error {
	ctx = logger.WithName(ctx, "deploy")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	env := ci.FromEnviron()
	p := newPipeline(env, cfg)

	report, err := p.run(ctx, flags.dryRun)
	if err != nil {
		return err
	}

	printDeployReport(report)
	return nil
}

// run executes the pipeline and returns its report. The stage order is
// fixed: decrypt → login → build on publishing runs, build alone
// otherwise. The build stage always runs, whatever the gate said.
func (p *pipeline) run(ctx context.Context, dryRun bool) (*model.DeployReport, error) {
	publish := p.env.ShouldPublish(p.cfg.PublishBranch)

	report := &model.DeployReport{
		Branch:      p.env.Branch,
		PullRequest: p.env.PullRequest,
		CommitRange: p.env.CommitRange,
		Publish:     publish,
		DryRun:      dryRun,
	}

	logger.InfoKV(ctx, "publish gate evaluated",
		"branch", p.env.Branch,
		"pullRequest", p.env.PullRequest,
		"publish", publish,
	)

	if publish {
		if err := p.env.ValidatePublish(); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "publishing build misconfigured", err)
		}
		if err := p.validateRepositories(ctx); err != nil {
			return nil, err
		}
	}

	if dryRun {
		report.Stages = plannedStages(publish)
		logger.InfoKV(ctx, "dry run, nothing executed", "plan", stageNames(report.Stages))
		return report, nil
	}

	if publish {
		logger.InfoKV(ctx, "decrypting credentials bundle",
			"in", p.cfg.EncryptedFile, "out", p.cfg.CredentialsFile)
		if err := p.decrypt(p.cfg.EncryptedFile, p.cfg.CredentialsFile, p.env.EncryptionKeyHex, p.env.EncryptionIVHex); err != nil {
			return nil, model.WrapCLIError(model.ExitDecryptError, "failed to decrypt credentials bundle", err)
		}
		report.Stages = append(report.Stages, model.StageDecrypt)
		report.CredentialsFile = p.cfg.CredentialsFile

		logger.InfoKV(ctx, "logging in to container registry", "user", p.env.RegistryUsername)
		if err := p.login(ctx, p.env.RegistryUsername, p.env.RegistryPassword, p.cfg.Registry); err != nil {
			return nil, err
		}
		report.Stages = append(report.Stages, model.StageLogin)
	}

	args := chartpress.BuildArgs(p.env.CommitRange, publish)
	logger.InfoKV(ctx, "invoking chart build tool", "tool", p.cfg.Tool, "args", strings.Join(args, " "))
	if err := p.runner.Run(ctx, p.cfg.Tool, args); err != nil {
		return nil, err
	}
	report.Stages = append(report.Stages, model.StageBuild)

	return report, nil
}

// validateRepositories checks the image repositories derived from the
// build tool's own configuration before a push build starts. A missing
// or unparsable tool config only skips the check — the tool owns that
// file and will report on it far better than chartship could.
func (p *pipeline) validateRepositories(ctx context.Context) error {
	if _, err := os.Stat(p.cfg.ToolConfig); err != nil {
		logger.DebugKV(ctx, "tool config not found, skipping repository validation", "path", p.cfg.ToolConfig)
		return nil
	}

	toolCfg, err := chartpress.LoadConfig(p.cfg.ToolConfig)
	if err != nil {
		logger.WarnKV(ctx, "tool config unreadable, skipping repository validation", "error", err.Error())
		return nil
	}

	for _, repo := range toolCfg.ImageRepositories() {
		if err := registry.ValidateRepository(repo); err != nil {
			return model.WrapCLIError(model.ExitConfigError, "push build would target an invalid repository", err)
		}
	}
	return nil
}

// plannedStages returns the stage sequence a run with the given gate
// outcome would execute.
func plannedStages(publish bool) []model.Stage {
	if publish {
		return []model.Stage{model.StageDecrypt, model.StageLogin, model.StageBuild}
	}
	return []model.Stage{model.StageBuild}
}

// stageNames renders stages for log output.
func stageNames(stages []model.Stage) string {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		names = append(names, s.String())
	}
	return strings.Join(names, " → ")
}

// printDeployReport outputs the deploy results in text or JSON format.
func printDeployReport(report *model.DeployReport) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	mode := "build only"
	if report.Publish {
		mode = "publish"
	}
	if report.DryRun {
		mode += " (dry run)"
	}

	fmt.Printf("Deploy pipeline finished (%s)\n", mode)
	fmt.Printf("  Branch:       %s\n", report.Branch)
	fmt.Printf("  Commit range: %s\n", report.CommitRange)
	fmt.Printf("  Stages:       %s\n", stageNames(report.Stages))
	if report.CredentialsFile != "" {
		fmt.Printf("  Credentials:  %s (owner-read-only)\n", report.CredentialsFile)
	}
}
