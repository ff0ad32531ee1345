// Package cli implements the cobra-based CLI commands for chartship.
//
// Each subcommand (deploy, decrypt, login, build) is defined in its own
// file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/chartship/internal/logger"
	"github.com/mmr-tortoise/chartship/internal/model"
)

// Global flag variables shared across all subcommands. They are bound
// to cobra persistent flags on the root command, which makes them
// available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON
	// for machine consumption. The external build tool's own streams
	// are never JSON-wrapped.
	jsonOutput bool

	// verbose raises the log level to debug. It wins over --log-level.
	verbose bool

	// logLevel selects the minimum log level by name.
	logLevel string

	// configPath is an explicit deploy configuration file. Empty means
	// the optional default file in the working directory.
	configPath string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only
// provides help text and global flags. Actual functionality is in the
// subcommands (deploy, decrypt, login, build).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chartship",
		Short: "CI deploy pipeline for chart repositories",
		Long: `chartship runs the deploy pipeline a chart repository needs on CI:
it decides from the CI environment whether a build qualifies for
publishing, decrypts the credentials bundle, authenticates to the
container registry, and invokes the external chart build tool.

It is a drop-in replacement for the traditional deploy shell script:
with no flags and no configuration file it reads the same environment
variables, touches the same files, and invokes the same tool.`,

		// Errors are formatted by Execute (text or JSON), so cobra's
		// own printing is silenced.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
			if verbose {
				logger.SetLevel(zap.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the deploy configuration file")

	// Register subcommands. Each subcommand lives in its own file
	// (deploy.go, decrypt.go, login.go, build.go) and returns a
	// *cobra.Command.
	rootCmd.AddCommand(NewDeployCommand())
	rootCmd.AddCommand(NewDecryptCommand())
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewBuildCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into OS exit codes. CLIError values carry their own exit codes;
// other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag. Errors go to stderr
// in both modes; stdout is reserved for successful command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
