// login.go implements the "chartship login" command: the registry
// authentication stage of the pipeline, runnable on its own.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/chartship/internal/ci"
	"github.com/mmr-tortoise/chartship/internal/config"
	"github.com/mmr-tortoise/chartship/internal/logger"
)

// loginFlags holds the flag values for the login command.
type loginFlags struct {
	registry string // --registry: server address override
}

// NewLoginCommand creates the "login" cobra command.
//
// Credentials come from the CI environment variables, never from
// flags, for the same reason the decrypt command takes no key flags.
func NewLoginCommand() *cobra.Command {
	flags := &loginFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate to the container registry",
		Long: `Authenticate to the container registry with the credentials from the
CI environment, through the local Docker daemon.

Examples:
  chartship login
  chartship login --registry quay.io`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logger.WithName(cmd.Context(), "login")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			server := cfg.Registry
			if flags.registry != "" {
				server = flags.registry
			}

			env := ci.FromEnviron()
			if err := dockerLogin(ctx, env.RegistryUsername, env.RegistryPassword, server); err != nil {
				return err
			}

			if !IsJSONOutput() {
				target := server
				if target == "" {
					target = "Docker Hub"
				}
				fmt.Printf("Logged in to %s as %s\n", target, env.RegistryUsername)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.registry, "registry", "", "Registry server address (default from config; empty means Docker Hub)")

	return cmd
}
