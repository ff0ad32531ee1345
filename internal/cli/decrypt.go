// decrypt.go implements the "chartship decrypt" command: the
// credentials-decryption stage of the pipeline, runnable on its own.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/chartship/internal/ci"
	"github.com/mmr-tortoise/chartship/internal/config"
	"github.com/mmr-tortoise/chartship/internal/logger"
	"github.com/mmr-tortoise/chartship/internal/model"
	"github.com/mmr-tortoise/chartship/internal/secrets"
)

// decryptFlags holds the flag values for the decrypt command.
type decryptFlags struct {
	in  string // --in: encrypted bundle path (default from config)
	out string // --out: plaintext destination (default from config)
}

// NewDecryptCommand creates the "decrypt" cobra command.
//
// The key and IV always come from the CI environment variables — there
// is deliberately no flag for them, so key material never lands in
// shell history or CI logs via the command line.
func NewDecryptCommand() *cobra.Command {
	flags := &decryptFlags{}

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt the CI credentials bundle",
		Long: `Decrypt the credentials bundle with the AES-256-CBC key and IV from
the CI environment and write it with owner-read-only permissions.

Examples:
  chartship decrypt
  chartship decrypt --in secrets.enc --out secrets`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logger.WithName(cmd.Context(), "decrypt")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			in := flags.in
			if in == "" {
				in = cfg.EncryptedFile
			}
			out := flags.out
			if out == "" {
				out = cfg.CredentialsFile
			}

			env := ci.FromEnviron()
			if env.EncryptionKeyHex == "" || env.EncryptionIVHex == "" {
				return model.NewCLIError(model.ExitConfigError,
					fmt.Sprintf("decryption key material is not set (%s, %s)", ci.EnvEncryptionKey, ci.EnvEncryptionIV))
			}

			logger.InfoKV(ctx, "decrypting credentials bundle", "in", in, "out", out)
			if err := secrets.DecryptFile(in, out, env.EncryptionKeyHex, env.EncryptionIVHex); err != nil {
				return model.WrapCLIError(model.ExitDecryptError, "failed to decrypt credentials bundle", err)
			}

			if !IsJSONOutput() {
				fmt.Printf("Decrypted %s → %s (owner-read-only)\n", in, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.in, "in", "", "Encrypted bundle path (default from config)")
	cmd.Flags().StringVar(&flags.out, "out", "", "Decrypted output path (default from config)")

	return cmd
}
