package config

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/pkg/config"
)

// redacted replaces secrets in `config show` output.
const redacted = "********"

var (
	showOutput  string
	showSecrets bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration the server would run with: the file merged over
the defaults, with IDRECON_* environment overrides applied. Passwords and
secret keys are masked unless --show-secrets is given.

Examples:
  idrecon config show
  idrecon config show -o json
  IDRECON_API_PORT=9000 idrecon config show`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print passwords and secret keys in clear")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}
	if !showSecrets {
		cfg = redact(cfg)
	}

	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	// same keys as the file itself
	return output.PrintRawYAML(cmd.OutOrStdout(), cfg)
}

// redact returns a copy of cfg with every secret masked. Unset secrets stay
// empty so the output still shows which ones are configured.
func redact(cfg *config.Config) *config.Config {
	out := *cfg
	mask := func(s *string) {
		if *s != "" {
			*s = redacted
		}
	}

	mask(&out.Database.Postgres.Password)
	mask(&out.Export.S3.SecretAccessKey)

	out.Domains = slices.Clone(cfg.Domains)
	for i := range out.Domains {
		mask(&out.Domains[i].LDAP.Password)
	}
	return &out
}
