package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the idrecon configuration file.

Checks for syntax errors, missing required fields and invalid values.

Examples:
  # Validate default config
  idrecon config validate

  # Validate specific config file
  idrecon config validate --config /etc/idrecon/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", configPath(cmd))
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := Warnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	keys := make([]string, 0, len(cfg.Domains))
	for _, d := range cfg.Domains {
		keys = append(keys, d.Key)
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Database type:   %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(out, "  API address:     %s\n", cfg.API.Address())
	_, _ = fmt.Fprintf(out, "  Domains:         %s\n", strings.Join(keys, ", "))
	_, _ = fmt.Fprintf(out, "  Default type:    %s\n", cfg.Classification.DefaultType)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}

// Warnings lists settings that are valid but probably unintended.
func Warnings(cfg *config.Config) []string {
	var warnings []string

	if !cfg.SyncEnabled() {
		warnings = append(warnings, "No domain has an ldap section; directory sync is unavailable")
	}
	for _, d := range cfg.Domains {
		if d.DNSuffix == "" {
			warnings = append(warnings, fmt.Sprintf("Domain %q has no dn_suffix; imports keep every row", d.Key))
		}
	}
	if !cfg.API.IsEnabled() {
		warnings = append(warnings, "API is disabled; 'idrecon start' has nothing to serve")
	}
	return warnings
}
