package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/bytesize"
	"github.com/marmos91/idrecon/pkg/config"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	Long: `Print a JSON schema describing config.yaml. Point an editor's YAML
language server at it for completion and validation:

  idrecon config schema -o ~/.config/idrecon/config.schema.json`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Write the schema to a file instead of stdout")
}

// sectionDocs describes the top-level sections.
var sectionDocs = map[string]string{
	"logging":          "Log level, format and destination",
	"telemetry":        "OpenTelemetry tracing and Pyroscope profiling",
	"shutdown_timeout": "Grace period for in-flight API requests, e.g. 30s",
	"database":         "Record store: sqlite (default) or postgres",
	"metrics":          "Prometheus /metrics endpoint",
	"api":              "REST API listener",
	"domains":          "Directory domains in display order; ldap enables `idrecon sync`",
	"classification":   "Account type used when no OU rule matches",
	"audit":            "Thresholds of the inactive and stale password checks",
	"ingest":           "Upload limits",
	"export":           "Report archive bucket",
}

// typeMapper describes types that decode from strings in YAML.
func typeMapper(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeOf(time.Duration(0)):
		return &jsonschema.Schema{
			Type:     "string",
			Pattern:  `^(\d+(\.\d+)?(ns|us|µs|ms|s|m|h))+$`,
			Examples: []any{"30s", "5m"},
		}
	case reflect.TypeOf(bytesize.ByteSize(0)):
		return &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				{Type: "integer", Minimum: json.Number("0")},
				{Type: "string", Pattern: `^(?i)\d+(\.\d+)?\s*(b|k|kb|m|mb|g|gb|ki|kib|mi|mib|gi|gib)?$`},
			},
			Examples: []any{"50Mi"},
		}
	}
	return nil
}

// Schema reflects config.Config using the yaml field names.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
		Mapper:         typeMapper,
	}

	s := r.Reflect(&config.Config{})
	s.Version = "https://json-schema.org/draft/2020-12/schema"
	s.Title = "idrecon Configuration"
	s.Description = "Configuration of the idrecon identity reconciliation server"

	if s.Properties != nil {
		for key, doc := range sectionDocs {
			if prop, ok := s.Properties.Get(key); ok && prop != nil {
				prop.Description = doc
			}
		}
	}
	return s
}

func runSchema(cmd *cobra.Command, _ []string) error {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	if schemaOutput == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(schemaOutput, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", schemaOutput)
	return nil
}
