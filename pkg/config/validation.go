package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags first, then the cross-field rules that tags
// cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	seen := make(map[string]bool, len(cfg.Domains))
	for i := range cfg.Domains {
		d := &cfg.Domains[i]
		if seen[d.Key] {
			return fmt.Errorf("domains: duplicate key %q", d.Key)
		}
		seen[d.Key] = true

		if err := d.LDAP.Validate(); err != nil {
			return fmt.Errorf("domains[%s]: %w", d.Key, err)
		}
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := cfg.Export.S3.Validate(); err != nil {
		return err
	}

	return nil
}

// formatValidationErrors renders each failed field as "Field: failed on
// 'tag' (param)".
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed on '%s'", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}
