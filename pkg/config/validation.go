package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/marmos91/embedhttp/pkg/endpoint"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if err := cfg.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	// Store names are unique
	stores := make(map[string]bool, len(cfg.Stores))
	for i, st := range cfg.Stores {
		if stores[st.Name] {
			return fmt.Errorf("stores[%d]: duplicate store name %q", i, st.Name)
		}
		stores[st.Name] = true
	}

	// Endpoint paths are unique under the table's case-insensitive matching
	paths := make(map[string]bool, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		key := endpoint.NormalizePath(ep.Path)
		if paths[key] {
			return fmt.Errorf("endpoints[%d]: duplicate endpoint path %q", i, ep.Path)
		}
		paths[key] = true

		switch ep.Type {
		case "object", "keys":
			if ep.Store == "" {
				return fmt.Errorf("endpoints[%d]: %s endpoint %q requires a store", i, ep.Type, ep.Path)
			}
			if !stores[ep.Store] {
				return fmt.Errorf("endpoints[%d]: endpoint %q references unknown store %q", i, ep.Path, ep.Store)
			}
		default:
			if ep.Store != "" {
				return fmt.Errorf("endpoints[%d]: %s endpoint %q does not use a store", i, ep.Type, ep.Path)
			}
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port != 0 && cfg.Metrics.Port == cfg.Server.Port {
		return fmt.Errorf("metrics: port %d is already used by the server", cfg.Metrics.Port)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		// Return the first validation error with context
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
