package config

import (
	"fmt"
	"strings"

	"suggestd/internal/rawinput"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig performs validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	if _, ok := rawinput.ParseKey(c.Capture.ExitKey); !ok {
		errs = append(errs, ValidationError{
			Field:   "capture.exit_key",
			Message: fmt.Sprintf("unknown key name %q", c.Capture.ExitKey),
		})
	}

	if key, ok := rawinput.ParseKey(c.Triggers.Key); !ok {
		errs = append(errs, ValidationError{
			Field:   "triggers.key",
			Message: fmt.Sprintf("unknown key name %q", c.Triggers.Key),
		})
	} else if !key.IsModifier() {
		errs = append(errs, ValidationError{
			Field:   "triggers.key",
			Message: fmt.Sprintf("%q is not a modifier key", c.Triggers.Key),
		})
	}
	if err := validateSide("triggers.generate_side", c.Triggers.GenerateSide); err != nil {
		errs = append(errs, *err)
	}
	if err := validateSide("triggers.accept_side", c.Triggers.AcceptSide); err != nil {
		errs = append(errs, *err)
	}
	if c.Triggers.GenerateSide == c.Triggers.AcceptSide {
		errs = append(errs, ValidationError{
			Field:   "triggers",
			Message: "generate_side and accept_side must differ",
		})
	}
	for i, name := range c.Triggers.ExtraModifiers {
		if _, ok := rawinput.ParseKey(name); !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("triggers.extra_modifiers[%d]", i),
				Message: fmt.Sprintf("unknown key name %q", name),
			})
		}
	}

	if c.Generator.Command != "" && c.Generator.OutputPath == "" {
		errs = append(errs, ValidationError{
			Field:   "generator.output_path",
			Message: "required when a generator command is configured",
		})
	}
	if c.Generator.TimeoutSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "generator.timeout_sec",
			Message: "must not be negative",
		})
	}

	if c.Injection.DelayMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "injection.delay_ms",
			Message: "must not be negative",
		})
	}

	switch c.Overlay.Backend {
	case "", "console", "notify", "window", "none":
	default:
		errs = append(errs, ValidationError{
			Field:   "overlay.backend",
			Message: fmt.Sprintf("unknown backend %q", c.Overlay.Backend),
		})
	}

	if c.EventLog.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "event_log.path",
			Message: "must not be empty",
		})
	}

	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.Path == "" {
			errs = append(errs, ValidationError{
				Field:   "storage.path",
				Message: "required for sqlite storage",
			})
		}
	case "memory", "":
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.type",
			Message: fmt.Sprintf("unknown storage type %q", c.Storage.Type),
		})
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateSide(field, side string) *ValidationError {
	switch side {
	case "left", "right":
		return nil
	default:
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be \"left\" or \"right\", got %q", side),
		}
	}
}

// ParseSide converts a validated side name into its tagged value.
func ParseSide(side string) rawinput.Side {
	if side == "right" {
		return rawinput.SideRight
	}
	return rawinput.SideLeft
}
