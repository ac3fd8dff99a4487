package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/meikuraledutech/cpm"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Server.Address == "" {
		errs = append(errs, ValidationError{Field: "server.address", Value: c.Server.Address, Message: "must not be empty"})
	}

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, ValidationError{Field: "kafka.topic", Value: c.Kafka.Topic, Message: "required when kafka.brokers is set"})
	}

	if _, err := cpm.ParseScheduleMode(c.Analysis.Mode); err != nil {
		errs = append(errs, ValidationError{Field: "analysis.mode", Value: c.Analysis.Mode, Message: "must be topological or insertion"})
	}
	if _, err := cpm.ParseUnresolvedPolicy(c.Analysis.Unresolved); err != nil {
		errs = append(errs, ValidationError{Field: "analysis.unresolved", Value: c.Analysis.Unresolved, Message: "must be ignore, warn or reject"})
	}
	if c.Analysis.MaxPaths < 1 {
		errs = append(errs, ValidationError{Field: "analysis.max_paths", Value: c.Analysis.MaxPaths, Message: "must be at least 1"})
	}
	if c.Analysis.MaxDepth < 1 {
		errs = append(errs, ValidationError{Field: "analysis.max_depth", Value: c.Analysis.MaxDepth, Message: "must be at least 1"})
	}
	if c.Analysis.Epoch != "" {
		if _, err := time.Parse(EpochLayout, c.Analysis.Epoch); err != nil {
			errs = append(errs, ValidationError{Field: "analysis.epoch", Value: c.Analysis.Epoch, Message: "must be a YYYY-MM-DD date"})
		}
	}

	return errs
}
