package chunker

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg and returns the effective config. ChunkSize <= 0 and
// ChunkOverlap < 0 are fatal. An overlap that is not smaller than the chunk
// size is clamped to ChunkSize-1 and reported as a warning.
func (c Config) Validate() (Config, []Warning, error) {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return Config{}, nil, fmt.Errorf("validate config: %w", err)
		}
		fe := fieldErrs[0]
		reason := "must be greater than zero"
		if fe.Tag() == "gte" {
			reason = "must not be negative"
		}
		value, _ := fe.Value().(int)
		return Config{}, nil, &ConfigError{Field: fe.StructField(), Value: value, Reason: reason}
	}

	var warnings []Warning
	if c.ChunkOverlap >= c.ChunkSize {
		warnings = append(warnings, Warning{
			Field: "ChunkOverlap",
			Message: fmt.Sprintf("overlap %d is not smaller than chunk size %d, clamped to %d",
				c.ChunkOverlap, c.ChunkSize, c.ChunkSize-1),
		})
		c.ChunkOverlap = c.ChunkSize - 1
	}
	return c, warnings, nil
}
