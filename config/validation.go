package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned when one or more fields are invalid
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Error())
	}
	return strings.Join(msgs, "\n")
}

// secretsRequired lists the fields that must be set per environment
var secretsRequired = map[Environment][]string{
	Development: {},
	Test:        {},
	CI:          {"database.password", "auth.jwt_secret"},
	Production:  {"database.password", "auth.jwt_secret"},
}

// ValidateConfig checks the configuration for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	for _, field := range secretsRequired[GetEnvironment()] {
		switch field {
		case "database.password":
			if cfg.Database.Driver == "postgres" && cfg.Database.Password == "" {
				errs = append(errs, ValidationError{Field: field, Message: "is required"})
			}
		case "auth.jwt_secret":
			if cfg.Auth.JWTSecret == "" {
				errs = append(errs, ValidationError{Field: field, Message: "is required"})
			}
		}
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, ValidationError{Field: "database.driver", Message: "must be postgres or sqlite"})
	}

	switch cfg.Index.Backend {
	case "flat", "pgvector":
	default:
		errs = append(errs, ValidationError{Field: "index.backend", Message: "must be flat or pgvector"})
	}
	if cfg.Index.Backend == "pgvector" && cfg.Database.Driver != "postgres" {
		errs = append(errs, ValidationError{Field: "index.backend", Message: "pgvector requires the postgres driver"})
	}

	switch cfg.Scoring.Strategy {
	case "simple", "advanced":
	default:
		errs = append(errs, ValidationError{Field: "scoring.strategy", Message: "must be simple or advanced"})
	}

	if cfg.Embedding.Dimension <= 0 {
		errs = append(errs, ValidationError{Field: "embedding.dimension", Message: "must be positive"})
	}
	if cfg.Scoring.TopK <= 0 {
		errs = append(errs, ValidationError{Field: "scoring.top_k", Message: "must be positive"})
	}
	if cfg.Planner.MinDailyCalories <= 0 {
		errs = append(errs, ValidationError{Field: "planner.min_daily_calories", Message: "must be positive"})
	}
	if cfg.Planner.TopPickProbability < 0 || cfg.Planner.TopPickProbability > 1 {
		errs = append(errs, ValidationError{Field: "planner.top_pick_probability", Message: "must be within [0,1]"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
