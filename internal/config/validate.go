package config

import (
	"errors"
	"fmt"
)

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Model.Path == "" || c.Model.ClassesPath == "" || c.Model.TrainingColumnsPath == "" {
		errs = append(errs, errors.New("model.path, model.classes_path and model.training_columns_path are required"))
	}
	if c.Recommend.TopN < 1 {
		errs = append(errs, fmt.Errorf("recommend.top_n must be at least 1, got %d", c.Recommend.TopN))
	}

	switch c.Knowledge.Source {
	case SourceCSV:
		if c.Knowledge.ExercisePath == "" || c.Knowledge.DietPath == "" {
			errs = append(errs, errors.New("knowledge.exercise_path and knowledge.diet_path are required for the csv source"))
		}
	case SourceSQLite:
		if c.Knowledge.SQLitePath == "" {
			errs = append(errs, errors.New("knowledge.sqlite_path is required for the sqlite source"))
		}
	case SourcePostgres:
		if c.Knowledge.PostgresURL == "" {
			errs = append(errs, errors.New("knowledge.postgres_url is required for the postgres source"))
		}
	default:
		errs = append(errs, fmt.Errorf("knowledge.source %q is not one of csv, sqlite, postgres", c.Knowledge.Source))
	}

	if c.Security.AuthEnabled && c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required when auth is enabled"))
	}
	if c.Security.RateLimitEnabled && (c.Security.RateLimitRequests < 1 || c.Security.RateLimitWindow <= 0) {
		errs = append(errs, errors.New("rate limiting needs a positive request count and window"))
	}

	return errors.Join(errs...)
}
