// Package logging constructs slog loggers from application configuration.
package logging
