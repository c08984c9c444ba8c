// Package config holds the application configuration and the static
// registries the pipeline reads at start: the sixteen-table file registry,
// the advisory column-mapping resource, and the hand-authored schema
// definitions used by the validator.
//
// Configuration is loaded once (environment variables with prefix TRADE,
// merged over an optional YAML file, then validated) and passed explicitly
// into every component. No package reads configuration ambiently.
package config
