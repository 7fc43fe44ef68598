// Package config loads the eventhub command configuration.
//
// Settings come from, in increasing precedence: Default, a TOML or YAML file
// chosen by extension, and EVENTHUB_* environment variables. Command-line
// flags are applied by the caller on top of the result.
package config
