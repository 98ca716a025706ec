// Package config provides configuration loading, merging, and validation
// facilities for the notes sync client.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Config file (JSON, YAML or TOML, read with viper)
//  3. Environment variables
//  4. Command-line flags
//
// The main entry points are [GetStructuredConfig] for the merged raw
// configuration and [GetClientConfig] for the validated client view.
package config
