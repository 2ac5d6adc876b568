// Package config provides configuration management for ofprobe.
//
// Configuration is loaded and merged in the following order, later sources
// overriding earlier ones:
//
//  1. Default configuration (built into the binary)
//  2. User configuration (~/.config/ofprobe/config.yaml)
//  3. Project configuration (./.ofprobe/config.yaml)
//  4. Command-line flags (applied by the CLI)
//
// All files are YAML with the same schema as the Config struct. Missing
// files are not an error; an unparsable file is.
package config
