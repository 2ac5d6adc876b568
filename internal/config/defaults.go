package config

import (
	"time"
)

// Default returns the built-in configuration. It is the base layer of the
// layered loader and keeps ofprobe usable with no config file at all.
func Default() Config {
	return Config{
		TestDir:        "tests",
		TestSpec:       "all",
		Priority:       0,
		SwitchAddr:     "127.0.0.1:6653",
		DefaultTimeout: 60 * time.Second,
		LogLevel:       "info",
	}
}
