package config

import (
	"flag"
	"strings"
)

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagBrush    = flag.String("brush", "", "Brush type")
	flagRadius   = flag.Float64("radius", 0, "Brush radius")
	flagAutomask = flag.String("automask", "", "Comma-separated automask modes")
	flagSymmetry = flag.String("symmetry", "", "Mirror symmetry axes, e.g. \"x\" or \"xz\"")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBrush != "" {
		cfg.Brush.Type = *flagBrush
	}
	if *flagRadius > 0 {
		cfg.Brush.Radius = float32(*flagRadius)
	}
	if *flagAutomask != "" {
		cfg.Brush.Automask = strings.Split(*flagAutomask, ",")
	}
	if *flagSymmetry != "" {
		cfg.Sculpt.Symmetry = *flagSymmetry
	}
}
