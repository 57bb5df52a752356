package configs

import (
	"flag"
	"os"

	"github.com/kinosync/kinosync/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file location from the --config
// flag, the KINOSYNC_CONFIG env var, or a set of conventional candidates.
// An empty result means "no config file": Load then runs on defaults and
// env overrides alone.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("KINOSYNC_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/kinosync/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
