package config

import (
	"fmt"
	"os"
)

// InitConfig writes the default configuration to the default path and
// returns that path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes the default configuration to path. An existing
// file is only replaced when force is set.
func InitConfigToPath(path string, force bool) error {
	return WriteConfig(GetDefaultConfig(), path, force)
}

// WriteConfig saves cfg to path, refusing to overwrite unless force is set.
func WriteConfig(cfg *Config, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	return SaveConfig(cfg, path)
}
