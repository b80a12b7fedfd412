package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the config file resolved by ResolveConfigPath. Settings can be
// overridden through SNAPSWEEP_* environment variables (dots become
// underscores, e.g. SNAPSWEEP_RETENTION_AGE_DAYS). When checkPerms is set,
// a group- or world-readable file is rejected since it carries store
// credentials.
func Load(checkPerms bool) (*viper.Viper, error) {
	path := ResolveConfigPath()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SNAPSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if checkPerms {
		if err := checkConfigPermissions(path); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config file not found: %s (run `snapsweep init`)", path)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return v, nil
}

func checkConfigPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return fmt.Errorf("config file %s is mode %s; it holds store credentials, chmod it to 0600", path, mode)
	}
	return nil
}
