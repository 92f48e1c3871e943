package config

// loader.go - layered configuration loading.
//
// Precedence order (highest wins):
//   1. CLI flags            (bound from the pflag FlagSet)
//   2. Environment variables (CONNSTATE_*)
//   3. Config file          (--config, any format viper reads)
//   4. Defaults             (defaults.go, via flag defaults)

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	ncerr "connstate/internal/errors"
)

// Load builds a Config from fs (already parsed), the environment and
// the optional config file at path.  Keys match the long flag names;
// in the environment they are upper-cased, prefixed with CONNSTATE_
// and use underscores (CONNSTATE_SSH_KEY).
func Load(fs *flag.FlagSet, path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("name", DefaultName)
	v.SetDefault("timeout", DefaultConnTimeout)
	v.SetDefault("retries", DefaultRetries)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ncerr.ConfigError{
				Field:   "config",
				Value:   path,
				Message: err.Error(),
				Hint:    "supported formats: yaml, toml, json",
			}
		}
	}

	cfg := &Config{
		Name:           v.GetString("name"),
		Host:           v.GetString("host"),
		Port:           v.GetInt("port"),
		UDP:            v.GetBool("udp"),
		Timeout:        v.GetDuration("timeout"),
		Retries:        v.GetInt("retries"),
		TunnelSpec:     v.GetString("tunnel"),
		SSHKeyPath:     v.GetString("ssh-key"),
		SSHPassword:    v.GetBool("ssh-password"),
		UseSSHAgent:    v.GetBool("ssh-agent"),
		StrictHostKey:  v.GetBool("strict-hostkey"),
		KnownHostsPath: v.GetString("known-hosts"),
		Verbose:        v.GetInt("verbose"),
		ShowTable:      v.GetBool("table"),
		ShowMetrics:    v.GetBool("metrics"),
	}

	steps, err := ParseSteps(scriptEntries(v, fs))
	if err != nil {
		return nil, &ncerr.ConfigError{Field: "script", Message: err.Error(),
			Hint: "steps are connect, disconnect, establish, send:<payload>"}
	}
	cfg.Steps = steps

	if cfg.TunnelSpec != "" {
		user, host, port, err := ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return nil, &ncerr.ConfigError{Field: "tunnel", Value: cfg.TunnelSpec, Message: err.Error()}
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}
	return cfg, nil
}

// scriptEntries returns the raw script steps.  Each -s flag is one
// step taken verbatim, so payloads may contain commas.  The environment
// and a scalar config-file value carry the whole script as one
// comma-separated string; a config-file list keeps one step per entry.
func scriptEntries(v *viper.Viper, fs *flag.FlagSet) []string {
	if fs != nil && fs.Changed("script") {
		if entries, err := fs.GetStringArray("script"); err == nil {
			return entries
		}
	}
	if raw, ok := v.Get("script").(string); ok {
		return strings.Split(raw, ",")
	}
	return v.GetStringSlice("script")
}
