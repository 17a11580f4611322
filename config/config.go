// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
)

var (
	// Use a period for delimiting sections of the config, e.g.:
	// auth.username or api.base_url
	delim = "."

	// envVarKeys maps RHSM_* environment variables (and .env file entries)
	// to their config key equivalents. Variables not listed here are ignored.
	envVarKeys = map[string]string{
		"RHSM_USERNAME":      "auth.username",
		"RHSM_PASSWORD":      "auth.password",
		"RHSM_CLIENT_ID":     "auth.client_id",
		"RHSM_CLIENT_SECRET": "auth.client_secret",
		"RHSM_API_URL":       "api.base_url",
		"RHSM_TOKEN_URL":     "api.token_url",
	}

	// Config keys whose values must never be echoed back to the terminal
	secretKeys = []string{"auth.password", "auth.client_secret"}
)

// Auth holds the Red Hat customer portal credentials used for the OAuth2
// password grant. All four values are required to talk to the API.
type Auth struct {
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

// API holds endpoint locations and client pacing knobs. The defaults point at
// the production Red Hat subscription management API and SSO realm.
type API struct {
	BaseURL           string  `koanf:"base_url"`
	TokenURL          string  `koanf:"token_url"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// Report holds options shared by all report subcommands
type Report struct {
	// Page size used when walking paginated endpoints (the API caps this at 100)
	Limit int `koanf:"limit"`

	// Path of the CSV file the report is written to
	OutputCSV string `koanf:"output_csv"`
}

// Config is a struct representing the data from a well-defined config file
type Config struct {
	SchemaVersion int    `koanf:"schema_version"`
	Auth          Auth   `koanf:"auth"`
	API           API    `koanf:"api"`
	Report        Report `koanf:"report"`

	// Global koanf instance
	globalKoanf *koanf.Koanf

	// Stores the absolute path of a .rhsm.hcl config object, if it exists
	absCfgPath string
}

// New returns a Config object initialized with default values
func New() (*Config, error) {
	k := koanf.New(delim)
	c := &Config{
		globalKoanf: k,
	}

	// Preload default config values
	defaults := map[string]interface{}{
		"schema_version":          1,
		"api.base_url":            "https://api.access.redhat.com/management/v1",
		"api.token_url":           "https://sso.redhat.com/auth/realms/3scale/protocol/openid-connect/token",
		"api.requests_per_second": 5.0,
		"report.limit":            100,
	}
	err := c.LoadConfMap(defaults)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// MustNew returns a Config object initialized with default values
// and panics if that is not possible
func MustNew() *Config {
	c, err := New()
	if err != nil {
		panic(err)
	}

	return c
}

// LoadConfMap updates the running config with a key-value map, where
// keys are delimited configuration key references.
//
// Example mapping:
//
//	map[string]interface{}{
//		"schema_version": 2,
//		"auth.username":  "jdoe",
//		"report.limit":   50,
//	}
func (c *Config) LoadConfMap(mp map[string]interface{}) error {
	err := c.globalKoanf.Load(confmap.Provider(mp, delim), nil)
	if err != nil {
		return err
	}

	// Update the global config object with the new new
	err = c.globalKoanf.Unmarshal("", &c)
	if err != nil {
		return err
	}

	return nil
}

// LoadCommandFlags updates the running config with any command-line flags
// based on a mapping of flag names to config keys
//
// Example mapping (flag name: config key):
//
//	mapping := map[string]string{
//		`username`: `auth.username`,
//		`limit`:    `report.limit`,
//	}
//
// Merge Behavior:
// If a configuration value already exists (e.g., from previously reading a
// .rhsm.hcl config file or the environment), those values will only be
// overwritten by default flag values if clobberWithDefaults is true. If it is
// false, only values from flags the user explicitly sets will be transferred
// to the configuration.
//
// Default flag options will always be loaded if no value was previously set
// in the running configuration.
func (c *Config) LoadCommandFlags(flagSet *pflag.FlagSet, mapping map[string]string, clobberWithDefaults bool) error {
	// a new/blank koanf.New(delim) is used if we want to load all default flag
	// values, even if that would mean clobbering an already set config value.
	// If we wish to flip that behavior, we pass in the config's Koanf object
	// instead so that no clobbering exists.
	ko := c.globalKoanf
	if clobberWithDefaults {
		ko = koanf.New(delim)
	}

	// Parse out flag values
	p := posflag.ProviderWithFlag(flagSet, delim, ko, func(f *pflag.Flag) (string, interface{}) {
		// Transform the key name based on the provided mapping. Flags absent
		// from the mapping resolve to "" and are skipped by koanf.
		key := mapping[f.Name]

		// Retrieve the flag value
		val := posflag.FlagVal(flagSet, f)

		return key, val
	})

	// Load up the new values into the global Koanf instance
	err := c.globalKoanf.Load(p, nil)
	if err != nil {
		return err
	}

	// Update the global config object with the new new
	err = c.globalKoanf.Unmarshal("", &c)
	if err != nil {
		return err
	}

	return nil
}

// LoadConfigFile takes a path to an HCL config file and
// merges it with the running config. A leading tilde is expanded, so config
// may live at ~/.rhsm.hcl as well as in the working directory.
//
// Example HCL config:
//
//	schema_version = 1
//	auth {
//		username  = "jdoe"
//		client_id = "1a2b3c"
//	}
func (c *Config) LoadConfigFile(cfgPath string) error {
	expanded, err := homedir.Expand(cfgPath)
	if err != nil {
		return fmt.Errorf("unable to expand config path: %w", err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("unable to determine config path: %w", err)
	}
	c.absCfgPath = abs

	// If a config file exists, let's load it
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("config file doesn't exist: %w", err)
	}

	// Load HCL config.
	err = c.globalKoanf.Load(file.Provider(abs), hcl.Parser(true))
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	// Attempt to suss out a Config struct
	err = c.globalKoanf.Unmarshal("", &c)
	if err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// LoadEnvironment layers credentials and endpoint overrides from a local .env
// file and from RHSM_* environment variables onto the running config.
// Environment variables win over .env file entries. Unknown variables are
// ignored, and a missing .env file is not an error.
func (c *Config) LoadEnvironment() error {
	// Start by loading any .env file that exists
	if _, statErr := os.Stat(".env"); statErr == nil {
		err := c.globalKoanf.Load(file.Provider(".env"), dotenv.ParserEnv("", delim, envKeyFor))
		if err != nil {
			return fmt.Errorf("unable to load .env file: %w", err)
		}
	}

	// If environment variables are present, give preference to them
	// (this will overwrite values for any keys that also exist in the .env file)
	err := c.globalKoanf.Load(env.Provider("RHSM_", delim, envKeyFor), nil)
	if err != nil {
		return fmt.Errorf("unable to load environment variables: %w", err)
	}

	return c.globalKoanf.Unmarshal("", &c)
}

// envKeyFor translates an environment variable name into its config key.
// Returning "" tells koanf to drop the variable.
func envKeyFor(s string) string {
	return envVarKeys[strings.ToUpper(s)]
}

// Sprint returns a textual version of the current running config.
// The string is newline-delimited and contains alphabetical key -> value pairs
func (c *Config) Sprint() string {
	return c.globalKoanf.Sprint()
}

// SprintRedacted behaves like Sprint but masks secret values (the portal
// password and API client secret) so the output is safe to show on a terminal
// or paste into a bug report.
func (c *Config) SprintRedacted() string {
	all := c.globalKoanf.All()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := strings.Builder{}
	for _, k := range keys {
		v := all[k]
		for _, secret := range secretKeys {
			if k == secret && v != "" {
				v = "<redacted>"
				break
			}
		}
		b.WriteString(fmt.Sprintf("%s -> %v\n", k, v))
	}
	return b.String()
}

// GetConfigPath returns the absolute path of the last loaded HCL config.
// If LoadConfigFile() has not been called, it will return an empty string.
func (c *Config) GetConfigPath() string {
	return c.absCfgPath
}
