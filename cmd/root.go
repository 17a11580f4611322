// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"os"

	"github.com/antonioromito/rhsm-api-client/config"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	// Relative path to the rhsm-api-client HCL config, defaults to .rhsm.hcl
	cfgPath string

	// This is the global configuration struct you should use to reference
	// anything from the .rhsm.hcl conf, the environment, or the auth flags
	conf = config.MustNew()

	// Named subsystem logger for rhsm-api-client commands
	cliLogger hclog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rhsm-api-client",
	Short: "Fetches reports from the Red Hat Subscription Manager API",
	Long: `rhsm-api-client authenticates against the Red Hat customer portal and
fetches inventory reports from the subscription management API.

Pick one of the report subcommands (systems, allocations, subscriptions,
erratas, packages) to print a report and write it to a CSV file. Portal
credentials and an API key (client_id/client_secret) are required; create the
API key at https://access.redhat.com/management/api.`,
	Version: GetVersion(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnInitialize(initLogger)

	// Let's group the report commands together in the help section
	rootCmd.AddGroup(&cobra.Group{
		ID:    "reports",
		Title: "Report Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".rhsm.hcl", "config file")

	// Authentication group: required for every report subcommand, but
	// satisfiable from the config file or RHSM_* environment variables too
	rootCmd.PersistentFlags().StringP("username", "u", "", "Red Hat customer portal username")
	rootCmd.PersistentFlags().StringP("password", "p", "", "Red Hat customer portal password")
	rootCmd.PersistentFlags().StringP("client_id", "c", "", "Red Hat customer portal API Key Client ID")
	rootCmd.PersistentFlags().StringP("client_secret", "s", "", "Red Hat customer portal API Key Client Secret")

	// Let's make sure Cobra doesn't default to stderr
	rootCmd.SetOut(os.Stdout)
}

func initConfig() {
	// Load the .rhsm.hcl config file into the running config
	err := conf.LoadConfigFile(cfgPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		cobra.CheckErr(err)
	}

	// Then layer .env file entries and RHSM_* environment variables on top
	cobra.CheckErr(conf.LoadEnvironment())
}

func initLogger() {
	// Valid levels list: https://pkg.go.dev/github.com/hashicorp/go-hclog#Level
	logLevel := hclog.DefaultLevel

	// If the `RHSM_LOG_LEVEL` environment variable is explicitly set, let's
	// attempt to coerce the result into a proper level. If no matching level
	// can be found, hclog.LevelFromString() defaults to the "NoLevel"
	levelEnv, levelSet := os.LookupEnv("RHSM_LOG_LEVEL")
	if levelSet {
		logLevel = hclog.LevelFromString(levelEnv)
	}

	cliLogger = hclog.New(&hclog.LoggerOptions{
		Name:   "cli",
		Level:  logLevel,
		Color:  hclog.AutoColor,
		Output: os.Stdout,
	})
}
