// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"
)

// debugCmd represents the debug command
var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Prints env-specific debug information about rhsm-api-client",
	Long: `Prints information to help debug issues, including:
- rhsm-api-client version
- Running configuration (secrets redacted)
- Red Hat SSO authentication status and token expiry`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Let's forcibly enable trace-level logging
		cliLogger.SetLevel(hclog.Trace)

		return loadAuthFlags(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		title := func(t string) {
			escaped := colorize(t, text.FgCyan, text.Bold)
			cmd.Println(escaped)
		}

		//
		// Print version info
		//
		title("rhsm-api-client Version:")
		cmd.Printf("%v\n\n", GetVersion())

		//
		// Print info relating to any configuration file found
		//
		title("Configuration File:")
		path := conf.GetConfigPath()
		cmd.Printf("Configuration file path: %s\n", path)
		if _, err := os.Stat(path); err == nil {
			cmd.Print("✔️ Config file exists\n\n")
		} else {
			cmd.Print("❌ File does not exist\n\n")
		}

		//
		// Print running config with secrets masked
		//
		title("Running Config:")
		cmd.Printf("%v\n", conf.SprintRedacted())

		//
		// Attempt to authenticate against the Red Hat SSO and report on the token
		//
		title("Attempting Red Hat SSO Authentication:")
		if err := ensureCredentials(); err != nil {
			cmd.Printf("❌ %v\n", err)
			return
		}

		client, err := newAPIClient(cmd.Context())
		if err != nil {
			cmd.Printf("❌ Token exchange failed: %v\n", err)
			return
		}

		tok, err := client.Token()
		if err != nil {
			cmd.Printf("❌ Unable to read token: %v\n", err)
			return
		}

		cmd.Print("✔️ Authenticated\n")
		cmd.Printf("Token type:\t%v\n", tok.TokenType)
		cmd.Printf("Token expiry:\t%v (%v)\n", tok.Expiry, timediff.TimeDiff(tok.Expiry))
		cmd.Printf("Correlation ID:\t%v\n", client.CorrelationID())
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
}
