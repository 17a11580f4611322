// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/antonioromito/rhsm-api-client/rhsm"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// appFs is the filesystem CSV reports are written to. Tests swap in an
// in-memory fs.
var appFs = afero.NewOsFs()

// authFlagMapping maps the persistent authentication flags to their keys in
// the running config
var authFlagMapping = map[string]string{
	`username`:      `auth.username`,
	`password`:      `auth.password`,
	`client_id`:     `auth.client_id`,
	`client_secret`: `auth.client_secret`,
}

// reportFlagMapping maps the per-subcommand report flags to their config keys
var reportFlagMapping = map[string]string{
	`output_csv`: `report.output_csv`,
	`limit`:      `report.limit`,
}

// loadAuthFlags merges the inherited authentication flags into the
// running config
func loadAuthFlags(cmd *cobra.Command) error {
	clobberWithDefaults := false
	return conf.LoadCommandFlags(cmd.InheritedFlags(), authFlagMapping, clobberWithDefaults)
}

// loadReportFlags merges a report subcommand's flags (and the inherited
// authentication flags) into the running config, then sanity-checks the
// resulting page size
func loadReportFlags(cmd *cobra.Command) error {
	if err := loadAuthFlags(cmd); err != nil {
		return err
	}
	clobberWithDefaults := false
	if err := conf.LoadCommandFlags(cmd.Flags(), reportFlagMapping, clobberWithDefaults); err != nil {
		return err
	}

	if conf.Report.Limit < 1 || conf.Report.Limit > rhsm.MaxPageSize {
		return fmt.Errorf("limit must be between 1 and %d, got %d", rhsm.MaxPageSize, conf.Report.Limit)
	}
	return nil
}

// ensureCredentials validates that all four portal credentials were provided
// by some layer (flags, environment, or config file). If only the password is
// missing and we're attached to a terminal, prompt for it instead of failing.
func ensureCredentials() error {
	if conf.Auth.Password == "" && isatty.IsTerminal(os.Stdout.Fd()) {
		prompt := &survey.Password{
			Message: "Red Hat customer portal password:",
		}
		var password string
		if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		conf.Auth.Password = password
	}

	var missing []string
	if conf.Auth.Username == "" {
		missing = append(missing, "--username")
	}
	if conf.Auth.Password == "" {
		missing = append(missing, "--password")
	}
	if conf.Auth.ClientID == "" {
		missing = append(missing, "--client_id")
	}
	if conf.Auth.ClientSecret == "" {
		missing = append(missing, "--client_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required authentication flags: %s", strings.Join(missing, ", "))
	}
	return nil
}

// newAPIClient builds an authenticated management API client from the
// running config. Bad credentials fail here, before any report is fetched.
func newAPIClient(ctx context.Context) (*rhsm.Client, error) {
	creds := rhsm.Credentials{
		Username:     conf.Auth.Username,
		Password:     conf.Auth.Password,
		ClientID:     conf.Auth.ClientID,
		ClientSecret: conf.Auth.ClientSecret,
	}

	return rhsm.NewClient(ctx, creds, conf.API.TokenURL,
		rhsm.WithBaseURL(conf.API.BaseURL),
		rhsm.WithRequestsPerSecond(conf.API.RequestsPerSecond),
		rhsm.WithLogger(cliLogger.Named("rhsm")),
	)
}

// writeReport pretty-prints the selected fields of every row on the
// command's stdout, then mirrors the same table as CSV into csvPath
func writeReport(cmd *cobra.Command, fields []string, rows []map[string]string, csvPath string) error {
	t := newTableWriter(cmd.OutOrStdout())
	t.AppendHeader(stringArrayToRow(fields))

	// Populate rows
	for _, r := range rows {
		// Filter the row to just contain the fields we care about
		row := make([]interface{}, 0, len(fields))
		for _, k := range fields {
			row = append(row, r[k])
		}

		t.AppendRow(row)
	}

	// Pretty-print the table
	t.Render()

	// Now let's render the CSV
	csvFile, err := appFs.Create(csvPath)
	if err != nil {
		return fmt.Errorf("unable to create CSV file %s: %w", csvPath, err)
	}

	t.SetOutputMirror(csvFile)
	t.RenderCSV()

	if err := csvFile.Close(); err != nil {
		return fmt.Errorf("unable to close CSV file %s: %w", csvPath, err)
	}

	cmd.Printf("Wrote %d records to %s\n", len(rows), csvPath)
	return nil
}
