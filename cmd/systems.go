// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/antonioromito/rhsm-api-client/report"
	"github.com/antonioromito/rhsm-api-client/rhsm"
	"github.com/spf13/cobra"
)

// Flag variables
var (
	systemsFields    string
	systemsFieldsArr []string
)

// systemsCmd represents the systems report
var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "Reports on all systems registered in the subscription inventory",
	Long: `Reports on all systems registered in the subscription inventory.

Walks the paginated /systems endpoint, prints the fields you specify, and
writes the full result set to a CSV file.`,
	GroupID: "reports",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadReportFlags(cmd); err != nil {
			return err
		}
		var err error
		systemsFieldsArr, err = report.ValidateInputFields(systemsFields, &rhsm.System{})
		if err != nil {
			return err
		}
		return ensureCredentials()
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client, err := newAPIClient(ctx)
		if err != nil {
			cliLogger.Error("Error authenticating against the Red Hat SSO", "error", err)
		}
		cobra.CheckErr(err)

		cmd.Println("Getting systems... this might take a minute")
		systems, err := report.Systems(ctx, client, conf.Report.Limit)
		if err != nil {
			cliLogger.Error("Error retrieving systems", "error", err)
		}
		cobra.CheckErr(err)

		// transform records into string maps
		rows, err := report.Transform(systems)
		if err != nil {
			cliLogger.Error("Error transforming system data", "error", err)
		}
		cobra.CheckErr(err)

		cobra.CheckErr(writeReport(cmd, systemsFieldsArr, rows, conf.Report.OutputCSV))
	},
}

func init() {
	rootCmd.AddCommand(systemsCmd)

	systemsCmd.Flags().StringVarP(&systemsFields, "fields", "f",
		"Name,UUID,EntitlementCount,EntitlementStatus,Type,LastCheckin,SecurityCount,BugfixCount,EnhancementCount",
		"System attributes you wish to report on")
	systemsCmd.Flags().StringP("output_csv", "o", "systems.csv", "Output CSV file")
	systemsCmd.Flags().IntP("limit", "l", 100, "Page size used when fetching systems")
}
