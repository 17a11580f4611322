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
	erratasFields    string
	erratasFieldsArr []string
)

// erratasCmd represents the erratas report. The API spells the endpoint
// "errata", hence the alias.
var erratasCmd = &cobra.Command{
	Use:     "erratas",
	Aliases: []string{"errata"},
	Short:   "Reports on all advisories applicable to the account",
	GroupID: "reports",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadReportFlags(cmd); err != nil {
			return err
		}
		var err error
		erratasFieldsArr, err = report.ValidateInputFields(erratasFields, &rhsm.Erratum{})
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

		cmd.Println("Getting erratas... this might take a minute")
		errata, err := report.Errata(ctx, client, conf.Report.Limit)
		if err != nil {
			cliLogger.Error("Error retrieving erratas", "error", err)
		}
		cobra.CheckErr(err)

		rows, err := report.Transform(errata)
		if err != nil {
			cliLogger.Error("Error transforming errata data", "error", err)
		}
		cobra.CheckErr(err)

		cobra.CheckErr(writeReport(cmd, erratasFieldsArr, rows, conf.Report.OutputCSV))
	},
}

func init() {
	rootCmd.AddCommand(erratasCmd)

	erratasCmd.Flags().StringVarP(&erratasFields, "fields", "f",
		"ID,Type,Severity,Synopsis,IssuedDate",
		"Erratum attributes you wish to report on")
	erratasCmd.Flags().StringP("output_csv", "o", "erratas.csv", "Output CSV file")
	erratasCmd.Flags().IntP("limit", "l", 100, "Page size used when fetching erratas")
}
