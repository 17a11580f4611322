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
	packagesFields    string
	packagesFieldsArr []string
	packagesUUID      string
)

// packagesCmd represents the packages report. Packages are only exposed
// per-system by the API, so a system UUID is required.
var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Reports on all packages installed on a given system",
	Long: `Reports on all packages installed on a given system.

The management API exposes packages under /systems/{uuid}/packages, so the
UUID of a registered system is required. Use the systems report to find it.`,
	GroupID: "reports",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadReportFlags(cmd); err != nil {
			return err
		}
		var err error
		packagesFieldsArr, err = report.ValidateInputFields(packagesFields, &rhsm.Package{})
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

		cmd.Println("Getting packages... this might take a minute")
		packages, err := report.Packages(ctx, client, packagesUUID, conf.Report.Limit)
		if err != nil {
			cliLogger.Error("Error retrieving packages", "error", err, "uuid", packagesUUID)
		}
		cobra.CheckErr(err)

		rows, err := report.Transform(packages)
		if err != nil {
			cliLogger.Error("Error transforming package data", "error", err)
		}
		cobra.CheckErr(err)

		cobra.CheckErr(writeReport(cmd, packagesFieldsArr, rows, conf.Report.OutputCSV))
	},
}

func init() {
	rootCmd.AddCommand(packagesCmd)

	packagesCmd.Flags().StringVar(&packagesUUID, "uuid", "", "UUID of the system to list packages for")
	_ = packagesCmd.MarkFlagRequired("uuid")

	packagesCmd.Flags().StringVarP(&packagesFields, "fields", "f",
		"Name,Version,Release,Arch,SystemUUID",
		"Package attributes you wish to report on")
	packagesCmd.Flags().StringP("output_csv", "o", "packages.csv", "Output CSV file")
	packagesCmd.Flags().IntP("limit", "l", 100, "Page size used when fetching packages")
}
