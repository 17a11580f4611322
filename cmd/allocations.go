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
	allocationsFields    string
	allocationsFieldsArr []string
)

// allocationsCmd represents the allocations report
var allocationsCmd = &cobra.Command{
	Use:     "allocations",
	Short:   "Reports on all subscription allocations (e.g. Satellite manifests)",
	GroupID: "reports",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadReportFlags(cmd); err != nil {
			return err
		}
		var err error
		allocationsFieldsArr, err = report.ValidateInputFields(allocationsFields, &rhsm.Allocation{})
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

		cmd.Println("Getting allocations... this might take a minute")
		allocations, err := report.Allocations(ctx, client, conf.Report.Limit)
		if err != nil {
			cliLogger.Error("Error retrieving allocations", "error", err)
		}
		cobra.CheckErr(err)

		rows, err := report.Transform(allocations)
		if err != nil {
			cliLogger.Error("Error transforming allocation data", "error", err)
		}
		cobra.CheckErr(err)

		cobra.CheckErr(writeReport(cmd, allocationsFieldsArr, rows, conf.Report.OutputCSV))
	},
}

func init() {
	rootCmd.AddCommand(allocationsCmd)

	allocationsCmd.Flags().StringVarP(&allocationsFields, "fields", "f",
		"Name,UUID,Type,Version,EntitlementsAttachedQuantity",
		"Allocation attributes you wish to report on")
	allocationsCmd.Flags().StringP("output_csv", "o", "allocations.csv", "Output CSV file")
	allocationsCmd.Flags().IntP("limit", "l", 100, "Page size used when fetching allocations")
}
