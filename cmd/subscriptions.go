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
	subscriptionsFields    string
	subscriptionsFieldsArr []string
)

// subscriptionsCmd represents the subscriptions report
var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Short:   "Reports on all subscriptions attached to the account",
	GroupID: "reports",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadReportFlags(cmd); err != nil {
			return err
		}
		var err error
		subscriptionsFieldsArr, err = report.ValidateInputFields(subscriptionsFields, &rhsm.Subscription{})
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

		cmd.Println("Getting subscriptions... this might take a minute")
		subscriptions, err := report.Subscriptions(ctx, client, conf.Report.Limit)
		if err != nil {
			cliLogger.Error("Error retrieving subscriptions", "error", err)
		}
		cobra.CheckErr(err)

		rows, err := report.Transform(subscriptions)
		if err != nil {
			cliLogger.Error("Error transforming subscription data", "error", err)
		}
		cobra.CheckErr(err)

		cobra.CheckErr(writeReport(cmd, subscriptionsFieldsArr, rows, conf.Report.OutputCSV))
	},
}

func init() {
	rootCmd.AddCommand(subscriptionsCmd)

	subscriptionsCmd.Flags().StringVarP(&subscriptionsFields, "fields", "f",
		"SubscriptionName,SubscriptionNumber,ContractNumber,SKU,Quantity,Status,StartDate,EndDate",
		"Subscription attributes you wish to report on")
	subscriptionsCmd.Flags().StringP("output_csv", "o", "subscriptions.csv", "Output CSV file")
	subscriptionsCmd.Flags().IntP("limit", "l", 100, "Page size used when fetching subscriptions")
}
