// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/antonioromito/rhsm-api-client/config"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generates a .rhsm.hcl config for this machine",
	Long: `Generates a .rhsm.hcl config with helpful comments.

Username and client_id are prompted for when a TTY is present; otherwise use
the --username and --client_id flags. Passwords and client secrets are never
written to the config file — supply those via flags or the RHSM_PASSWORD and
RHSM_CLIENT_SECRET environment variables at run time.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		// Validate we aren't going to write over an existing config
		_, err := os.Stat(".rhsm.hcl")
		if !errors.Is(err, os.ErrNotExist) && !force {
			cobra.CheckErr(fmt.Errorf(".rhsm.hcl config already exists. If you wish to override it, use the `--force` flag"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// We create a new config object here to ensure any existing
		// .rhsm.hcl does not influence the new configuration file
		newConfig, err := config.New()
		cobra.CheckErr(err)

		// Map command flags to config keys
		mapping := map[string]string{
			`username`:  `auth.username`,
			`client_id`: `auth.client_id`,
		}

		// update the running config with any command-line flags
		clobberWithDefaults := false
		err = newConfig.LoadCommandFlags(cmd.InheritedFlags(), mapping, clobberWithDefaults)
		cobra.CheckErr(err)

		// Let's prompt the user to validate the current values
		if cmd.OutOrStdout() == os.Stdout && isatty.IsTerminal(os.Stdout.Fd()) {
			err = promptForConfigValues(newConfig)
			cobra.CheckErr(err)
		} else {
			cmd.Println("No TTY detected: if running in CI, use the `--username` and `--client_id` flags to set values as needed")
		}

		// Render it out!
		f, err := os.Create(".rhsm.hcl")
		cobra.CheckErr(err)
		defer f.Close()

		err = configToHCL(*newConfig, f)
		cobra.CheckErr(err)

		successText := text.Color(text.FgGreen).Sprintf("✔️ A config has been successfully generated at: ./%s", f.Name())
		cmd.Println(successText)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing .rhsm.hcl file, if one exists")
}

// configToHCL takes in a Config object and writes an example HCL
// configuration, filling in the `auth.username` and `auth.client_id` keys,
// along with helpful comments. Any io.Writer interface is accepted, be it
// stdout or a file writer.
func configToHCL(c config.Config, wr io.Writer) error {
	tmpl, err := template.New(".rhsm.hcl").Parse(`schema_version = {{.SchemaVersion}}

auth {
  username  = "{{.Auth.Username}}"
  client_id = "{{.Auth.ClientID}}"

  # Never commit a password or client_secret to this file. Supply them with
  # the -p/-s flags or the RHSM_PASSWORD / RHSM_CLIENT_SECRET env vars.
}

api {
  # base_url  = "{{.API.BaseURL}}"
  # token_url = "{{.API.TokenURL}}"
}
`)
	if err != nil {
		return err
	}

	return tmpl.Execute(wr, c)
}

// promptForConfigValues takes in a pointer to a Config object and prompts
// the user to confirm or fill in the portal username and API key client_id,
// which then get written back to the config object.
func promptForConfigValues(c *config.Config) error {
	prompts := []*survey.Question{
		{
			Name: "Username",
			Prompt: &survey.Input{
				Message: "Red Hat customer portal username:",
				Default: c.Auth.Username,
			},
			Validate: survey.Required,
		},
		{
			Name: "ClientID",
			Prompt: &survey.Input{
				Message: "API Key Client ID:",
				Default: c.Auth.ClientID,
				Help:    "Create one at https://access.redhat.com/management/api",
			},
			Validate: survey.Required,
		},
	}

	answers := struct {
		Username string
		ClientID string
	}{}

	if err := survey.Ask(prompts, &answers); err != nil {
		return err
	}

	c.Auth.Username = answers.Username
	c.Auth.ClientID = answers.ClientID
	return nil
}
