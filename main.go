// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"github.com/antonioromito/rhsm-api-client/cmd"
	"github.com/hashicorp/go-hclog"
)

func main() {
	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:  "rhsm-api-client",
		Level: hclog.LevelFromString("INFO"),
		Color: hclog.AutoColor,
	})
	hclog.SetDefault(appLogger)
	cmd.Execute()
}
