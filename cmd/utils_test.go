// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GetVersion(t *testing.T) {
	// Without ldflags the defaults apply
	assert.Equal(t, "dev-none", GetVersion())
}

func Test_stringArrayToRow(t *testing.T) {
	row := stringArrayToRow([]string{"Name", "UUID"})
	require.Len(t, row, 2)
	assert.Equal(t, "Name", row[0])
	assert.Equal(t, "UUID", row[1])
}

func Test_newTableWriter_RenderCSV(t *testing.T) {
	buf := new(bytes.Buffer)

	// The CSV mirror is what ends up in the output file, so its shape is the
	// actual contract
	tw := newTableWriter(buf)
	tw.AppendHeader(stringArrayToRow([]string{"Name", "UUID"}))
	tw.AppendRow([]interface{}{"host-01", "aaaa-1111"})
	tw.RenderCSV()

	assert.Contains(t, buf.String(), "Name,UUID")
	assert.Contains(t, buf.String(), "host-01,aaaa-1111")
}

func Test_colorize(t *testing.T) {
	// Let's take console abilities out of the picture
	text.EnableColors()

	tests := []struct {
		name           string
		inputString    string
		inputCodes     []text.Color
		expectedOutput string
	}{
		{
			name:           "Output left alone when no codes are specified",
			inputString:    "Authenticated!",
			inputCodes:     []text.Color{},
			expectedOutput: "Authenticated!",
		},
		{
			name:           "Output wrapped with stylistic escape sequence (bold)",
			inputString:    "Authenticated!",
			inputCodes:     []text.Color{text.Bold},
			expectedOutput: "\x1b[1mAuthenticated!\x1b[0m",
		},
		{
			name:           "Output properly wrapped with multiple escape sequences",
			inputString:    "Authenticated!",
			inputCodes:     []text.Color{text.Bold, text.FgCyan},
			expectedOutput: "\x1b[1;36mAuthenticated!\x1b[0m",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualOutput := colorize(tt.inputString, tt.inputCodes...)
			assert.Equal(t, tt.expectedOutput, actualOutput)
		})
	}
}
