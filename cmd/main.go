// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ctfdump",
	Short: "A Common Trace Format IR inspector",
	Long: `
╔═╗╔╦╗╔═╗╔╦╗╦ ╦╔╦╗╔═╗
║   ║ ╠╣  ║║║ ║║║║╠═╣
╚═╝ ╩ ╚   ╩╚╝ ╩ ╩ ╩ ╩

A CTF trace IR dumper, built for stream-by-stream packet inspection.
Brought to you by Saferwall (c) 2018 MIT`,
}

func main() {
	rootCmd.AddCommand(dumpCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ctfdump version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("You are using version 1.0.0")
	},
}
