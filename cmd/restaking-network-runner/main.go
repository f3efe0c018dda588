// Copyright (C) 2025-2026, Restaking Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/restaking-labs/restaking-network-runner/cmd/restaking-network-runner/setup"
	"github.com/restaking-labs/restaking-network-runner/cmd/restaking-network-runner/start"
	"github.com/restaking-labs/restaking-network-runner/cmd/restaking-network-runner/warp"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:        "restaking-network-runner",
	Short:      "restaking-network-runner commands",
	SuggestFor: []string{"network-runner"},
}

func init() {
	cobra.EnablePrefixMatching = true
}

func init() {
	rootCmd.AddCommand(
		setup.NewCommand(),
		start.NewCommand(),
		warp.NewCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "restaking-network-runner failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
