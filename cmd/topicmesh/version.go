package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-topicmesh"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), topicmesh.VersionInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
