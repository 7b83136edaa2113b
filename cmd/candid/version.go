package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/candidhq/candid"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of candid",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("candid version %s\n", candid.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
