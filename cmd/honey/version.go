package main

import (
	"fmt"

	"github.com/cookie-jar-solutions/honey"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of honey",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "honey version %s\n", honey.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
