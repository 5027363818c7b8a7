package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the citescoop version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("citescoop v%s (%s)\n", version, gitSHA)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
