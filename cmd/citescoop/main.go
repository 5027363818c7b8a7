// Package main is the citescoop command line interface.
package main

import (
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags.
var (
	version = "dev"
	gitSHA  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "citescoop",
	Short: "Extract annotated citations from Wikimedia XML dumps",
	Long: `citescoop reads a Wikimedia XML dump (plain or bzip2-compressed) and
writes, per article page, the deduplicated set of citations the page
has ever carried, each annotated with the revision that introduced it
and the revision that removed it, plus the revisions those annotations
reference.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setDebug()
	},
}

// setDebug silences the logger unless the DEBUG environment variable
// parses as true.
func setDebug() {
	if debug, _ := strconv.ParseBool(os.Getenv("DEBUG")); !debug {
		log.SetOutput(io.Discard)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
