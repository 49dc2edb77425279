package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hawkeye",
		Short: "Turn a walkthrough video into resale listings",
		Long: `Hawkeye serves a phone-friendly scan form. Upload or film a video of
the items you want to sell and get back a report with titles, descriptions,
suggested prices and a still of each item.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		cropCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hawkeye: %s\n", err)
		os.Exit(1)
	}
}
