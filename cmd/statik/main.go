package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version set at link time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "statik",
	Short:         "Compile models, content and views into a static site",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the statik version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "statik", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "statik:", err)
		os.Exit(1)
	}
}
