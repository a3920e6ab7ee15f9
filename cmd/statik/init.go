package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/statikgen/statik"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a sample project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		created, err := statik.Quickstart(path)
		if err != nil {
			return err
		}
		for _, file := range created {
			fmt.Fprintln(cmd.OutOrStdout(), "created", file)
		}
		if len(created) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to do, every file exists")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
