package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/statikgen/statik"
	"github.com/statikgen/statik/logger"
)

type buildFlags struct {
	output     string
	safeMode   bool
	inMemory   bool
	logLevel   string
	logBackend string
}

var build buildFlags

var buildCmd = &cobra.Command{
	Use:   "build [project]",
	Short: "Build a project, the current directory by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := "."
		if len(args) == 1 {
			project = args[0]
		}
		return runBuild(cmd, project, build)
	},
}

func init() {
	buildCmd.Flags().StringVarP(&build.output, "output", "o", "", "output folder (default <project>/public)")
	buildCmd.Flags().BoolVar(&build.safeMode, "safe-mode", false, "only accept structured queries")
	buildCmd.Flags().BoolVar(&build.inMemory, "in-memory", false, "build without writing, print the output tree")
	buildCmd.Flags().StringVar(&build.logLevel, "log-level", "", "silent, error, warn, info or debug (default from config.yml)")
	buildCmd.Flags().StringVar(&build.logBackend, "log-backend", "", "zerolog, zap or logrus (default from config.yml)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, path string, flags buildFlags) error {
	config, err := statik.LoadConfig(path)
	if err != nil {
		return err
	}

	backend, level := config.Log.Backend, config.Log.Level
	if flags.logBackend != "" {
		backend = flags.logBackend
	}
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logLevel, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}
	log, err := logger.New(backend, logger.Config{LogLevel: logLevel}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts := []statik.ProjectOption{statik.WithLogger(log), statik.WithContext(cmd.Context())}
	if cmd.Flags().Changed("safe-mode") {
		opts = append(opts, statik.WithSafeMode(flags.safeMode))
	}
	project, err := statik.OpenProject(path, opts...)
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = filepath.Join(project.Path, "public")
	}

	result, err := project.Generate(statik.GenerateOptions{OutputPath: output, InMemory: flags.inMemory})
	if err != nil {
		return err
	}

	if flags.inMemory {
		fmt.Fprint(cmd.OutOrStdout(), result.Tree.String())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d file(s) and %d asset(s) to %s\n", result.Files, result.Assets, output)
	return nil
}
