package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	debugMode  bool

	version = "dev"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "literacy",
		Short:         "Practice reading Chinese characters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./config.yml or $HOME/.config/literacy/config.yml)")
	flags.BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCommand.AddCommand(
		newStudyCommand(),
		newRecommendCommand(),
		newProgressCommand(),
		newSettingsCommand(),
		newLessonsCommand(),
		newReportCommand(),
		newVersionCommand(),
	)
	return rootCommand
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "literacy %s\n", version)
		},
	}
}
