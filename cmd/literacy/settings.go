package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/literacy/internal/progress"
)

// FontSizeFlag accepts the font sizes of progress.UserSettings.
type FontSizeFlag progress.FontSize

// Set implements pflag.Value.
func (f *FontSizeFlag) Set(v string) error {
	switch progress.FontSize(v) {
	case progress.FontSizeSmall, progress.FontSizeMedium, progress.FontSizeLarge, progress.FontSizeExtraLarge:
		*f = FontSizeFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q, %q, %q or %q", v,
			progress.FontSizeSmall, progress.FontSizeMedium, progress.FontSizeLarge, progress.FontSizeExtraLarge)
	}
	return nil
}

// String implements pflag.Value.
func (f *FontSizeFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FontSizeFlag) Type() string {
	return "FontSize"
}

var (
	_ pflag.Value = (*FontSizeFlag)(nil)
)

func newSettingsCommand() *cobra.Command {
	settingsCommand := &cobra.Command{
		Use:   "settings",
		Short: "Show or change user settings",
	}
	settingsCommand.AddCommand(newSettingsGetCommand(), newSettingsSetCommand())
	return settingsCommand
}

func newSettingsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			settings, err := a.settings.Get(ctx)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: showing defaults: %v\n", err)
			}
			writeSettings(cmd.OutOrStdout(), settings)
			return nil
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	var (
		fontSize     FontSizeFlag
		voiceEnabled bool
		difficulty   int
		dailyGoal    int
	)
	command := &cobra.Command{
		Use:   "set",
		Short: "Change settings. Only the given flags are updated",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			settings, _ := a.settings.Get(ctx)
			flags := cmd.Flags()
			if flags.Changed("font-size") {
				settings.FontSize = progress.FontSize(fontSize)
			}
			if flags.Changed("voice") {
				settings.VoiceEnabled = voiceEnabled
			}
			if flags.Changed("difficulty") {
				settings.Difficulty = difficulty
			}
			if flags.Changed("daily-goal") {
				settings.DailyGoal = dailyGoal
			}

			if err := a.settings.Save(ctx, settings); err != nil {
				return fmt.Errorf("settings.Save() > %w", err)
			}
			writeSettings(cmd.OutOrStdout(), settings)
			return nil
		},
	}
	flags := command.Flags()
	flags.Var(&fontSize, "font-size", "small, medium, large or extra-large")
	flags.BoolVar(&voiceEnabled, "voice", true, "speak words and feedback")
	flags.IntVar(&difficulty, "difficulty", 0, "highest difficulty of recommended new words (1-5)")
	flags.IntVar(&dailyGoal, "daily-goal", 0, "words to study per day")
	return command
}

func writeSettings(out io.Writer, settings progress.UserSettings) {
	fmt.Fprintf(out, "font size:  %s\n", settings.FontSize)
	fmt.Fprintf(out, "voice:      %t\n", settings.VoiceEnabled)
	fmt.Fprintf(out, "difficulty: %d\n", settings.Difficulty)
	fmt.Fprintf(out, "daily goal: %d\n", settings.DailyGoal)
}
