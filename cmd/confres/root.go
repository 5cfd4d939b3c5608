package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-confres/pkg/logging"
)

type globalOptions struct {
	settingsPath string
	logLevel     string
}

func newRootCommand(version, commit, date string) *cobra.Command {
	globals := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "confres",
		Short: "Resolve session configuration for a location",
		Long: `confres loads the configuration for a session location and applies the
overrides carried in the location fragment, e.g.

  confres resolve 'https://meet.example.com/standup#config.startWithAudioMuted=true'`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&globals.settingsPath, "config", "", "settings file (default "+defaultSettingsPath+")")
	rootCmd.PersistentFlags().StringVar(&globals.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")

	rootCmd.AddCommand(newResolveCommand(globals))
	rootCmd.AddCommand(newParamsCommand(globals))

	return rootCmd
}

// load reads the settings and builds the logger they describe. Precedence is
// flag, then CONFRES_LOG_* env, then the settings file.
func (g *globalOptions) load() (Settings, zerolog.Logger, error) {
	settings, err := LoadSettings(g.settingsPath)
	if err != nil {
		return Settings{}, zerolog.Nop(), err
	}

	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	if level, ok := logging.ParseLevel(settings.Log.Level); ok {
		cfg.Level = level
	}
	cfg.JSON = settings.Log.JSON
	logging.ApplyEnvOverrides(&cfg, os.Getenv)
	if level, ok := logging.ParseLevel(g.logLevel); ok {
		cfg.Level = level
	}
	return settings, logging.New(os.Stderr, "confres", cfg), nil
}
