package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-confres"
	"github.com/goliatone/go-confres/pkg/retrieve"
	"github.com/goliatone/go-confres/pkg/state"
)

type resolveOptions struct {
	source          string
	file            string
	path            string
	interfaceConfig string
	loggingConfig   string
	output          string
	activity        bool
}

func newResolveCommand(globals *globalOptions) *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <location>",
		Short: "Load configuration for a location and apply its overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, globals, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.source, "source", "", "where configuration is loaded from (http or file)")
	flags.StringVar(&opts.file, "file", "", "configuration file used with --source file")
	flags.StringVar(&opts.path, "path", "", "configuration path or URL used with --source http")
	flags.StringVar(&opts.interfaceConfig, "interface-config", "", "interface configuration file (js, json, toml or yaml)")
	flags.StringVar(&opts.loggingConfig, "logging-config", "", "logging configuration file (js, json, toml or yaml)")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format (text, json or openapi)")
	flags.BoolVar(&opts.activity, "activity", false, "write load activity records to stderr as JSON lines")

	return cmd
}

func (o *resolveOptions) apply(settings *Settings) {
	if o.source != "" {
		settings.Retrieve.Source = o.source
	}
	if o.file != "" {
		settings.Retrieve.File = o.file
		if o.source == "" {
			settings.Retrieve.Source = "file"
		}
	}
	if o.path != "" {
		settings.Retrieve.Path = o.path
	}
}

func runResolve(cmd *cobra.Command, globals *globalOptions, opts *resolveOptions, rawLocation string) error {
	switch opts.output {
	case "text", "json", "openapi":
	default:
		return fmt.Errorf("--output must be text, json or openapi, got %q", opts.output)
	}
	loc, err := confres.ParseLocation(rawLocation)
	if err != nil {
		return err
	}

	settings, logger, err := globals.load()
	if err != nil {
		return err
	}
	opts.apply(&settings)
	if err := settings.Validate(); err != nil {
		return err
	}

	retriever, err := settings.Retriever(retrieve.WithLogger(logger))
	if err != nil {
		return err
	}
	env, err := retrieve.LoadEnvironment(opts.interfaceConfig, opts.loggingConfig)
	if err != nil {
		return err
	}

	storeOpts := []state.Option{state.WithLogger(logger)}
	if opts.activity {
		storeOpts = append(storeOpts, state.WithEmitter(newActivityEmitter(cmd.ErrOrStderr())))
	}
	store := state.NewStore(storeOpts...)
	coordinator, err := confres.NewCoordinator(retriever, store,
		confres.WithEnvironment(env),
		confres.WithEngine(settings.Engine(confres.WithEngineLogger(logger))),
		confres.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	pending := coordinator.BeginLoad(cmd.Context(), loc)
	if _, err := pending.Wait(cmd.Context()); err != nil {
		return err
	}

	snapshot := store.Snapshot()
	out := cmd.OutOrStdout()
	switch opts.output {
	case "json":
		err = renderJSON(out, snapshot)
	case "openapi":
		if snapshot.Phase == state.PhaseFailed {
			break
		}
		err = renderOpenAPI(out, snapshot)
	default:
		_, err = fmt.Fprint(out, renderText(snapshot))
	}
	if err != nil {
		return err
	}
	if snapshot.Phase == state.PhaseFailed {
		return fmt.Errorf("resolution failed: %w", snapshot.Err)
	}
	return nil
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}
