package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-confres"
)

func newParamsCommand(globals *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "params <location>",
		Short: "Show the overrides a location carries and where they are routed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := confres.ParseLocation(args[0])
			if err != nil {
				return err
			}
			settings, logger, err := globals.load()
			if err != nil {
				return err
			}
			engine := settings.Engine(confres.WithEngineLogger(logger))

			decoded := confres.DefaultFragmentDecoder().Decode(loc)
			overrides := engine.Overrides(loc)
			_, err = fmt.Fprint(cmd.OutOrStdout(), renderParams(decoded, overrides))
			return err
		},
	}
}

func renderParams(decoded confres.Params, overrides []confres.Override) string {
	var b strings.Builder
	routed := make(map[string]bool, len(overrides))
	for _, override := range overrides {
		routed[override.Key] = true
		fmt.Fprintf(&b, "%s %s %s = %s\n",
			keyStyle.Render(override.Key),
			mutedStyle.Render("->"),
			override.Surface.String()+"."+joinPath(override.Path),
			formatValue(override.Value))
	}
	for _, param := range decoded {
		if routed[param.Key] {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", keyStyle.Render(param.Key), mutedStyle.Render("(dropped: no route)"))
	}
	if b.Len() == 0 {
		return mutedStyle.Render("no overrides") + "\n"
	}
	return b.String()
}

func formatValue(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}
