package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-confres"
	"github.com/goliatone/go-confres/pkg/state"
	"github.com/goliatone/go-confres/schema/openapi"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type overrideView struct {
	Key      string `json:"key"`
	Surface  string `json:"surface"`
	Path     string `json:"path"`
	Value    any    `json:"value"`
	Previous any    `json:"previous,omitempty"`
	Found    bool   `json:"found"`
}

type resolutionView struct {
	Phase     string         `json:"phase"`
	Location  string         `json:"location,omitempty"`
	Error     string         `json:"error,omitempty"`
	ConfigErr string         `json:"configError,omitempty"`
	Config    confres.Values `json:"config,omitempty"`
	Interface confres.Values `json:"interfaceConfig,omitempty"`
	Logging   confres.Values `json:"loggingConfig,omitempty"`
	Overrides []overrideView `json:"overrides,omitempty"`
}

func newResolutionView(snapshot state.State) resolutionView {
	view := resolutionView{
		Phase:    snapshot.Phase.String(),
		Location: snapshot.Location.String(),
	}
	if snapshot.Err != nil {
		view.Error = snapshot.Err.Error()
	}
	if res := snapshot.Resolution; res != nil {
		if res.ConfigErr != nil {
			view.ConfigErr = res.ConfigErr.Error()
		}
		view.Config = res.Values
		view.Interface = res.Interface
		view.Logging = res.Logging
		for _, override := range res.Overrides {
			view.Overrides = append(view.Overrides, overrideView{
				Key:      override.Key,
				Surface:  override.Surface.String(),
				Path:     joinPath(override.Path),
				Value:    override.Value,
				Previous: override.Previous,
				Found:    override.Found,
			})
		}
	}
	return view
}

func renderJSON(w io.Writer, snapshot state.State) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newResolutionView(snapshot))
}

func renderText(snapshot state.State) string {
	view := newResolutionView(snapshot)
	var b strings.Builder

	status := okStyle.Render(view.Phase)
	if snapshot.Phase == state.PhaseFailed {
		status = errorStyle.Render(view.Phase)
	}
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(view.Location), status)
	if view.Error != "" {
		fmt.Fprintf(&b, "  %s\n", errorStyle.Render(view.Error))
	}
	if snapshot.Resolution == nil {
		return b.String()
	}

	if view.ConfigErr != "" {
		fmt.Fprintf(&b, "  %s %s\n", errorStyle.Render("typed view:"), view.ConfigErr)
	}
	if len(view.Overrides) == 0 {
		fmt.Fprintf(&b, "  %s\n", mutedStyle.Render("no overrides applied"))
	}
	for _, override := range view.Overrides {
		previous := mutedStyle.Render("(unset)")
		if override.Found {
			previous = formatValue(override.Previous)
		}
		fmt.Fprintf(&b, "  %s %s -> %s\n", keyStyle.Render(override.Key), previous, formatValue(override.Value))
	}

	fields := confres.Describe(snapshot.Resolution.Values)
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("config (%d fields)", len(fields))))
	for _, field := range fields {
		value, _ := snapshot.Resolution.Values.Lookup(strings.Split(field.Path, ".")...)
		fmt.Fprintf(&b, "  %s %s %s\n", keyStyle.Render(field.Path), mutedStyle.Render(field.Type), formatValue(value))
	}
	return b.String()
}

func renderOpenAPI(w io.Writer, snapshot state.State) error {
	res := snapshot.Resolution
	if res == nil {
		return fmt.Errorf("no resolution to describe")
	}
	surfaces := []openapi.Surface{{Name: confres.SurfaceConfig.String(), Value: res.Values}}
	if res.Interface != nil {
		surfaces = append(surfaces, openapi.Surface{Name: confres.SurfaceInterface.String(), Value: res.Interface})
	}
	if res.Logging != nil {
		surfaces = append(surfaces, openapi.Surface{Name: confres.SurfaceLogging.String(), Value: res.Logging})
	}

	info := openapi.Info{Title: "Resolved Configuration"}
	if loc := res.Location; loc != nil {
		info.Title = loc.Host()
		info.Description = loc.Room()
	}
	doc, err := openapi.Document(surfaces, openapi.WithInfo(info))
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
