package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-confres"
	"github.com/goliatone/go-confres/pkg/retrieve"
)

const defaultSettingsPath = "~/.config/confres/config.toml"

// Settings is the CLI configuration file.
type Settings struct {
	Retrieve RetrieveSettings `toml:"retrieve"`
	Routes   RouteSettings    `toml:"routes"`
	Log      LogSettings      `toml:"log"`
}

type RetrieveSettings struct {
	Source    string `toml:"source"`
	Path      string `toml:"path"`
	File      string `toml:"file"`
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
}

// RouteSettings restricts which fields each surface accepts from the location
// and optionally guards routes with expressions.
type RouteSettings struct {
	Config    []string          `toml:"config"`
	Interface []string          `toml:"interface"`
	Logging   []string          `toml:"logging"`
	When      map[string]string `toml:"when"`
	Evaluator string            `toml:"evaluator"`
}

type LogSettings struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

func defaultSettings() Settings {
	return Settings{
		Retrieve: RetrieveSettings{
			Source:    "http",
			Path:      retrieve.DefaultPath,
			Timeout:   retrieve.DefaultTimeout.String(),
			UserAgent: retrieve.DefaultUserAgent,
		},
		Routes: RouteSettings{Evaluator: "expr"},
	}
}

// LoadSettings reads path, falling back to defaults when the default file does
// not exist. An explicit path that does not exist is an error.
func LoadSettings(path string) (Settings, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultSettingsPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return Settings{}, err
	}

	cfg := defaultSettings()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// Validate rejects settings the CLI cannot act on.
func (s Settings) Validate() error {
	var errs []error
	switch s.Retrieve.Source {
	case "http", "":
	case "file":
		if strings.TrimSpace(s.Retrieve.File) == "" {
			errs = append(errs, fmt.Errorf("retrieve.file is required when source is file"))
		}
	default:
		errs = append(errs, fmt.Errorf("retrieve.source must be http or file, got %q", s.Retrieve.Source))
	}
	if _, err := s.timeout(); err != nil {
		errs = append(errs, err)
	}
	switch s.Routes.Evaluator {
	case "", "expr", "cel":
	default:
		errs = append(errs, fmt.Errorf("routes.evaluator must be expr or cel, got %q", s.Routes.Evaluator))
	}
	for surface := range s.Routes.When {
		if confres.ParseSurface(surface) == confres.SurfaceUnknown {
			errs = append(errs, fmt.Errorf("routes.when: unknown surface %q", surface))
		}
	}
	return errors.Join(errs...)
}

func (s Settings) timeout() (time.Duration, error) {
	raw := strings.TrimSpace(s.Retrieve.Timeout)
	if raw == "" {
		return retrieve.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("retrieve.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("retrieve.timeout must be positive, got %s", d)
	}
	return d, nil
}

// RoutingTable applies the allow lists and guards to the default routes.
func (s Settings) RoutingTable() confres.RoutingTable {
	routes := confres.DefaultRoutes()
	if len(s.Routes.Config) > 0 {
		routes = routes.WithAllow(confres.SurfaceConfig, s.Routes.Config...)
	}
	if len(s.Routes.Interface) > 0 {
		routes = routes.WithAllow(confres.SurfaceInterface, s.Routes.Interface...)
	}
	if len(s.Routes.Logging) > 0 {
		routes = routes.WithAllow(confres.SurfaceLogging, s.Routes.Logging...)
	}
	for i := range routes {
		if when := strings.TrimSpace(s.Routes.When[routes[i].Surface.String()]); when != "" {
			routes[i].When = when
		}
	}
	return routes
}

// Engine builds the merge engine described by the settings.
func (s Settings) Engine(opts ...confres.EngineOption) *confres.Engine {
	var evaluator confres.Evaluator
	cache := confres.NewProgramCache()
	if s.Routes.Evaluator == "cel" {
		evaluator = confres.NewCELEvaluator(confres.CELWithProgramCache(cache))
	} else {
		evaluator = confres.NewExprEvaluator(confres.ExprWithProgramCache(cache))
	}
	base := []confres.EngineOption{
		confres.WithRoutes(s.RoutingTable()),
		confres.WithGuardEvaluator(evaluator),
	}
	return confres.NewEngine(append(base, opts...)...)
}

// Retriever builds the retriever selected by the settings.
func (s Settings) Retriever(opts ...retrieve.HTTPOption) (confres.Retriever, error) {
	if s.Retrieve.Source == "file" {
		return retrieve.File{Path: s.Retrieve.File}, nil
	}
	timeout, err := s.timeout()
	if err != nil {
		return nil, err
	}
	base := []retrieve.HTTPOption{
		retrieve.WithPath(s.Retrieve.Path),
		retrieve.WithTimeout(timeout),
		retrieve.WithUserAgent(s.Retrieve.UserAgent),
	}
	return retrieve.NewHTTP(append(base, opts...)...), nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
