package openapi

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Info is the document's info object.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Surface is one named tree published as a schema component.
type Surface struct {
	Name  string
	Value any
}

type documentConfig struct {
	openAPIVersion string
	info           Info
	path           string
	contentType    string
}

func defaultDocumentConfig() documentConfig {
	return documentConfig{
		openAPIVersion: "3.0.3",
		info: Info{
			Title:   "Resolved Configuration",
			Version: "1.0.0",
		},
		path:        "/config",
		contentType: "application/json",
	}
}

// Option configures Document.
type Option func(*documentConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) Option {
	return func(cfg *documentConfig) {
		if version = strings.TrimSpace(version); version != "" {
			cfg.openAPIVersion = version
		}
	}
}

// WithInfo replaces the info object. Empty fields keep their defaults.
func WithInfo(info Info) Option {
	return func(cfg *documentConfig) {
		if info.Title != "" {
			cfg.info.Title = info.Title
		}
		if info.Version != "" {
			cfg.info.Version = info.Version
		}
		cfg.info.Description = info.Description
	}
}

// WithPath sets the path the resolution is served under (default: /config).
func WithPath(path string) Option {
	return func(cfg *documentConfig) {
		if path = strings.TrimSpace(path); path != "" {
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
			cfg.path = path
		}
	}
}

// Document builds an OpenAPI document with one component per surface and a
// GET operation returning all of them keyed by surface name.
func Document(surfaces []Surface, opts ...Option) (map[string]any, error) {
	cfg := defaultDocumentConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	schemas := make(map[string]any, len(surfaces))
	properties := make(map[string]any, len(surfaces))
	for _, surface := range surfaces {
		name := strings.TrimSpace(surface.Name)
		if name == "" {
			return nil, errors.New("openapi: surface name is required")
		}
		if _, exists := properties[name]; exists {
			return nil, fmt.Errorf("openapi: duplicate surface %q", name)
		}
		schema, err := Schema(surface.Value)
		if err != nil {
			return nil, fmt.Errorf("openapi: surface %q: %w", name, err)
		}
		component := componentName(name)
		schemas[component] = schema
		properties[name] = map[string]any{"$ref": "#/components/schemas/" + component}
	}

	info := map[string]any{
		"title":   cfg.info.Title,
		"version": cfg.info.Version,
	}
	if cfg.info.Description != "" {
		info["description"] = cfg.info.Description
	}

	document := map[string]any{
		"openapi": cfg.openAPIVersion,
		"info":    info,
		"paths": map[string]any{
			cfg.path: map[string]any{
				"get": map[string]any{
					"operationId": "get:" + cfg.path,
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Resolved configuration",
							"content": map[string]any{
								cfg.contentType: map[string]any{
									"schema": map[string]any{
										"type":       "object",
										"properties": properties,
									},
								},
							},
						},
					},
				},
			},
		},
	}
	if len(schemas) > 0 {
		document["components"] = map[string]any{"schemas": schemas}
	}
	return document, nil
}

// componentName turns a surface name such as "interfaceConfig" into a
// component key ("InterfaceConfig").
func componentName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
