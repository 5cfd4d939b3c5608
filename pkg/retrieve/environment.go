package retrieve

import (
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-confres"
)

// LoadEnvironment reads the interface and logging surfaces. Script files
// (interface_config.js, logging_config.js) export their `interfaceConfig`
// and `loggingConfig` globals; other formats are decoded whole. An empty path
// leaves that surface absent.
func LoadEnvironment(interfacePath, loggingPath string) (confres.Environment, error) {
	var env confres.Environment
	var err error
	if env.Interface, err = loadSurface(interfacePath, confres.SurfaceInterface); err != nil {
		return confres.Environment{}, err
	}
	if env.Logging, err = loadSurface(loggingPath, confres.SurfaceLogging); err != nil {
		return confres.Environment{}, err
	}
	return env, nil
}

func loadSurface(path string, surface confres.Surface) (confres.Values, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return nil, nil
	}
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrUnknownFormat, path)
	}
	if format != FormatScript {
		return ReadFile(path, format)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("retrieve: read %s: %w", path, err)
	}
	return DecodeScript(data, surface.String(), DefaultScriptTimeout)
}
