package retrieve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-confres"
)

// File reads configuration bundled with the deployment. The location is
// ignored.
type File struct {
	Path string
	// Format overrides the format inferred from the extension.
	Format Format
}

var _ confres.Retriever = File{}

// Retrieve implements confres.Retriever.
func (f File) Retrieve(ctx context.Context, _ *confres.Location) (confres.Values, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(f.Path, f.Format)
}

// ReadFile decodes the file at path. An empty format is inferred from the
// extension.
func ReadFile(path string, format Format) (confres.Values, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return nil, fmt.Errorf("retrieve: file path is empty")
	}
	if format == "" {
		inferred, ok := FormatFromPath(path)
		if !ok {
			return nil, fmt.Errorf("%w for %s", ErrUnknownFormat, path)
		}
		format = inferred
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("retrieve: read %s: %w", path, err)
	}
	return DecodePayload(format, data)
}

// Static serves a fixed configuration, e.g. bundled defaults.
func Static(values confres.Values) confres.Retriever {
	return confres.RetrieverFunc(func(ctx context.Context, _ *confres.Location) (confres.Values, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return values.Clone(), nil
	})
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
