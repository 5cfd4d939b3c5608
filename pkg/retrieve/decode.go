// Package retrieve provides confres.Retriever implementations and the payload
// decoders they share.
package retrieve

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-confres"
)

// Format names a configuration payload encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatTOML   Format = "toml"
	FormatYAML   Format = "yaml"
	FormatScript Format = "js"
)

// ErrUnknownFormat is returned for payloads in an unsupported encoding.
var ErrUnknownFormat = errors.New("retrieve: unknown payload format")

// FormatFromPath infers the format from a file extension. ok is false when
// the extension is not recognised.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".js":
		return FormatScript, true
	default:
		return "", false
	}
}

// FormatFromContentType infers the format from a Content-Type header.
func FormatFromContentType(contentType string) (Format, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mediaType {
	case "application/json":
		return FormatJSON, true
	case "application/toml":
		return FormatTOML, true
	case "application/yaml", "application/x-yaml", "text/yaml":
		return FormatYAML, true
	case "application/javascript", "text/javascript", "application/x-javascript":
		return FormatScript, true
	default:
		return "", false
	}
}

// DecodePayload decodes data into configuration values. Scripts are evaluated
// and their `config` global is exported.
func DecodePayload(format Format, data []byte) (confres.Values, error) {
	var (
		raw map[string]any
		err error
	)
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatScript:
		return DecodeScript(data, "config", DefaultScriptTimeout)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve: decode %s payload: %w", format, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("retrieve: %s payload is not an object", format)
	}
	return confres.Values(normalizeMap(raw)), nil
}

func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normalize(value)
	}
	return out
}

// normalize brings decoder output to the shapes encoding/json produces:
// numbers become float64, dates become RFC 3339 strings and mapping keys
// become strings.
func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalize(item)
		}
		return out
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint64:
		return float64(typed)
	case float32:
		return float64(typed)
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return typed.String()
	default:
		return value
	}
}
