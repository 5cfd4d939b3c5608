package confres

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Param is one key/value pair decoded from a location fragment.
type Param struct {
	Key   string
	Value any
}

// Params keeps fragment order; when a key repeats the later entry wins.
type Params []Param

// Lookup returns the last value recorded for key.
func (p Params) Lookup(key string) (any, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in fragment order, including repeats.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i := range p {
		keys[i] = p[i].Key
	}
	return keys
}

// FragmentDecoder extracts override parameters from a location. Implementations
// must be pure: the same location always yields the same Params.
type FragmentDecoder interface {
	Decode(loc *Location) Params
}

// FragmentDecoderFunc adapts a function to FragmentDecoder.
type FragmentDecoderFunc func(loc *Location) Params

// Decode implements FragmentDecoder.
func (f FragmentDecoderFunc) Decode(loc *Location) Params {
	if f == nil {
		return nil
	}
	return f(loc)
}

// DefaultFragmentDecoder returns the decoder used when none is configured.
// Each fragment part is split on the first '=' and its value is unescaped
// and parsed as JSON, so `#config.startWithAudioMuted=true` yields a bool and
// `#config.subject="Standup"` a string. Parts whose value is missing, is
// `undefined`, is JSON null or is not valid JSON are dropped.
func DefaultFragmentDecoder() FragmentDecoder {
	return FragmentDecoderFunc(decodeFragment)
}

func decodeFragment(loc *Location) Params {
	fragment := loc.Fragment()
	if fragment == "" {
		return nil
	}

	parts := strings.Split(fragment, "&")
	// A lone "/..." fragment is an in-app route, not parameters.
	if len(parts) == 1 && strings.HasPrefix(parts[0], "/") {
		return nil
	}

	var params Params
	for _, part := range parts {
		key, raw, found := strings.Cut(part, "=")
		if key == "" || !found {
			continue
		}
		value, ok := decodeParamValue(raw)
		if !ok {
			continue
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params
}

func decodeParamValue(raw string) (any, bool) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return nil, false
	}
	decoded = strings.Replace(decoded, `\&`, "&", 1)
	if decoded == "undefined" {
		return nil, false
	}
	var value any
	if err := json.Unmarshal([]byte(decoded), &value); err != nil {
		return nil, false
	}
	if value == nil {
		return nil, false
	}
	return value, true
}
