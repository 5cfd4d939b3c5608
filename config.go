package confres

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/goliatone/go-confres/internal/hydrate"
)

// Hosts lists the XMPP hosts a deployment connects to.
type Hosts struct {
	Domain    string `json:"domain,omitempty"`
	MUC       string `json:"muc,omitempty"`
	Focus     string `json:"focus,omitempty"`
	Anonymous string `json:"anonymousdomain,omitempty"`
}

// Config is the typed view of a resolved configuration. Keys without a field
// are kept in Extra so nothing retrieved is lost.
type Config struct {
	Hosts               Hosts  `json:"hosts,omitzero"`
	BOSH                string `json:"bosh,omitempty"`
	WebsocketURL        string `json:"websocket,omitempty"`
	ChannelLastN        *int   `json:"channelLastN,omitempty"`
	Resolution          *int   `json:"resolution,omitempty"`
	StartWithAudioMuted *bool  `json:"startWithAudioMuted,omitempty"`
	StartWithVideoMuted *bool  `json:"startWithVideoMuted,omitempty"`
	DisableAudioLevels  *bool  `json:"disableAudioLevels,omitempty"`

	Extra map[string]any `json:"-"`
}

var configFields = map[string]struct{}{
	"hosts":               {},
	"bosh":                {},
	"websocket":           {},
	"channelLastN":        {},
	"resolution":          {},
	"startWithAudioMuted": {},
	"startWithVideoMuted": {},
	"disableAudioLevels":  {},
}

type configFieldsOnly Config

func (c *Config) UnmarshalJSON(data []byte) error {
	var known configFieldsOnly
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range configFields {
		delete(raw, key)
	}
	*c = Config(known)
	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

func (c Config) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(configFieldsOnly(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return known, nil
	}
	var out map[string]any
	if err := json.Unmarshal(known, &out); err != nil {
		return nil, err
	}
	for key, value := range c.Extra {
		if _, ok := configFields[key]; ok {
			continue
		}
		out[key] = value
	}
	return json.Marshal(out)
}

// ExtraKeys returns the sorted keys held in Extra.
func (c Config) ExtraKeys() []string {
	keys := make([]string, 0, len(c.Extra))
	for key := range c.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Validate reports every field holding an unusable value.
func (c Config) Validate() error {
	var errs []error
	if c.ChannelLastN != nil && *c.ChannelLastN < -1 {
		errs = append(errs, fmt.Errorf("channelLastN must be -1 or greater, got %d", *c.ChannelLastN))
	}
	if c.Resolution != nil && *c.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %d", *c.Resolution))
	}
	if c.BOSH != "" {
		if _, err := url.Parse(c.BOSH); err != nil {
			errs = append(errs, fmt.Errorf("bosh: %w", err))
		}
	}
	if c.WebsocketURL != "" {
		parsed, err := url.Parse(c.WebsocketURL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("websocket: %w", err))
		case parsed.Scheme != "ws" && parsed.Scheme != "wss":
			errs = append(errs, fmt.Errorf("websocket: scheme must be ws or wss, got %q", parsed.Scheme))
		}
	}
	return errors.Join(errs...)
}

var configDecoder = hydrate.NewDecoder[Config](
	hydrate.WithPostHook[Config](func(_ hydrate.Context, cfg *Config) error {
		return cfg.Validate()
	}),
)

// DecodeConfig builds the typed Config from values and validates it. A nil
// values decodes to the zero Config.
func DecodeConfig(loc *Location, values Values) (Config, error) {
	payload := map[string]any(values)
	if payload == nil {
		payload = map[string]any{}
	}
	return configDecoder.Decode(hydrate.Context{
		Location: loc.String(),
		Surface:  SurfaceConfig.String(),
	}, payload)
}
