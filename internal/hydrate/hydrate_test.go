package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_hosts.json")

	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[hostSettings](buildOptions(tc)...)

			ctx := Context{
				Location: tc.Location,
				Surface:  tc.Surface,
			}

			result, err := decoder.Decode(ctx, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecoderRejectsNilPayload(t *testing.T) {
	_, err := NewDecoder[hostSettings]().Decode(Context{Surface: "config"}, nil)
	if err == nil || !strings.Contains(err.Error(), "payload is nil") {
		t.Fatalf("expected nil payload error, got %v", err)
	}
}

func TestDecoderDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"hosts": "example.org"}
	decoder := NewDecoder[hostSettings](WithPreHook[hostSettings](bareDomainPreHook))

	if _, err := decoder.Decode(Context{Surface: "config"}, payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["hosts"] != "example.org" {
		t.Fatalf("payload mutated by pre-hook: %#v", payload)
	}
}

func TestDecoderPostHookError(t *testing.T) {
	sentinel := errors.New("rejected")
	decoder := NewDecoder[hostSettings](WithPostHook[hostSettings](func(Context, *hostSettings) error {
		return sentinel
	}))

	_, err := decoder.Decode(Context{Surface: "config"}, map[string]any{})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped post-hook error, got %v", err)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[hostSettings] {
	options := []DecoderOption[hostSettings]{}

	for _, optName := range tc.Options {
		switch optName {
		case "use_number":
			options = append(options, WithUseNumber[hostSettings]())
		case "disallow_unknown":
			options = append(options, WithDisallowUnknownFields[hostSettings]())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "bare_domain":
			options = append(options, WithPreHook[hostSettings](bareDomainPreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "default_muc":
			options = append(options, WithPostHook[hostSettings](defaultMUCPostHook))
		}
	}

	if tc.CustomDecoder == "embedded_json" {
		options = append(options, WithCustomDecoder[hostSettings](embeddedDecoder))
	}

	return options
}

func bareDomainPreHook(_ Context, payload map[string]any) (map[string]any, error) {
	domain, ok := payload["hosts"].(string)
	if !ok {
		return payload, nil
	}
	payload["hosts"] = map[string]any{"domain": domain}
	return payload, nil
}

func defaultMUCPostHook(_ Context, settings *hostSettings) error {
	if settings == nil {
		return errors.New("settings is nil")
	}
	if settings.Hosts.MUC == "" && settings.Hosts.Domain != "" {
		settings.Hosts.MUC = "conference." + settings.Hosts.Domain
	}
	return nil
}

func embeddedDecoder(ctx Context, payload map[string]any) (hostSettings, error) {
	var zero hostSettings
	raw, ok := payload["raw"].(string)
	if !ok || raw == "" {
		return zero, fmt.Errorf("missing raw payload for %s", ctx)
	}
	var out hostSettings
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name          string         `json:"name"`
	Location      string         `json:"location"`
	Surface       string         `json:"surface"`
	Input         map[string]any `json:"input"`
	Expect        hostSettings   `json:"expect"`
	ExpectErr     string         `json:"expectErr"`
	PreHooks      []string       `json:"preHooks"`
	PostHooks     []string       `json:"postHooks"`
	Options       []string       `json:"options"`
	CustomDecoder string         `json:"customDecoder"`
}

type hostSettings struct {
	Hosts        hosts  `json:"hosts"`
	BOSH         string `json:"bosh,omitempty"`
	ChannelLastN int    `json:"channelLastN,omitempty"`
}

type hosts struct {
	Domain string `json:"domain"`
	MUC    string `json:"muc,omitempty"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
