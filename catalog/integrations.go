package catalog

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

const ProviderWbuy = "wbuy"

var ErrMissingCredentials = errors.New("wbuy credentials are incomplete")

// Integrations maps a lower-cased provider name to its settings object
type Integrations struct {
	providers map[string]gjson.Result
}

// ParseIntegrations decodes the integrations column. Both layouts written by
// the backend are accepted: an object keyed by provider, and an array of
// objects naming their provider in "type", "provider" or "name".
func ParseIntegrations(text string) (Integrations, error) {
	integrations := Integrations{providers: make(map[string]gjson.Result)}

	doc, err := unwrap(text)
	if err != nil {
		return integrations, err
	}

	switch {
	case !doc.Exists():
	case doc.IsObject():
		doc.ForEach(func(key, value gjson.Result) bool {
			integrations.providers[strings.ToLower(key.String())] = value
			return true
		})
	case doc.IsArray():
		for _, item := range doc.Array() {
			provider := firstString(item, "type", "provider", "name")
			if provider == "" {
				continue
			}
			integrations.providers[strings.ToLower(provider)] = item
		}
	default:
		return integrations, fmt.Errorf("integrations document must be an object or an array")
	}
	return integrations, nil
}

// Providers returns the configured provider names, sorted
func (in Integrations) Providers() []string {
	names := make([]string, 0, len(in.providers))
	for name := range in.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (in Integrations) Get(provider string) (gjson.Result, bool) {
	v, ok := in.providers[strings.ToLower(provider)]
	return v, ok
}

// Masked returns the settings of every provider with secret values obscured.
// With reveal set the values are returned untouched.
func (in Integrations) Masked(reveal bool) map[string]interface{} {
	out := make(map[string]interface{}, len(in.providers))
	for name, settings := range in.providers {
		var v interface{}
		if err := json.Unmarshal([]byte(settings.Raw), &v); err != nil {
			v = settings.String()
		}
		if !reveal {
			v = maskValue("", v)
		}
		out[name] = v
	}
	return out
}

var secretKeys = []string{"password", "secret", "token", "apikey", "api_key", "key"}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func maskValue(key string, v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = maskValue(k, inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = maskValue(key, inner)
		}
		return t
	case string:
		if isSecretKey(key) {
			return Mask(t)
		}
		return t
	default:
		return t
	}
}

// Mask keeps the first two characters of a secret
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****"
}

type WbuyCredentials struct {
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	StoreID  string `json:"store_id,omitempty" yaml:"store_id,omitempty"`
}

// Wbuy extracts the Wbuy credentials, if the provider is configured
func (in Integrations) Wbuy() (WbuyCredentials, bool) {
	settings, ok := in.Get(ProviderWbuy)
	if !ok {
		return WbuyCredentials{}, false
	}
	// array layout may nest the values under "config" or "credentials"
	for _, nested := range []string{"config", "credentials"} {
		if inner := settings.Get(nested); inner.IsObject() {
			settings = inner
			break
		}
	}

	return WbuyCredentials{
		User:     firstString(settings, "apiUser", "user", "username"),
		Password: firstString(settings, "apiPassword", "password"),
		Token:    firstString(settings, "token", "apiToken"),
		StoreID:  firstString(settings, "storeId", "store_id"),
	}, true
}

// BearerToken returns the stored token, or base64("user:password") when only
// the user and password are known. Wbuy expects that value after "Bearer".
func (c WbuyCredentials) BearerToken() (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}
	if c.User == "" || c.Password == "" {
		return "", ErrMissingCredentials
	}
	return base64.StdEncoding.EncodeToString([]byte(c.User + ":" + c.Password)), nil
}

func firstString(v gjson.Result, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(v.Get(k).String()); s != "" {
			return s
		}
	}
	return ""
}
