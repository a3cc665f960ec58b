package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"
)

// primarySessionCookie is the cookie whose presence means the identity is
// (optimistically) logged in. Validation is deferred to first real use;
// eagerly probing a protected page is itself a detection signal.
const primarySessionCookie = "li_at"

// Cookie is one entry of the persisted credential bundle
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// cookieFileEnvelope matches the storage-state shape some exporters write
type cookieFileEnvelope struct {
	Cookies []Cookie `json:"cookies"`
}

// LoadCookieBundle reads a credential bundle from disk. Both a bare cookie
// array and a storage-state object with a "cookies" key are accepted.
func LoadCookieBundle(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookie bundle: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err == nil {
		return cookies, nil
	}

	var envelope cookieFileEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse cookie bundle: %w", err)
	}
	return envelope.Cookies, nil
}

// SaveCookieBundle writes the bundle as a bare cookie array, mode 0600
func SaveCookieBundle(path string, cookies []Cookie) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cookie bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write cookie bundle: %w", err)
	}
	return nil
}

// HasSessionCookie reports whether the bundle carries the primary session
// cookie with a non-empty value.
func HasSessionCookie(cookies []Cookie) bool {
	for _, c := range cookies {
		if c.Name == primarySessionCookie && c.Value != "" {
			return true
		}
	}
	return false
}

// toOptionalCookies converts the bundle for browser-context injection
func toOptionalCookies(cookies []Cookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		cookie := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		if c.Expires > 0 {
			cookie.Expires = playwright.Float(c.Expires)
		}
		out = append(out, cookie)
	}
	return out
}

// fromBrowserCookies converts browser-context cookies back into the
// persistable bundle shape.
func fromBrowserCookies(cookies []playwright.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		bundle := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			bundle.SameSite = string(*c.SameSite)
		}
		out = append(out, bundle)
	}
	return out
}
