// Package connstring parses the backend connection string format named in
// spec §6: `<scheme>://[<user>:<pass>@]<host>[:<port>]/<namespace>[?auth=root|namespace]`.
// It doesn't dial anything — it's the shared shape config.go decodes a
// backend DSN into before handing it to the store that owns actually
// connecting (pgstore's pgxpool.New, a future backend's own driver).
package connstring

import (
	"fmt"
	"net/url"
	"strings"
)

// AuthScope selects which credential scope a connection authenticates
// against.
type AuthScope string

const (
	// AuthRoot is the default when the auth query parameter is absent.
	AuthRoot      AuthScope = "root"
	AuthNamespace AuthScope = "namespace"
)

// ConnString is a parsed backend connection string.
type ConnString struct {
	Scheme    string
	User      string
	Password  string
	Host      string
	Port      string
	Namespace string
	Auth      AuthScope
}

// Parse parses raw per spec §6's grammar. An empty scheme is an error; an
// absent auth query parameter defaults to AuthRoot.
func Parse(raw string) (ConnString, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ConnString{}, fmt.Errorf("connstring: %w", err)
	}

	if u.Scheme == "" {
		return ConnString{}, fmt.Errorf("connstring: missing scheme in %q", raw)
	}

	cs := ConnString{
		Scheme:    u.Scheme,
		Host:      u.Hostname(),
		Port:      u.Port(),
		Namespace: strings.TrimPrefix(u.Path, "/"),
		Auth:      AuthRoot,
	}

	if u.User != nil {
		cs.User = u.User.Username()
		cs.Password, _ = u.User.Password()
	}

	if auth := u.Query().Get("auth"); auth != "" {
		switch AuthScope(auth) {
		case AuthRoot, AuthNamespace:
			cs.Auth = AuthScope(auth)
		default:
			return ConnString{}, fmt.Errorf("connstring: invalid auth scope %q", auth)
		}
	}

	return cs, nil
}

// String renders cs back into its canonical wire form.
func (cs ConnString) String() string {
	u := url.URL{Scheme: cs.Scheme, Host: cs.Host}
	if cs.Port != "" {
		u.Host = cs.Host + ":" + cs.Port
	}
	if cs.User != "" {
		if cs.Password != "" {
			u.User = url.UserPassword(cs.User, cs.Password)
		} else {
			u.User = url.User(cs.User)
		}
	}
	u.Path = "/" + cs.Namespace
	if cs.Auth != "" && cs.Auth != AuthRoot {
		q := url.Values{}
		q.Set("auth", string(cs.Auth))
		u.RawQuery = q.Encode()
	}
	return u.String()
}
