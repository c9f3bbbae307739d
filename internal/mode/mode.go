// Package mode decides where events live for the lifetime of a process.
package mode

import (
	"fmt"
	"strings"
)

type Mode string

const (
	LocalOnly  Mode = "local-only"
	RemoteOnly Mode = "remote-only"
	Hybrid     Mode = "hybrid"
)

var All = []Mode{LocalOnly, RemoteOnly, Hybrid}

// UsesRemote reports whether the remote store takes part in the mode.
func (m Mode) UsesRemote() bool {
	return m == RemoteOnly || m == Hybrid
}

// UsesCache reports whether the local cache takes part in the mode.
func (m Mode) UsesCache() bool {
	return m == LocalOnly || m == Hybrid
}

func (m Mode) String() string {
	return string(m)
}

// Parse accepts the canonical names and the older aliases "local",
// "localStorage", "remote" and "airtable".
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local-only", "local", "localstorage":
		return LocalOnly, nil
	case "remote-only", "remote", "airtable":
		return RemoteOnly, nil
	case "hybrid":
		return Hybrid, nil
	}
	return "", fmt.Errorf("invalid mode %q: must be one of local-only, remote-only, hybrid", s)
}

// Select maps configuration to a mode. Without a configured remote the answer
// is always LocalOnly; a remote-only or hybrid override is downgraded, not
// rejected. With a remote and no usable override the answer is Hybrid.
//
// Select is evaluated once at startup. Changing mode mid-session would strand
// writes in whichever store was authoritative at the time.
func Select(remoteConfigured bool, override string) Mode {
	if !remoteConfigured {
		return LocalOnly
	}
	if override == "" {
		return Hybrid
	}
	m, err := Parse(override)
	if err != nil {
		return Hybrid
	}
	return m
}
