// Package profile models the agent profile scope attached to every admin
// request. Downstream handlers resolve the governing profile through the
// request context rather than through process-wide state, keeping the door
// open for per-tenant profiles later.
package profile

import "fmt"

// Profile describes the agent instance governing admin requests.
type Profile struct {
	// Label is the human-readable agent label shown in the API documentation.
	Label string

	// Version is the agent version string (e.g. "v11").
	Version string

	// Settings holds arbitrary agent configuration values.
	Settings map[string]any
}

// Setting returns the named settings value, or def when unset.
func (p *Profile) Setting(name string, def any) any {
	if v, ok := p.Settings[name]; ok {
		return v
	}
	return def
}

// Registry resolves the profile governing a request. The current
// implementation is single-tenant: every request resolves to the root
// profile.
type Registry interface {
	// Root returns the root agent profile.
	Root() *Profile
}

// StaticRegistry is a Registry holding a single fixed profile.
type StaticRegistry struct {
	profile *Profile
}

// NewStaticRegistry creates a single-profile registry.
func NewStaticRegistry(p *Profile) (*StaticRegistry, error) {
	if p == nil {
		return nil, fmt.Errorf("profile must not be nil")
	}
	return &StaticRegistry{profile: p}, nil
}

// Root returns the registry's fixed profile.
func (r *StaticRegistry) Root() *Profile {
	return r.profile
}
