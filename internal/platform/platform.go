// Package platform maps logical dataplane port numbers to OS-level interface
// identifiers. A platform definition is loaded once before any test executes
// and is read-only afterwards.
package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osGeteuid = os.Geteuid

// ConfigError indicates a platform definition that is missing, unparsable,
// or left the port map empty after loading.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("platform %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("platform %s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PrivilegeError indicates the platform requires elevated privileges and the
// process is not running with them.
type PrivilegeError struct {
	Platform string
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("platform %q requires root privileges; re-run as root or pass --allow-unprivileged", e.Platform)
}

// Platform describes the dataplane environment tests run against.
type Platform struct {
	Name              string         `yaml:"name"`
	PortMap           map[int]string `yaml:"port_map"`
	RequiresPrivilege bool           `yaml:"requires_privilege"`
}

// Default returns the built-in local platform with four veth pairs, used
// when no platform file is given.
func Default() *Platform {
	return &Platform{
		Name: "local",
		PortMap: map[int]string{
			1: "veth1",
			2: "veth3",
			3: "veth5",
			4: "veth7",
		},
		RequiresPrivilege: true,
	}
}

// Load reads a platform definition from a YAML file. A platform must
// populate a non-empty port map; an empty one is a ConfigError.
func Load(path string) (*Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "cannot read platform", Err: err}
	}

	var p Platform
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, &ConfigError{Path: path, Reason: "cannot parse platform", Err: err}
	}

	if p.Name == "" {
		p.Name = "custom"
	}
	if len(p.PortMap) == 0 {
		return nil, &ConfigError{Path: path, Reason: "port map is empty after configuration update"}
	}

	return &p, nil
}

// CheckPrivilege enforces the platform's privilege requirement. The
// allowUnprivileged override makes the check advisory only.
func (p *Platform) CheckPrivilege(allowUnprivileged bool) error {
	if !p.RequiresPrivilege || allowUnprivileged {
		return nil
	}
	if osGeteuid() != 0 {
		return &PrivilegeError{Platform: p.Name}
	}
	return nil
}
