package env

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend selects the transport carrying link frames.
type Backend int

// Backends
const (
	PhysicalLink Backend = iota
	LocalSubstitute
	MQTTBridge
)

var backendNames = map[Backend]string{
	PhysicalLink:    "physical",
	LocalSubstitute: "local",
	MQTTBridge:      "mqtt",
}

// ParseBackend parses the backend name.
func ParseBackend(s string) (Backend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for b, name := range backendNames {
		if name == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}

// String implements fmt.Stringer.
func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// Set implements flag.Value.
func (b *Backend) Set(s string) error {
	v, err := ParseBackend(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Type implements pflag.Value.
func (b *Backend) Type() string {
	return "backend"
}

// MarshalText implements encoding.TextMarshaler.
func (b Backend) MarshalText() ([]byte, error) {
	if _, ok := backendNames[b]; !ok {
		return nil, fmt.Errorf("invalid backend %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Backend) UnmarshalText(text []byte) error {
	return b.Set(string(text))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Backend) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: backend must be a scalar", node.Line)
	}
	if err := b.Set(node.Value); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}
