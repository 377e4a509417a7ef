package fleet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceDescriptor is the static metadata for one fleet member, read-only
// after load. IP is the fleet-unique key.
type DeviceDescriptor struct {
	IP            string `yaml:"ip" json:"ip"`
	Name          string `yaml:"name" json:"name"`
	Location      string `yaml:"location" json:"location"`
	Status        string `yaml:"status" json:"status"`
	DateInstalled string `yaml:"date_installed" json:"date_installed"`
	DateExpired   string `yaml:"date_expired" json:"date_expired"`
	Notes         string `yaml:"notes" json:"notes"`
}

// registryDocument is the on-disk shape: a top-level devices list.
type registryDocument struct {
	Devices []DeviceDescriptor `yaml:"devices"`
}

// Registry holds the device descriptors for one run. Loaded once; the
// descriptors do not change while the process runs.
type Registry struct {
	devices []DeviceDescriptor
	byIP    map[string]int
}

// LoadRegistry reads the device registry document at path. The document is
// YAML (the legacy JSON registry parses too, JSON being a YAML subset) with
// a top-level "devices" list. An unreadable or structurally invalid file is
// fatal; an empty device list is not.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrRegistryInvalid, path, err)
	}

	var doc registryDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrRegistryInvalid, path, err)
	}

	byIP := make(map[string]int, len(doc.Devices))
	for i, d := range doc.Devices {
		if d.IP == "" {
			return nil, fmt.Errorf("%w: entry %d (%q)", ErrDeviceMissingIP, i, d.Name)
		}
		if _, exists := byIP[d.IP]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDeviceIP, d.IP)
		}
		byIP[d.IP] = i
	}

	return &Registry{devices: doc.Devices, byIP: byIP}, nil
}

// Devices returns all descriptors in document order. The returned slice is a
// copy; the registry itself stays immutable.
func (r *Registry) Devices() []DeviceDescriptor {
	out := make([]DeviceDescriptor, len(r.devices))
	copy(out, r.devices)
	return out
}

// ByIP returns the descriptor with the given ip.
func (r *Registry) ByIP(ip string) (DeviceDescriptor, error) {
	i, ok := r.byIP[ip]
	if !ok {
		return DeviceDescriptor{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, ip)
	}
	return r.devices[i], nil
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	return len(r.devices)
}
