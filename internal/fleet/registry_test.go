package fleet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeRegistry(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("writing registry file: %v", err)
	}
	return path
}

func TestLoadRegistry_YAML(t *testing.T) {
	path := writeRegistry(t, `
devices:
  - ip: 10.0.0.5
    name: Gate-A
    location: Main entrance
    status: active
    date_installed: "2024-01-15"
  - ip: 10.0.0.6
    name: Gate-B
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}

	dev, err := reg.ByIP("10.0.0.5")
	if err != nil {
		t.Fatalf("ByIP() error = %v", err)
	}
	if dev.Name != "Gate-A" || dev.Location != "Main entrance" {
		t.Errorf("descriptor = %+v", dev)
	}
}

func TestLoadRegistry_LegacyJSON(t *testing.T) {
	// The original deployment shipped a JSON registry; it must keep
	// loading unchanged.
	path := writeRegistry(t, `{"devices": [{"ip": "10.0.0.5", "name": "Gate-A"}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestLoadRegistry_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrRegistryInvalid) {
			t.Errorf("err = %v, want ErrRegistryInvalid", err)
		}
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := LoadRegistry(writeRegistry(t, "devices: {not: [a, list"))
		if !errors.Is(err, ErrRegistryInvalid) {
			t.Errorf("err = %v, want ErrRegistryInvalid", err)
		}
	})

	t.Run("entry without ip", func(t *testing.T) {
		_, err := LoadRegistry(writeRegistry(t, "devices:\n  - name: NoAddress\n"))
		if !errors.Is(err, ErrDeviceMissingIP) {
			t.Errorf("err = %v, want ErrDeviceMissingIP", err)
		}
	})

	t.Run("duplicate ip", func(t *testing.T) {
		_, err := LoadRegistry(writeRegistry(t, `
devices:
  - ip: 10.0.0.5
  - ip: 10.0.0.5
`))
		if !errors.Is(err, ErrDuplicateDeviceIP) {
			t.Errorf("err = %v, want ErrDuplicateDeviceIP", err)
		}
	})
}

func TestRegistry_EmptyListIsValid(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, "devices: []\n"))
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegistry_ByIPNotFound(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, "devices:\n  - ip: 10.0.0.5\n"))
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if _, err := reg.ByIP("10.9.9.9"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("err = %v, want ErrDeviceNotFound", err)
	}
}
