package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceOverride is one per-device entry of the daemon config file: a
// device-identifying pattern string (wildcard, serial, or
// vendor:product:serial) with tap-hold settings. LoadDaemon parses
// these entries only; no part of the daemon matches the patterns
// against devices or applies the settings, and the compiled artifact's
// tap-hold actions are used unchanged.
type DeviceOverride struct {
	Pattern          string `yaml:"pattern"`
	DisableTapHold   bool   `yaml:"disableTapHold"`
	ThresholdOverride uint16 `yaml:"thresholdOverrideMs"`
}

// Daemon is the orchestrator's YAML-file config (spec.md §6): where the
// artifact lives, where to log, and any per-device overrides. Separate
// from Env — Env holds the values spec.md §6 names as environment
// variables, Daemon holds everything else an operator would want in a
// version-controlled file rather than shell exports.
type Daemon struct {
	ArtifactPath    string           `yaml:"artifactPath"`
	EventLogPath    string           `yaml:"eventLogPath"`
	DeviceOverrides []DeviceOverride `yaml:"deviceOverrides"`
}

// LoadDaemon reads and validates a daemon config file.
func LoadDaemon(path string) (Daemon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Daemon{}, fmt.Errorf("reading daemon config %s: %w", path, err)
	}

	var d Daemon
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Daemon{}, fmt.Errorf("parsing daemon config %s: %w", path, err)
	}

	if d.ArtifactPath == "" {
		return Daemon{}, ErrArtifactPathRequired
	}

	return d, nil
}
