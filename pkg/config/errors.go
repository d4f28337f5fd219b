package config

import "errors"

var (
	// ErrInvalidPort is returned when KEYRX_PORT is not an integer in
	// 1024..65535 (spec.md §6).
	ErrInvalidPort = errors.New("invalid port")

	// ErrArtifactPathRequired is returned when a daemon config file
	// omits the artifact path.
	ErrArtifactPathRequired = errors.New("daemon config: artifactPath is required")
)
