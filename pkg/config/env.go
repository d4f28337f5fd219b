// Package config loads the orchestrator's environment variables and
// daemon YAML config file (spec.md §6 "Environment variables consumed
// by the orchestrator").
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Env is the parsed set of environment variables the orchestrator
// consumes. All have defaults; missing variables are not errors
// (spec.md §6).
type Env struct {
	BindHost    string
	Port        int
	LogLevel    string
	Debug       bool
	TestMode    bool
	Environment string
}

const (
	defaultBindHost    = "127.0.0.1"
	defaultPort        = 9420
	defaultLogLevel    = "info"
	defaultEnvironment = "production"

	minPort = 1024
	maxPort = 65535
)

// LoadEnv reads KEYRX_* environment variables via lookup, applying
// defaults for anything unset. An out-of-range or non-integer
// KEYRX_PORT fails startup per spec.md §6 ("Invalid port values...
// fail startup with a clear message").
func LoadEnv(lookup func(string) (string, bool)) (Env, error) {
	env := Env{
		BindHost:    defaultBindHost,
		Port:        defaultPort,
		LogLevel:    defaultLogLevel,
		Environment: defaultEnvironment,
	}

	if v, ok := lookup("KEYRX_BIND_HOST"); ok && v != "" {
		env.BindHost = v
	}
	if v, ok := lookup("KEYRX_LOG_LEVEL"); ok && v != "" {
		env.LogLevel = v
	}
	if v, ok := lookup("KEYRX_ENVIRONMENT"); ok && v != "" {
		env.Environment = v
	}
	if v, ok := lookup("KEYRX_DEBUG"); ok {
		env.Debug = isTruthy(v)
	}
	if v, ok := lookup("KEYRX_TEST_MODE"); ok {
		env.TestMode = isTruthy(v)
	}

	if v, ok := lookup("KEYRX_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Env{}, fmt.Errorf("%w: KEYRX_PORT %q is not an integer", ErrInvalidPort, v)
		}
		if port < minPort || port > maxPort {
			return Env{}, fmt.Errorf("%w: KEYRX_PORT %d out of range %d..%d", ErrInvalidPort, port, minPort, maxPort)
		}
		env.Port = port
	}

	return env, nil
}

// LoadEnvFromOS is a convenience wrapper around LoadEnv using the real
// process environment.
func LoadEnvFromOS() (Env, error) {
	return LoadEnv(os.LookupEnv)
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	default:
		return false
	}
}
