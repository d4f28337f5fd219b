//go:build !linux

package commands

import (
	"errors"
	"io"

	"github.com/keyrx/keyrx/pkg/platform"
)

// errNoNativeAdapter is returned by newNativeAdapter on platforms with
// no native platform.Adapter yet (spec.md §1 scopes one reference
// platform; pkg/platform/sim covers everything else via --test-mode).
var errNoNativeAdapter = errors.New("no native platform adapter for this OS; use --test-mode")

func newNativeAdapter() (platform.Adapter, io.Closer, error) {
	return nil, nil, errNoNativeAdapter
}
