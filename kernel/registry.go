// SPDX-License-Identifier: MIT
package kernel

import (
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/katalvlaran/lvnum/fault"
)

// Constructor builds a Backend from a backend-specific configuration
// string, which may be empty.
type Constructor func(config string) (Backend, error)

var (
	registryMu      sync.RWMutex
	constructors    = make(map[string]Constructor)
	firstRegistered string
)

// EnvProvider names the environment variable holding the default backend
// configuration, formatted as "<name>[:<config>]".
const EnvProvider = "LVNUM_PROVIDER"

// DefaultConfig is used by New when EnvProvider is unset.
var DefaultConfig string

// Register makes a backend constructor available under name.
// Call it from the init function of the package implementing the backend.
func Register(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if len(constructors) == 0 {
		firstRegistered = name
	}
	constructors[name] = constructor
	klog.V(1).Infof("lvnum: registered kernel backend %q", name)
}

// Registered returns the sorted names of all registered backends.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// New returns the default backend. In order of precedence the configuration
// comes from EnvProvider, DefaultConfig, or the first registered backend.
func New() (Backend, error) {
	if config, found := os.LookupEnv(EnvProvider); found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}

	return NewWithConfig("")
}

// NewWithConfig builds the backend named by config, "<name>[:<config>]".
// An empty name selects the first registered backend.
func NewWithConfig(config string) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if len(constructors) == 0 {
		return nil, errors.Wrap(fault.ErrInvalidParameter,
			`no kernel backends registered, import _ "github.com/katalvlaran/lvnum/kernel/reference"`)
	}

	name, backendConfig := config, ""
	if idx := strings.Index(config, ":"); idx != -1 {
		name, backendConfig = config[:idx], config[idx+1:]
	}
	if name == "" {
		name = firstRegistered
	}
	constructor, found := constructors[name]
	if !found {
		return nil, errors.Wrapf(fault.ErrInvalidParameter, "unknown kernel backend %q in configuration %q", name, config)
	}
	b, err := constructor(backendConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "constructing kernel backend %q", name)
	}
	klog.V(1).Infof("lvnum: selected kernel backend %q (%s)", b.Name(), b.Description())

	return b, nil
}
