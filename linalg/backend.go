// SPDX-License-Identifier: MIT
package linalg

import (
	"sync/atomic"

	"k8s.io/klog/v2"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/kernel/reference"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opUseBackend = "UseBackend"
	opUseNamed   = "UseNamed"
	opUseDefault = "UseDefault"
)

// active is the process-wide backend. A nil value means the reference
// backend, bound lazily on first use.
var active atomic.Pointer[binding]

type binding struct{ backend kernel.Backend }

// UseBackend binds b as the process-wide backend.
// Call it during start-up; swapping while computations run is not
// coordinated with them.
func UseBackend(b kernel.Backend) error {
	if b == nil {
		return fault.Wrapf(opUseBackend, fault.ErrInvalidParameter, "nil backend")
	}
	active.Store(&binding{backend: b})
	klog.V(1).Infof("lvnum: using kernel backend %q", b.Name())

	return nil
}

// UseNamed builds the backend described by config ("<name>[:<config>]")
// through the kernel registry and binds it.
func UseNamed(config string) error {
	b, err := kernel.NewWithConfig(config)
	if err != nil {
		return fault.Wrap(opUseNamed, err)
	}

	return UseBackend(b)
}

// UseDefault binds the backend selected by the LVNUM_PROVIDER environment
// variable, falling back to the first registered backend.
func UseDefault() error {
	b, err := kernel.New()
	if err != nil {
		return fault.Wrap(opUseDefault, err)
	}

	return UseBackend(b)
}

// Backend returns the bound backend, binding the reference backend if none
// was chosen yet.
func Backend() kernel.Backend {
	if cur := active.Load(); cur != nil {
		return cur.backend
	}
	fallback := &binding{backend: reference.NewBackend()}
	if active.CompareAndSwap(nil, fallback) {
		klog.V(1).Infof("lvnum: no kernel backend chosen, using %q", reference.Name)
	}

	return active.Load().backend
}

// ProviderFor returns the bound backend's provider for T.
func ProviderFor[T numeric.Element]() kernel.Provider[T] {
	return kernel.ProviderOf[T](Backend())
}
