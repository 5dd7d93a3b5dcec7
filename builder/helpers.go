// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// helpers.go - error context helper shared by the constructors.

package builder

import "fmt"

// wrapf returns "<method>: <detail>: <err>" keeping err for errors.Is.
func wrapf(method string, err error, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", method, fmt.Sprintf(format, args...), err)
}
