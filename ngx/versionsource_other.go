// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build !windows

package ngx

import "fmt"

// ModuleVersion implements VersionSource. Version resources only
// exist on Windows.
func (s FileVersionSource) ModuleVersion(module string) (Version, error) {
	return Version{}, fmt.Errorf("%s: %w", s.path(module), ErrUnsupported)
}
