// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnsupported is returned by version sources that can't work on this platform.
var ErrUnsupported = errors.New("not supported on this platform")

// ErrUnknownModule is returned when a source knows nothing about a module.
var ErrUnknownModule = errors.New("unknown module")

// VersionSource discovers the version of a vendor module.
type VersionSource interface {
	ModuleVersion(module string) (Version, error)
}

// FileVersionSource reads the version resource of a module file. A module
// already loaded into the process is preferred over one found in Dir.
type FileVersionSource struct {
	Dir string
}

func (s FileVersionSource) path(module string) string {
	if s.Dir == "" || filepath.IsAbs(module) {
		return module
	}
	return filepath.Join(s.Dir, module)
}

// StaticVersionSource serves versions from memory, keyed by
// case insensitive module name.
type StaticVersionSource struct {
	mu       sync.RWMutex
	versions map[string]Version
}

// NewStaticVersionSource creates a source from a module to version string map.
func NewStaticVersionSource(versions map[string]string) (*StaticVersionSource, error) {
	s := &StaticVersionSource{versions: make(map[string]Version, len(versions))}
	for module, str := range versions {
		v, err := ParseVersion(str)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", module, err)
		}
		s.Set(module, v)
	}
	return s, nil
}

// Set stores the version of module.
func (s *StaticVersionSource) Set(module string, v Version) {
	s.mu.Lock()
	s.versions[strings.ToLower(module)] = v
	s.mu.Unlock()
}

// ModuleVersion implements VersionSource.
func (s *StaticVersionSource) ModuleVersion(module string) (Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[strings.ToLower(module)]
	if !ok {
		return Version{}, fmt.Errorf("%w: %s", ErrUnknownModule, module)
	}
	return v, nil
}
