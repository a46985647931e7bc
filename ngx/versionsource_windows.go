// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ModuleVersion implements VersionSource.
func (s FileVersionSource) ModuleVersion(module string) (Version, error) {
	path := loadedModulePath(module)
	if path == "" {
		path = s.path(module)
	}

	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil {
		return Version{}, fmt.Errorf("GetFileVersionInfoSize(%s): %w", path, err)
	}
	info := make([]byte, size)
	if err := windows.GetFileVersionInfo(path, 0, size, unsafe.Pointer(&info[0])); err != nil {
		return Version{}, fmt.Errorf("GetFileVersionInfo(%s): %w", path, err)
	}

	var (
		fixed *windows.VS_FIXEDFILEINFO
		n     uint32
	)
	if err := windows.VerQueryValue(unsafe.Pointer(&info[0]), `\`, unsafe.Pointer(&fixed), &n); err != nil {
		return Version{}, fmt.Errorf("VerQueryValue(%s): %w", path, err)
	}
	if fixed == nil || n < uint32(unsafe.Sizeof(*fixed)) {
		return Version{}, fmt.Errorf("%s: %w", path, ErrVersionFormat)
	}

	return Version{
		Major:    fixed.FileVersionMS >> 16,
		Minor:    fixed.FileVersionMS & 0xffff,
		Build:    fixed.FileVersionLS >> 16,
		Revision: fixed.FileVersionLS & 0xffff,
	}, nil
}

// loadedModulePath returns the on-disk path of module if the
// process has it loaded, the empty string otherwise.
func loadedModulePath(module string) string {
	name, err := windows.UTF16PtrFromString(module)
	if err != nil {
		return ""
	}

	var h windows.Handle
	if err := windows.GetModuleHandleEx(windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, name, &h); err != nil {
		return ""
	}

	buf := make([]uint16, windows.MAX_LONG_PATH)
	n, err := windows.GetModuleFileName(h, &buf[0], uint32(len(buf)))
	if err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
