// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package snapshot is a small archive format for diagnostic bundles,
// parameter dumps and status reports captured from a running process.
// Every entry is compressed individually with lz4 and the archive header,
// gob encoded, knows where each entry lives. This way an archive can be
// memory mapped and single entries read without touching the rest.
// An Archive can be read from concurrently.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"time"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a snapshot archive")
	ErrNotFound   = errors.New("no such entry in archive")
	ErrDuplicate  = errors.New("entry already added")
)

// Sizes relevant to the file preamble
const (
	MagicLength      = 4
	HeaderSizeLength = 8
	PreambleLength   = MagicLength + HeaderSizeLength
	MaxHeaderSize    = 16 << 20
)

// FormatVersion is written into every header.
const FormatVersion = 1

var magic = [MagicLength]byte{'N', 'G', 'X', 'S'}

// IndexEntry describes one entry of the archive. Offsets are relative
// to the first byte after the header.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the archive header.
type Header struct {
	Author  string
	Created time.Time
	Version int64
	Index   []IndexEntry
}

// Lookup finds an entry by name.
func (h *Header) Lookup(name string) (IndexEntry, bool) {
	for _, e := range h.Index {
		if e.Name == name {
			return e, true
		}
	}
	return IndexEntry{}, false
}

func int64ToBinary(num int64) []byte {
	bts := make([]byte, HeaderSizeLength)
	binary.LittleEndian.PutUint64(bts, uint64(num))
	return bts
}

func binaryToInt64(bts []byte) (int64, error) {
	if len(bts) < HeaderSizeLength {
		return 0, ErrFileFormat
	}
	return int64(binary.LittleEndian.Uint64(bts)), nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	if err := gob.NewEncoder(&encoded).Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	return gob.NewDecoder(bytes.NewReader(bts)).Decode(obj)
}
