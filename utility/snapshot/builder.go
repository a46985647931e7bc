// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pierrec/lz4"
)

// NewBuilder creates a new Builder. The Index of header is
// filled in by WriteTo, anything already in it is dropped.
func NewBuilder(header Header) *Builder {
	if header.Created.IsZero() {
		header.Created = time.Now()
	}
	header.Version = FormatVersion
	header.Index = nil
	return &Builder{header: header}
}

type pending struct {
	name       string
	size       int64
	compressed []byte
}

// Builder collects entries and writes them out as one archive.
// Archives can't be appended to, build a new one instead.
type Builder struct {
	header Header

	mutex   sync.Mutex
	entries []pending
}

// Add compresses data and stores it under name. It blocks until
// lz4 is done and is safe to call from several goroutines.
func (b *Builder) Add(name string, data []byte) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	written, err := io.Copy(writer, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("compress %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("compress %s: %w", name, err)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, e := range b.entries {
		if e.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
	}
	b.entries = append(b.entries, pending{
		name:       name,
		size:       written,
		compressed: compressed.Bytes(),
	})
	return nil
}

// Len returns the number of entries added so far.
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.entries)
}

// WriteTo writes the archive, entries are ordered by name.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	entries := append([]pending(nil), b.entries...)
	b.mutex.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	header := b.header
	header.Index = make([]IndexEntry, 0, len(entries))
	var offset int64
	for _, e := range entries {
		header.Index = append(header.Index, IndexEntry{
			Name:           e.name,
			Offset:         offset,
			Size:           e.size,
			CompressedSize: int64(len(e.compressed)),
		})
		offset += int64(len(e.compressed))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, err
	}

	var total int64
	write := func(p []byte) error {
		n, err := w.Write(p)
		total += int64(n)
		return err
	}

	if err := write(magic[:]); err != nil {
		return total, err
	}
	if err := write(int64ToBinary(int64(len(rawHeader)))); err != nil {
		return total, err
	}
	if err := write(rawHeader); err != nil {
		return total, err
	}
	for _, e := range entries {
		if err := write(e.compressed); err != nil {
			return total, err
		}
	}
	return total, nil
}
