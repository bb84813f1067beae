// Package preset serializes a parameter store into an opaque binary blob and
// restores it.
//
// The layout is little endian:
//
//	"ADLY" | version uint32 | count uint32 | count × (nameLen uint16 | name | value float64)
//
// Values are keyed by their stable persistence names, so blobs survive
// reordering of parameters. Unknown names are skipped and out-of-range values
// are clamped by the store on import.
package preset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/cwbudde/algo-delay/dsp/param"
)

// Version is the blob version written by Save.
const Version uint32 = 1

const (
	magic      = "ADLY"
	maxEntries = 1024
	maxNameLen = 256
)

var (
	// ErrInvalidFormat is returned for blobs that are not delay presets or
	// carry implausible header fields.
	ErrInvalidFormat = errors.New("preset: invalid format")
	// ErrUnsupportedVersion is returned for blobs written by a newer version.
	ErrUnsupportedVersion = errors.New("preset: unsupported version")
	// ErrNilStore is returned when no store is supplied.
	ErrNilStore = errors.New("preset: nil parameter store")
)

// Save writes the current values of store to w.
func Save(w io.Writer, store *param.Store) error {
	if store == nil {
		return ErrNilStore
	}
	values := store.Export()

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, Version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(names))); err != nil {
		return err
	}

	for _, name := range names {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(name))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, values[name]); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a blob from r and applies it to store. The whole blob is
// decoded before anything is applied, so store is unchanged on error.
func Load(r io.Reader, store *param.Store) error {
	if store == nil {
		return ErrNilStore
	}
	values, err := Decode(r)
	if err != nil {
		return err
	}
	store.Import(values)
	return nil
}

// Decode reads a blob into a name → value map without applying it.
func Decode(r io.Reader) (map[string]float64, error) {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("preset: read header: %w", err)
	}
	if string(header) != magic {
		return nil, ErrInvalidFormat
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("preset: read version: %w", err)
	}
	if version == 0 {
		return nil, ErrInvalidFormat
	}
	if version > Version {
		return nil, fmt.Errorf("%w: %d (supported %d)", ErrUnsupportedVersion, version, Version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("preset: read count: %w", err)
	}
	if count > maxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrInvalidFormat, count)
	}

	values := make(map[string]float64, count)
	name := make([]byte, maxNameLen)
	for i := uint32(0); i < count; i++ {
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("preset: read entry %d: %w", i, err)
		}
		if int(n) > maxNameLen {
			return nil, fmt.Errorf("%w: name length %d", ErrInvalidFormat, n)
		}
		if _, err := io.ReadFull(r, name[:n]); err != nil {
			return nil, fmt.Errorf("preset: read entry %d: %w", i, err)
		}

		var v float64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("preset: read entry %d: %w", i, err)
		}
		values[string(name[:n])] = v
	}
	return values, nil
}

// Marshal returns the blob for store.
func Marshal(store *param.Store) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(&buf, store); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal applies blob to store.
func Unmarshal(blob []byte, store *param.Store) error {
	return Load(bytes.NewReader(blob), store)
}
