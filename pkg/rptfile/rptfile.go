// Package rptfile implements the "RPT1" binary song container: the file
// format dropped by the distillation but fully specified by §6's data
// layout and grounded on the original firmware's save_song/load_song
// (song.c), which streams a 4-byte magic, octave/volume/song-length
// metadata, then the raw pattern table and order list as bulk blobs.
package rptfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rptracker/opl9trk/pkg/tracker"
)

// Magic is the 4-byte file header identifying an RPT1 song file.
const Magic = "RPT1"

// Metadata is the song-level state saved alongside the bulk pattern/order
// blobs: the brush octave/volume at save time and the active song length.
type Metadata struct {
	Octave     uint8
	Volume     uint8
	SongLength uint16
}

// Save writes store's pattern table and order list, plus meta, to w as an
// RPT1 file.
func Save(w io.Writer, store *tracker.Store, meta Metadata) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return fmt.Errorf("rptfile: write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, meta.Octave); err != nil {
		return fmt.Errorf("rptfile: write octave: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, meta.Volume); err != nil {
		return fmt.Errorf("rptfile: write volume: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, meta.SongLength); err != nil {
		return fmt.Errorf("rptfile: write song length: %w", err)
	}
	if _, err := w.Write(store.RawPatterns()); err != nil {
		return fmt.Errorf("rptfile: write patterns: %w", err)
	}
	if _, err := w.Write(store.RawOrder()); err != nil {
		return fmt.Errorf("rptfile: write order: %w", err)
	}
	return nil
}

// Load reads an RPT1 file from r into store, returning its metadata.
// store's pattern/order regions are overwritten in place.
func Load(r io.Reader, store *tracker.Store) (Metadata, error) {
	var meta Metadata

	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return meta, fmt.Errorf("rptfile: read magic: %w", err)
	}
	if !bytes.Equal(head, []byte(Magic)) {
		return meta, fmt.Errorf("rptfile: bad magic %q, want %q", head, Magic)
	}

	if err := binary.Read(r, binary.LittleEndian, &meta.Octave); err != nil {
		return meta, fmt.Errorf("rptfile: read octave: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &meta.Volume); err != nil {
		return meta, fmt.Errorf("rptfile: read volume: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &meta.SongLength); err != nil {
		return meta, fmt.Errorf("rptfile: read song length: %w", err)
	}

	patterns := store.RawPatterns()
	if _, err := io.ReadFull(r, patterns); err != nil {
		return meta, fmt.Errorf("rptfile: read patterns: %w", err)
	}
	order := store.RawOrder()
	if _, err := io.ReadFull(r, order); err != nil {
		return meta, fmt.Errorf("rptfile: read order: %w", err)
	}
	store.SongLength = int(meta.SongLength)

	return meta, nil
}
